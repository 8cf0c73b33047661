package store

import (
	"context"
	"database/sql"

	"github.com/segmentio/ksuid"

	"greenroom/pkg/schema"
)

const projectColumns = `id, title, project_type, description, genre, audience, tone, language,
	status, world_setting, style_guide, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*schema.Project, error) {
	var p schema.Project
	var created, updated string
	err := row.Scan(
		&p.ID, &p.Title, &p.Type, &p.Description, &p.Genre, &p.Audience, &p.Tone, &p.Language,
		&p.Status, &p.WorldSetting, &p.StyleGuide, &created, &updated,
	)
	if err != nil {
		return nil, rowErr(err)
	}
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return &p, nil
}

// CreateProject assigns the id and timestamps and inserts the project.
func (s *Store) CreateProject(ctx context.Context, p *schema.Project) error {
	p.ID = ksuid.New().String()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Type, p.Description, p.Genre, p.Audience, p.Tone, p.Language,
		p.Status, p.WorldSetting, p.StyleGuide, fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt),
	)
	return err
}

func (s *Store) Project(ctx context.Context, id string) (*schema.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

func (s *Store) Projects(ctx context.Context) ([]*schema.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*schema.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProject overwrites every mutable column. Concurrent updates are
// last write wins.
func (s *Store) UpdateProject(ctx context.Context, p *schema.Project) error {
	p.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET title = ?, project_type = ?, description = ?, genre = ?,
			audience = ?, tone = ?, language = ?, status = ?, world_setting = ?,
			style_guide = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.Type, p.Description, p.Genre, p.Audience, p.Tone, p.Language,
		p.Status, p.WorldSetting, p.StyleGuide, fmtTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteProject removes the project; episodes, scenes, characters,
// evaluations and callbacks underneath it go with it via cascade.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
