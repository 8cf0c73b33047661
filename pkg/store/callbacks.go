package store

import (
	"context"

	"github.com/segmentio/ksuid"

	"greenroom/pkg/schema"
)

const callbackColumns = `id, project_id, content, description, setup_scene_id, setup_episode,
	payoff_scene_id, payoff_episode, resolved, importance, created_at, updated_at`

func scanCallback(row interface{ Scan(...any) error }) (*schema.Callback, error) {
	var c schema.Callback
	var resolved int
	var created, updated string
	err := row.Scan(
		&c.ID, &c.ProjectID, &c.Content, &c.Description, &c.SetupSceneID, &c.SetupEpisode,
		&c.PayoffSceneID, &c.PayoffEpisode, &resolved, &c.Importance, &created, &updated,
	)
	if err != nil {
		return nil, rowErr(err)
	}
	c.Resolved = resolved != 0
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return &c, nil
}

func (s *Store) CreateCallback(ctx context.Context, c *schema.Callback) error {
	if _, err := s.Project(ctx, c.ProjectID); err != nil {
		return err
	}
	c.ID = ksuid.New().String()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO callbacks (`+callbackColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ProjectID, c.Content, c.Description, c.SetupSceneID, c.SetupEpisode,
		c.PayoffSceneID, c.PayoffEpisode, boolToInt(c.Resolved), c.Importance,
		fmtTime(c.CreatedAt), fmtTime(c.UpdatedAt),
	)
	return err
}

func (s *Store) Callback(ctx context.Context, id string) (*schema.Callback, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+callbackColumns+` FROM callbacks WHERE id = ?`, id)
	return scanCallback(row)
}

// CallbacksByProject lists the project's callbacks in creation order.
// Pass resolved to filter; nil returns everything.
func (s *Store) CallbacksByProject(ctx context.Context, projectID string, resolved *bool) ([]*schema.Callback, error) {
	query := `SELECT ` + callbackColumns + ` FROM callbacks WHERE project_id = ?`
	args := []any{projectID}
	if resolved != nil {
		query += ` AND resolved = ?`
		args = append(args, boolToInt(*resolved))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*schema.Callback
	for rows.Next() {
		c, err := scanCallback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ResolveCallback marks the callback paid off, recording where.
func (s *Store) ResolveCallback(ctx context.Context, id, payoffSceneID string, payoffEpisode int) (*schema.Callback, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE callbacks SET resolved = 1, payoff_scene_id = ?, payoff_episode = ?, updated_at = ?
		WHERE id = ?`,
		payoffSceneID, payoffEpisode, fmtTime(now()), id,
	)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.Callback(ctx, id)
}

func (s *Store) DeleteCallback(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM callbacks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
