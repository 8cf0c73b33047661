package store

import (
	"context"

	"github.com/segmentio/ksuid"

	"greenroom/pkg/schema"
)

const episodeColumns = `id, project_id, episode_number, title, summary, status, main_topic,
	sub_topics, target_runtime, actual_runtime, notes, created_at, updated_at`

func scanEpisode(row interface{ Scan(...any) error }) (*schema.Episode, error) {
	var e schema.Episode
	var subTopics, created, updated string
	err := row.Scan(
		&e.ID, &e.ProjectID, &e.Number, &e.Title, &e.Summary, &e.Status, &e.MainTopic,
		&subTopics, &e.TargetRuntime, &e.ActualRuntime, &e.Notes, &created, &updated,
	)
	if err != nil {
		return nil, rowErr(err)
	}
	e.SubTopics = decodeList[string](subTopics)
	e.CreatedAt = parseTime(created)
	e.UpdatedAt = parseTime(updated)
	return &e, nil
}

// CreateEpisode verifies the parent project exists before inserting.
func (s *Store) CreateEpisode(ctx context.Context, e *schema.Episode) error {
	if _, err := s.Project(ctx, e.ProjectID); err != nil {
		return err
	}
	e.ID = ksuid.New().String()
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO episodes (`+episodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ProjectID, e.Number, e.Title, e.Summary, e.Status, e.MainTopic,
		encodeList(e.SubTopics), e.TargetRuntime, e.ActualRuntime, e.Notes,
		fmtTime(e.CreatedAt), fmtTime(e.UpdatedAt),
	)
	return err
}

func (s *Store) Episode(ctx context.Context, id string) (*schema.Episode, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+episodeColumns+` FROM episodes WHERE id = ?`, id)
	return scanEpisode(row)
}

// EpisodesByProject returns the project's episodes in episode number order.
func (s *Store) EpisodesByProject(ctx context.Context, projectID string) ([]*schema.Episode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+episodeColumns+` FROM episodes
		WHERE project_id = ? ORDER BY episode_number`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*schema.Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) UpdateEpisode(ctx context.Context, e *schema.Episode) error {
	e.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE episodes SET episode_number = ?, title = ?, summary = ?, status = ?,
			main_topic = ?, sub_topics = ?, target_runtime = ?, actual_runtime = ?,
			notes = ?, updated_at = ?
		WHERE id = ?`,
		e.Number, e.Title, e.Summary, e.Status, e.MainTopic, encodeList(e.SubTopics),
		e.TargetRuntime, e.ActualRuntime, e.Notes, fmtTime(e.UpdatedAt), e.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) DeleteEpisode(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM episodes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
