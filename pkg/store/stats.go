package store

import (
	"context"

	"greenroom/pkg/schema"
)

// Stats aggregates project-level counts and the average overall score
// across evaluated scenes.
func (s *Store) Stats(ctx context.Context, projectID string) (*schema.ProjectStats, error) {
	if _, err := s.Project(ctx, projectID); err != nil {
		return nil, err
	}

	var stats schema.ProjectStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM episodes WHERE project_id = ?`, projectID).
		Scan(&stats.TotalEpisodes)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(sc.word_count), 0)
		FROM scenes sc JOIN episodes e ON sc.episode_id = e.id
		WHERE e.project_id = ?`, projectID).
		Scan(&stats.TotalScenes, &stats.TotalWords)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM characters WHERE project_id = ?`, projectID).
		Scan(&stats.TotalCharacters)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(ev.overall_score), 0)
		FROM evaluations ev
		JOIN scenes sc ON ev.scene_id = sc.id
		JOIN episodes e ON sc.episode_id = e.id
		WHERE e.project_id = ?`, projectID).
		Scan(&stats.EvaluatedScenes, &stats.AvgOverallScore)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
