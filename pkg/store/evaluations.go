package store

import (
	"context"
	"database/sql"

	"github.com/segmentio/ksuid"

	"greenroom/pkg/schema"
)

const evaluationColumns = `id, scene_id, creativity_score, consistency_score, emotion_score,
	pacing_score, dialogue_score, overall_score, cliche_detected, cliches, issues,
	summary, suggestions, strengths, evaluator, created_at`

func scanEvaluation(row interface{ Scan(...any) error }) (*schema.Evaluation, error) {
	var e schema.Evaluation
	var clicheDetected int
	var cliches, issues, suggestions, strengths, created string
	err := row.Scan(
		&e.ID, &e.SceneID, &e.CreativityScore, &e.ConsistencyScore, &e.EmotionScore,
		&e.PacingScore, &e.DialogueScore, &e.OverallScore, &clicheDetected, &cliches,
		&issues, &e.Summary, &suggestions, &strengths, &e.Evaluator, &created,
	)
	if err != nil {
		return nil, rowErr(err)
	}
	e.ClicheDetected = clicheDetected != 0
	e.Cliches = decodeList[schema.Cliche](cliches)
	e.Issues = decodeList[schema.Issue](issues)
	e.Suggestions = decodeList[string](suggestions)
	e.Strengths = decodeList[string](strengths)
	e.CreatedAt = parseTime(created)
	return &e, nil
}

// ReplaceEvaluation swaps the scene's evaluation wholesale. Delete and
// insert run in one transaction; a scene never ends up with zero or two
// evaluations across the swap.
func (s *Store) ReplaceEvaluation(ctx context.Context, e *schema.Evaluation) error {
	if _, err := s.Scene(ctx, e.SceneID); err != nil {
		return err
	}
	e.ID = ksuid.New().String()
	e.CreatedAt = now()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM evaluations WHERE scene_id = ?`, e.SceneID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO evaluations (`+evaluationColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.SceneID, e.CreativityScore, e.ConsistencyScore, e.EmotionScore,
			e.PacingScore, e.DialogueScore, e.OverallScore, boolToInt(e.ClicheDetected),
			encodeList(e.Cliches), encodeList(e.Issues), e.Summary,
			encodeList(e.Suggestions), encodeList(e.Strengths), e.Evaluator,
			fmtTime(e.CreatedAt),
		)
		return err
	})
}

func (s *Store) EvaluationByScene(ctx context.Context, sceneID string) (*schema.Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+evaluationColumns+` FROM evaluations WHERE scene_id = ?`, sceneID)
	return scanEvaluation(row)
}

// EvaluationsByScenes loads the evaluations for a batch of scenes in one
// pass, keyed by scene id. Scenes without one are simply absent.
func (s *Store) EvaluationsByScenes(ctx context.Context, sceneIDs []string) (map[string]*schema.Evaluation, error) {
	out := make(map[string]*schema.Evaluation, len(sceneIDs))
	for _, id := range sceneIDs {
		e, err := s.EvaluationByScene(ctx, id)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		out[id] = e
	}
	return out, nil
}
