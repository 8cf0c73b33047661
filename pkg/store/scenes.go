package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/segmentio/ksuid"

	"greenroom/pkg/schema"
	"greenroom/pkg/utils"
)

const sceneColumns = `id, episode_id, scene_number, display_id, scene_type, title, goal,
	emotion_curve, conflict_type, dialog_density, character_ids, content, ai_generated,
	human_edited, generation_prompt, writer_notes, word_count, version, parent_scene_id,
	created_at, updated_at`

func scanScene(row interface{ Scan(...any) error }) (*schema.Scene, error) {
	var sc schema.Scene
	var emotionCurve, characterIDs, created, updated string
	var aiGenerated, humanEdited int
	err := row.Scan(
		&sc.ID, &sc.EpisodeID, &sc.Number, &sc.DisplayID, &sc.Type, &sc.Title, &sc.Goal,
		&emotionCurve, &sc.ConflictType, &sc.DialogDensity, &characterIDs, &sc.Content,
		&aiGenerated, &humanEdited, &sc.GenerationPrompt, &sc.WriterNotes, &sc.WordCount,
		&sc.Version, &sc.ParentSceneID, &created, &updated,
	)
	if err != nil {
		return nil, rowErr(err)
	}
	sc.EmotionCurve = decodeList[schema.EmotionCurve](emotionCurve)
	sc.CharacterIDs = decodeList[string](characterIDs)
	sc.AIGenerated = aiGenerated != 0
	sc.HumanEdited = humanEdited != 0
	sc.CreatedAt = parseTime(created)
	sc.UpdatedAt = parseTime(updated)
	return &sc, nil
}

// CreateScene inserts the scene with a freshly derived display id. The
// derivation and the insert share a transaction so two concurrent creates
// cannot claim the same id.
func (s *Store) CreateScene(ctx context.Context, sc *schema.Scene) error {
	ep, err := s.Episode(ctx, sc.EpisodeID)
	if err != nil {
		return err
	}
	sc.ID = ksuid.New().String()
	sc.WordCount = utils.RuneLen(sc.Content)
	if sc.Version == 0 {
		sc.Version = 1
	}
	sc.CreatedAt = now()
	sc.UpdatedAt = sc.CreatedAt

	return s.withTx(ctx, func(tx *sql.Tx) error {
		displayID, err := nextDisplayID(ctx, tx, ep.Number, sc.Number)
		if err != nil {
			return err
		}
		sc.DisplayID = displayID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO scenes (`+sceneColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sc.ID, sc.EpisodeID, sc.Number, sc.DisplayID, sc.Type, sc.Title, sc.Goal,
			encodeList(sc.EmotionCurve), sc.ConflictType, sc.DialogDensity,
			encodeList(sc.CharacterIDs), sc.Content, boolToInt(sc.AIGenerated),
			boolToInt(sc.HumanEdited), sc.GenerationPrompt, sc.WriterNotes, sc.WordCount,
			sc.Version, sc.ParentSceneID, fmtTime(sc.CreatedAt), fmtTime(sc.UpdatedAt),
		)
		return err
	})
}

// nextDisplayID derives "S01E03_SC02" from the episode and scene numbers.
// Season is fixed at 1 until seasons become a first class concept. On
// collision it tries numeric suffixes _1 through _100, then falls back to
// a nanosecond timestamp suffix which cannot realistically collide.
func nextDisplayID(ctx context.Context, tx *sql.Tx, episodeNumber, sceneNumber int) (string, error) {
	base := fmt.Sprintf("S%02dE%02d_SC%02d", 1, episodeNumber, sceneNumber)
	taken, err := displayIDTaken(ctx, tx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for i := 1; i <= 100; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		taken, err := displayIDTaken(ctx, tx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return fmt.Sprintf("%s_%d", base, time.Now().UnixNano()), nil
}

func displayIDTaken(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM scenes WHERE display_id = ?`, id).Scan(&n)
	return n > 0, err
}

func (s *Store) Scene(ctx context.Context, id string) (*schema.Scene, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sceneColumns+` FROM scenes WHERE id = ?`, id)
	return scanScene(row)
}

// ScenesByEpisode returns the episode's scenes in scene number order.
func (s *Store) ScenesByEpisode(ctx context.Context, episodeID string) ([]*schema.Scene, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sceneColumns+` FROM scenes
		WHERE episode_id = ? ORDER BY scene_number`, episodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*schema.Scene
	for rows.Next() {
		sc, err := scanScene(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// UpdateScene overwrites the mutable columns. The display id and the
// scene number it was derived from are immutable after creation; the word
// count is recomputed from the content on every write.
func (s *Store) UpdateScene(ctx context.Context, sc *schema.Scene) error {
	sc.WordCount = utils.RuneLen(sc.Content)
	sc.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE scenes SET scene_type = ?, title = ?, goal = ?, emotion_curve = ?,
			conflict_type = ?, dialog_density = ?, character_ids = ?, content = ?,
			ai_generated = ?, human_edited = ?, generation_prompt = ?, writer_notes = ?,
			word_count = ?, version = ?, parent_scene_id = ?, updated_at = ?
		WHERE id = ?`,
		sc.Type, sc.Title, sc.Goal, encodeList(sc.EmotionCurve), sc.ConflictType,
		sc.DialogDensity, encodeList(sc.CharacterIDs), sc.Content,
		boolToInt(sc.AIGenerated), boolToInt(sc.HumanEdited), sc.GenerationPrompt,
		sc.WriterNotes, sc.WordCount, sc.Version, sc.ParentSceneID,
		fmtTime(sc.UpdatedAt), sc.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateSceneContent replaces only the content, marking the scene as
// human edited. Word count tracks the new content.
func (s *Store) UpdateSceneContent(ctx context.Context, id, content string) (*schema.Scene, error) {
	sc, err := s.Scene(ctx, id)
	if err != nil {
		return nil, err
	}
	sc.Content = content
	sc.HumanEdited = true
	if err := s.UpdateScene(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Store) DeleteScene(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
