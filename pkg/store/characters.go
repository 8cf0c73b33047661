package store

import (
	"context"

	"github.com/segmentio/ksuid"

	"greenroom/pkg/schema"
)

const characterColumns = `id, project_id, name, role, description, backstory, traits,
	personality, speech_pattern, speech_examples, current_state, forbidden_actions,
	total_appearances, total_dialogues, created_at, updated_at`

func scanCharacter(row interface{ Scan(...any) error }) (*schema.Character, error) {
	var c schema.Character
	var traits, speechExamples, forbidden, created, updated string
	err := row.Scan(
		&c.ID, &c.ProjectID, &c.Name, &c.Role, &c.Description, &c.Backstory, &traits,
		&c.Personality, &c.SpeechPattern, &speechExamples, &c.CurrentState, &forbidden,
		&c.TotalAppearances, &c.TotalDialogues, &created, &updated,
	)
	if err != nil {
		return nil, rowErr(err)
	}
	c.Traits = decodeList[string](traits)
	c.SpeechExamples = decodeList[string](speechExamples)
	c.ForbiddenActions = decodeList[string](forbidden)
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return &c, nil
}

func (s *Store) CreateCharacter(ctx context.Context, c *schema.Character) error {
	if _, err := s.Project(ctx, c.ProjectID); err != nil {
		return err
	}
	c.ID = ksuid.New().String()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO characters (`+characterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ProjectID, c.Name, c.Role, c.Description, c.Backstory, encodeList(c.Traits),
		c.Personality, c.SpeechPattern, encodeList(c.SpeechExamples), c.CurrentState,
		encodeList(c.ForbiddenActions), c.TotalAppearances, c.TotalDialogues,
		fmtTime(c.CreatedAt), fmtTime(c.UpdatedAt),
	)
	return err
}

func (s *Store) Character(ctx context.Context, id string) (*schema.Character, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = ?`, id)
	return scanCharacter(row)
}

func (s *Store) CharactersByProject(ctx context.Context, projectID string) ([]*schema.Character, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+characterColumns+` FROM characters
		WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*schema.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCharacter(ctx context.Context, c *schema.Character) error {
	c.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE characters SET name = ?, role = ?, description = ?, backstory = ?,
			traits = ?, personality = ?, speech_pattern = ?, speech_examples = ?,
			current_state = ?, forbidden_actions = ?, total_appearances = ?,
			total_dialogues = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Role, c.Description, c.Backstory, encodeList(c.Traits), c.Personality,
		c.SpeechPattern, encodeList(c.SpeechExamples), c.CurrentState,
		encodeList(c.ForbiddenActions), c.TotalAppearances, c.TotalDialogues,
		fmtTime(c.UpdatedAt), c.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateCharacterState writes only the living status line, leaving the
// rest of the entity untouched so it cannot race a concurrent full update.
func (s *Store) UpdateCharacterState(ctx context.Context, id, state string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE characters SET current_state = ?, updated_at = ? WHERE id = ?`,
		state, fmtTime(now()), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// BumpCharacterUsage increments the appearance and dialogue counters as a
// generation side effect.
func (s *Store) BumpCharacterUsage(ctx context.Context, id string, appearances, dialogues int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE characters SET total_appearances = total_appearances + ?,
			total_dialogues = total_dialogues + ?, updated_at = ?
		WHERE id = ?`,
		appearances, dialogues, fmtTime(now()), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) DeleteCharacter(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
