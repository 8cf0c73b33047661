// Package store persists projects, episodes, scenes, characters,
// evaluations and callbacks in a single SQLite database. All list-valued
// columns are JSON encoded; referential cleanup rides on foreign keys
// with ON DELETE CASCADE, so the pragma in the DSN is load bearing.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and applies the
// schema. The returned store is safe for concurrent use.
func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

const schemaSQL = `
CREATE TABLE IF NOT EXISTS projects (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	project_type  TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	genre         TEXT NOT NULL DEFAULT '',
	audience      TEXT NOT NULL DEFAULT '',
	tone          TEXT NOT NULL DEFAULT '',
	language      TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	world_setting TEXT NOT NULL DEFAULT '',
	style_guide   TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS episodes (
	id             TEXT PRIMARY KEY,
	project_id     TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	episode_number INTEGER NOT NULL,
	title          TEXT NOT NULL,
	summary        TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	main_topic     TEXT NOT NULL DEFAULT '',
	sub_topics     TEXT NOT NULL DEFAULT '[]',
	target_runtime INTEGER NOT NULL DEFAULT 0,
	actual_runtime INTEGER NOT NULL DEFAULT 0,
	notes          TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_episodes_project ON episodes(project_id);

CREATE TABLE IF NOT EXISTS scenes (
	id                TEXT PRIMARY KEY,
	episode_id        TEXT NOT NULL REFERENCES episodes(id) ON DELETE CASCADE,
	scene_number      INTEGER NOT NULL,
	display_id        TEXT NOT NULL UNIQUE,
	scene_type        TEXT NOT NULL,
	title             TEXT NOT NULL DEFAULT '',
	goal              TEXT NOT NULL DEFAULT '',
	emotion_curve     TEXT NOT NULL DEFAULT '[]',
	conflict_type     TEXT NOT NULL,
	dialog_density    TEXT NOT NULL,
	character_ids     TEXT NOT NULL DEFAULT '[]',
	content           TEXT NOT NULL DEFAULT '',
	ai_generated      INTEGER NOT NULL DEFAULT 0,
	human_edited      INTEGER NOT NULL DEFAULT 0,
	generation_prompt TEXT NOT NULL DEFAULT '',
	writer_notes      TEXT NOT NULL DEFAULT '',
	word_count        INTEGER NOT NULL DEFAULT 0,
	version           INTEGER NOT NULL DEFAULT 1,
	parent_scene_id   TEXT NOT NULL DEFAULT '',
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scenes_episode ON scenes(episode_id);

CREATE TABLE IF NOT EXISTS characters (
	id                TEXT PRIMARY KEY,
	project_id        TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	name              TEXT NOT NULL,
	role              TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	backstory         TEXT NOT NULL DEFAULT '',
	traits            TEXT NOT NULL DEFAULT '[]',
	personality       TEXT NOT NULL DEFAULT '',
	speech_pattern    TEXT NOT NULL DEFAULT '',
	speech_examples   TEXT NOT NULL DEFAULT '[]',
	current_state     TEXT NOT NULL DEFAULT '',
	forbidden_actions TEXT NOT NULL DEFAULT '[]',
	total_appearances INTEGER NOT NULL DEFAULT 0,
	total_dialogues   INTEGER NOT NULL DEFAULT 0,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_characters_project ON characters(project_id);

CREATE TABLE IF NOT EXISTS evaluations (
	id                TEXT PRIMARY KEY,
	scene_id          TEXT NOT NULL UNIQUE REFERENCES scenes(id) ON DELETE CASCADE,
	creativity_score  REAL NOT NULL,
	consistency_score REAL NOT NULL,
	emotion_score     REAL NOT NULL,
	pacing_score      REAL NOT NULL,
	dialogue_score    REAL NOT NULL,
	overall_score     REAL NOT NULL,
	cliche_detected   INTEGER NOT NULL DEFAULT 0,
	cliches           TEXT NOT NULL DEFAULT '[]',
	issues            TEXT NOT NULL DEFAULT '[]',
	summary           TEXT NOT NULL DEFAULT '',
	suggestions       TEXT NOT NULL DEFAULT '[]',
	strengths         TEXT NOT NULL DEFAULT '[]',
	evaluator         TEXT NOT NULL DEFAULT '',
	created_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS callbacks (
	id              TEXT PRIMARY KEY,
	project_id      TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	content         TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	setup_scene_id  TEXT NOT NULL DEFAULT '',
	setup_episode   INTEGER NOT NULL DEFAULT 0,
	payoff_scene_id TEXT NOT NULL DEFAULT '',
	payoff_episode  INTEGER NOT NULL DEFAULT 0,
	resolved        INTEGER NOT NULL DEFAULT 0,
	importance      TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_callbacks_project ON callbacks(project_id);
`

func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// encodeList marshals any slice to its JSON column form. A nil or empty
// slice stores as the empty array so columns stay NOT NULL.
func encodeList[T any](v []T) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList[T any](s string) []T {
	if s == "" || s == "[]" {
		return nil
	}
	var out []T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// rowErr normalizes sql.ErrNoRows into ErrNotFound so handlers can map it
// to a 404 without knowing about database/sql.
func rowErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
