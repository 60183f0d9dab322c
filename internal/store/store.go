// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/dotdaily/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Keys in the kv table.
const (
	KeySettings  = "appSettings"
	KeyGameState = "gameState"
	KeyLastReset = "reactDaily_lastReset"
)

// timeLayout is fixed width so stored timestamps sort and compare as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for settings, daily state and play history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS plays (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			puzzle TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			time_cs INTEGER NOT NULL,
			guesses INTEGER NOT NULL,
			hints INTEGER NOT NULL,
			progress REAL NOT NULL,
			hard_mode INTEGER NOT NULL,
			early_completion INTEGER NOT NULL,
			first_guess INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_plays_ended_at ON plays(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_plays_category ON plays(category);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (s *Store) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.put(ctx, key, string(data))
}

// LoadSettings returns the saved preferences. Missing or unreadable values
// yield the defaults.
func (s *Store) LoadSettings(ctx context.Context) (model.Settings, error) {
	raw, ok, err := s.get(ctx, KeySettings)
	if err != nil {
		return model.DefaultSettings(), err
	}
	if !ok {
		return model.DefaultSettings(), nil
	}
	settings := model.DefaultSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return model.DefaultSettings(), nil
	}
	return settings.Normalize(), nil
}

// SaveSettings stores the preferences.
func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	return s.putJSON(ctx, KeySettings, settings.Normalize())
}

// LoadGameState returns the persisted daily state. Missing or unreadable
// values yield an empty state.
func (s *Store) LoadGameState(ctx context.Context) (model.GameState, error) {
	empty := model.GameState{
		Config:    model.GameStateConfig{Difficulty: model.Easy},
		Completed: map[model.Category]model.CompletionRecord{},
	}
	raw, ok, err := s.get(ctx, KeyGameState)
	if err != nil || !ok {
		return empty, err
	}
	var state model.GameState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return empty, nil
	}
	if state.Completed == nil {
		state.Completed = map[model.Category]model.CompletionRecord{}
	}
	if state.Config.Difficulty == "" {
		state.Config.Difficulty = model.Easy
	}
	return state, nil
}

// SaveGameState stores the daily state.
func (s *Store) SaveGameState(ctx context.Context, state model.GameState) error {
	if state.Completed == nil {
		state.Completed = map[model.Category]model.CompletionRecord{}
	}
	return s.putJSON(ctx, KeyGameState, state)
}

// SaveCompletion records a finished category for today.
func (s *Store) SaveCompletion(ctx context.Context, category model.Category, rec model.CompletionRecord) error {
	state, err := s.LoadGameState(ctx)
	if err != nil {
		return err
	}
	state.Completed[category] = rec
	return s.SaveGameState(ctx, state)
}

// ClearCompletions drops today's completion records and keeps the config.
func (s *Store) ClearCompletions(ctx context.Context) error {
	state, err := s.LoadGameState(ctx)
	if err != nil {
		return err
	}
	state.Completed = map[model.Category]model.CompletionRecord{}
	return s.SaveGameState(ctx, state)
}

// LastReset returns when the daily state was last cleared, or the zero time.
func (s *Store) LastReset(ctx context.Context) (time.Time, error) {
	raw, ok, err := s.get(ctx, KeyLastReset)
	if err != nil || !ok {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, nil
	}
	return t, nil
}

// SetLastReset stores the reset marker as an ISO-8601 timestamp.
func (s *Store) SetLastReset(ctx context.Context, t time.Time) error {
	return s.put(ctx, KeyLastReset, t.UTC().Format(timeLayout))
}

// InsertPlay stores a completed play and returns its id.
func (s *Store) InsertPlay(ctx context.Context, rec model.PlayRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plays (id, category, puzzle, difficulty, started_at, ended_at, time_cs, guesses, hints, progress, hard_mode, early_completion, first_guess)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		string(rec.Category),
		rec.Puzzle,
		string(rec.Difficulty),
		rec.StartedAt.UTC().Format(timeLayout),
		rec.EndedAt.UTC().Format(timeLayout),
		rec.TimeCs,
		rec.Guesses,
		rec.Hints,
		rec.Progress,
		rec.Achievements.HardMode,
		rec.Achievements.EarlyCompletion,
		rec.Achievements.FirstGuess,
	)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// ListPlays returns plays filtered by cfg, oldest first. Last keeps only the
// most recent plays.
func (s *Store) ListPlays(ctx context.Context, cfg model.StatsConfig) ([]model.PlayRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, string(cfg.Category))
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	limit := ""
	if cfg.Last > 0 {
		limit = " LIMIT ?"
		args = append(args, cfg.Last)
	}
	query := fmt.Sprintf(`SELECT id, category, puzzle, difficulty, started_at, ended_at, time_cs, guesses, hints, progress, hard_mode, early_completion, first_guess
		FROM plays
		WHERE %s
		ORDER BY ended_at DESC%s`, strings.Join(clauses, " AND "), limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var plays []model.PlayRecord
	for rows.Next() {
		var rec model.PlayRecord
		var category, difficulty, startedAt, endedAt string
		if err := rows.Scan(&rec.ID, &category, &rec.Puzzle, &difficulty, &startedAt, &endedAt,
			&rec.TimeCs, &rec.Guesses, &rec.Hints, &rec.Progress,
			&rec.Achievements.HardMode, &rec.Achievements.EarlyCompletion, &rec.Achievements.FirstGuess); err != nil {
			return nil, err
		}
		rec.Category = model.Category(category)
		rec.Difficulty = model.Difficulty(difficulty)
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		plays = append(plays, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(plays)-1; i < j; i, j = i+1, j-1 {
		plays[i], plays[j] = plays[j], plays[i]
	}
	return plays, nil
}
