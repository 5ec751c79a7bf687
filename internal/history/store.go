// Package history keeps an optional audit log of completed transcription
// runs in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ambiware-labs/wavscribe/internal/config"
	_ "modernc.org/sqlite"
)

// Run records one completed transcription.
type Run struct {
	ID         int64
	AudioPath  string
	ModelPath  string
	SampleRate int
	Frames     int
	Text       string
	Took       time.Duration
	CreatedAt  time.Time
}

// Store wraps the SQLite-backed run log. A disabled store is a no-op.
type Store struct {
	db    *sql.DB
	cfg   config.HistoryConfig
	log   *slog.Logger
	clock func() time.Time
}

// Open initializes the run log according to config.
func Open(ctx context.Context, cfg config.HistoryConfig, log *slog.Logger) (*Store, error) {
	if !cfg.Enabled {
		return &Store{cfg: cfg, log: log, clock: time.Now}, nil
	}

	dir := filepath.Dir(cfg.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, cfg: cfg, log: log, clock: time.Now}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.Prune(ctx); err != nil {
		log.Warn("history prune on start failed", slog.String("error", err.Error()))
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    audio_path TEXT NOT NULL,
    model_path TEXT,
    sample_rate INTEGER,
    frames INTEGER,
    transcript TEXT,
    took_ms INTEGER,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases underlying resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append writes a completed run into the log.
func (s *Store) Append(ctx context.Context, run Run) error {
	if s.db == nil {
		return nil
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.clock().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(audio_path, model_path, sample_rate, frames, transcript, took_ms, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		run.AudioPath, run.ModelPath, run.SampleRate, run.Frames, run.Text,
		run.Took.Milliseconds(), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("append run: %w", err)
	}
	return nil
}

// ListRecent returns up to limit runs, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	if s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, audio_path, model_path, sample_rate, frames, transcript, took_ms, created_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var tookMS int64
		if err := rows.Scan(&run.ID, &run.AudioPath, &run.ModelPath, &run.SampleRate,
			&run.Frames, &run.Text, &tookMS, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Took = time.Duration(tookMS) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Prune trims the log down to the configured max_runs, oldest first.
func (s *Store) Prune(ctx context.Context) error {
	if s.db == nil || s.cfg.MaxRuns <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`,
		s.cfg.MaxRuns)
	return err
}
