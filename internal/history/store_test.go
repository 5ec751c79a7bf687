package history

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/ambiware-labs/wavscribe/internal/config"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func openStore(t *testing.T, maxRuns int) *Store {
	t.Helper()
	cfg := config.HistoryConfig{
		Enabled: true,
		Path:    filepath.Join(t.TempDir(), "runs.db"),
		MaxRuns: maxRuns,
	}
	s, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDisabledStoreIsNoop(t *testing.T) {
	s, err := Open(context.Background(), config.HistoryConfig{Enabled: false}, newLogger())
	if err != nil {
		t.Fatalf("open disabled store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Append(context.Background(), Run{AudioPath: "a.wav"}); err != nil {
		t.Fatalf("append on disabled store: %v", err)
	}
	runs, err := s.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("list on disabled store: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %d", len(runs))
	}
}

func TestAppendAndListRecent(t *testing.T) {
	s := openStore(t, 100)
	ctx := context.Background()

	run := Run{
		AudioPath:  "/audio/meeting.wav",
		ModelPath:  "/models/small-en",
		SampleRate: 16000,
		Frames:     8,
		Text:       "hello world",
		Took:       1200 * time.Millisecond,
	}
	if err := s.Append(ctx, run); err != nil {
		t.Fatalf("append run: %v", err)
	}

	runs, err := s.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.Text != "hello world" || got.SampleRate != 16000 || got.Frames != 8 {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.Took != 1200*time.Millisecond {
		t.Fatalf("expected duration round-trip, got %v", got.Took)
	}
}

func TestListRecentNewestFirst(t *testing.T) {
	s := openStore(t, 100)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		if err := s.Append(ctx, Run{AudioPath: "a.wav", Text: text}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	runs, err := s.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Text != "three" || runs[1].Text != "two" {
		t.Fatalf("expected newest first, got %q then %q", runs[0].Text, runs[1].Text)
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	s := openStore(t, 2)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three", "four"} {
		if err := s.Append(ctx, Run{AudioPath: "a.wav", Text: text}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := s.Prune(ctx); err != nil {
		t.Fatalf("prune: %v", err)
	}
	runs, err := s.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs after prune, got %d", len(runs))
	}
	if runs[0].Text != "four" || runs[1].Text != "three" {
		t.Fatalf("expected newest runs kept, got %+v", runs)
	}
}
