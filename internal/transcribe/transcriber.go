// Package transcribe runs the frame-by-frame transcription loop: audio in,
// concatenated utterance text out.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ambiware-labs/wavscribe/internal/audio"
	"github.com/ambiware-labs/wavscribe/internal/config"
	"github.com/ambiware-labs/wavscribe/internal/engine"
)

// Options configures a single transcription run.
type Options struct {
	AudioPath  string
	Engine     config.EngineConfig
	FrameBytes int
}

// Result carries the transcript and run metadata.
type Result struct {
	Text       string
	SampleRate int
	Channels   int
	Frames     int
	Fragments  int
	Duration   time.Duration
}

// Transcriber drives a recognizer over a WAV file's PCM frames.
type Transcriber struct {
	log *slog.Logger

	// newRecognizer is swappable in tests.
	newRecognizer func(ctx context.Context, cfg config.EngineConfig, info audio.Info) (engine.Recognizer, error)
}

func New(log *slog.Logger) *Transcriber {
	return &Transcriber{
		log:           log,
		newRecognizer: engine.New,
	}
}

// Run opens the audio file, feeds it to a recognizer in fixed-size frames,
// and returns the space-joined, trimmed concatenation of all utterance
// fragments. Frames are read and submitted strictly in order, so fragment
// order matches audio chronological order.
func (t *Transcriber) Run(ctx context.Context, opts Options) (Result, error) {
	started := time.Now()

	ctx, span := otel.Tracer("wavscribe").Start(ctx, "transcribe")
	defer span.End()
	span.SetAttributes(
		attribute.String("audio.path", opts.AudioPath),
		attribute.String("engine.mode", opts.Engine.Mode),
	)

	reader, err := audio.Open(opts.AudioPath)
	if err != nil {
		return Result{}, err
	}
	defer reader.Close()

	info := reader.Info()
	t.log.Debug("audio opened",
		slog.String("path", opts.AudioPath),
		slog.Int("sample_rate", info.SampleRate),
		slog.Int("channels", info.Channels))

	rec, err := t.newRecognizer(ctx, opts.Engine, info)
	if err != nil {
		return Result{}, err
	}
	defer rec.Close()

	frameBytes := opts.FrameBytes
	if frameBytes <= 0 {
		frameBytes = 4000
	}

	var fragments []string
	frame := make([]byte, frameBytes)
	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		n, err := reader.ReadFrame(frame)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, err
		}
		frames++

		done, err := rec.Accept(frame[:n])
		if err != nil {
			return Result{}, fmt.Errorf("submit frame %d: %w", frames, err)
		}
		if !done {
			continue
		}
		payload, err := rec.Result()
		if err != nil {
			return Result{}, fmt.Errorf("utterance result: %w", err)
		}
		if text := engine.Text(payload); text != "" {
			fragments = append(fragments, text)
		}
	}

	payload, err := rec.FinalResult()
	if err != nil {
		return Result{}, fmt.Errorf("final result: %w", err)
	}
	if text := engine.Text(payload); text != "" {
		fragments = append(fragments, text)
	}

	result := Result{
		Text:       strings.TrimSpace(strings.Join(fragments, " ")),
		SampleRate: info.SampleRate,
		Channels:   info.Channels,
		Frames:     frames,
		Fragments:  len(fragments),
		Duration:   time.Since(started),
	}
	span.SetAttributes(
		attribute.Int("audio.frames", result.Frames),
		attribute.Int("transcript.fragments", result.Fragments),
	)
	t.log.Info("transcription complete",
		slog.Int("frames", result.Frames),
		slog.Int("fragments", result.Fragments),
		slog.Duration("took", result.Duration))
	return result, nil
}
