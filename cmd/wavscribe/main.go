package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ambiware-labs/wavscribe/internal/config"
	"github.com/ambiware-labs/wavscribe/internal/history"
	"github.com/ambiware-labs/wavscribe/internal/telemetry"
	"github.com/ambiware-labs/wavscribe/internal/transcribe"
)

var version = "0.1.0-dev"

func main() {
	var (
		configPath  string
		engineMode  string
		frameBytes  int
		quietEngine bool
		recent      int
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&engineMode, "engine", "", "Engine mode: vosk, exec, or mock")
	flag.IntVar(&frameBytes, "frame-bytes", 0, "PCM bytes per recognizer submission")
	flag.BoolVar(&quietEngine, "quiet-engine", true, "Suppress the engine's own diagnostic logging")
	flag.IntVar(&recent, "recent", 0, "List the N most recent runs from history and exit")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wavscribe: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(&cfg, engineMode, frameBytes, quietEngine)

	logger := telemetry.NewLogger(cfg.Telemetry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if recent > 0 {
		if err := listRecent(ctx, cfg, logger, recent); err != nil {
			logger.Error("failed to list history", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	audioPath, modelPath, ok := positionalArgs()
	if !ok {
		usage()
		os.Exit(2)
	}
	if modelPath != "" {
		cfg.Engine.ModelPath = modelPath
	}

	if err := run(ctx, cfg, logger, audioPath); err != nil {
		logger.Error("transcription failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, audioPath string) error {
	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, logger)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}()

	store, err := history.Open(ctx, cfg.History, logger)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	result, err := transcribe.New(logger).Run(ctx, transcribe.Options{
		AudioPath:  audioPath,
		Engine:     cfg.Engine,
		FrameBytes: cfg.Audio.FrameBytes,
	})
	if err != nil {
		return err
	}

	fmt.Println(result.Text)

	if err := store.Append(ctx, history.Run{
		AudioPath:  audioPath,
		ModelPath:  cfg.Engine.ModelPath,
		SampleRate: result.SampleRate,
		Frames:     result.Frames,
		Text:       result.Text,
		Took:       result.Duration,
	}); err != nil {
		logger.Warn("failed to record run", slog.String("error", err.Error()))
	}
	return nil
}

func listRecent(ctx context.Context, cfg config.Config, logger *slog.Logger, limit int) error {
	store, err := history.Open(ctx, cfg.History, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRecent(ctx, limit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		fmt.Printf("%s  %-40s  %s\n", run.CreatedAt.Format(time.RFC3339), run.AudioPath, run.Text)
	}
	return nil
}

func positionalArgs() (audioPath, modelPath string, ok bool) {
	args := flag.Args()
	switch len(args) {
	case 1:
		return args[0], "", true
	case 2:
		return args[0], args[1], true
	default:
		return "", "", false
	}
}

// Flags override file and env config only when explicitly set.
func applyFlagOverrides(cfg *config.Config, engineMode string, frameBytes int, quietEngine bool) {
	if engineMode != "" {
		cfg.Engine.Mode = engineMode
	}
	if frameBytes > 0 {
		cfg.Audio.FrameBytes = frameBytes
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "quiet-engine" {
			cfg.Engine.SuppressEngineLog = quietEngine
		}
	})
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: wavscribe [flags] <audio_file.wav> [model_path]

Transcribes a PCM WAV file to text and prints the transcript to stdout.
The model path may also be set via config or WAVSCRIBE_ENGINE_MODEL_PATH.

Flags:
`)
	flag.PrintDefaults()
}
