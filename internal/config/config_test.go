package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.Mode != "vosk" {
		t.Fatalf("expected default engine mode vosk, got %q", cfg.Engine.Mode)
	}
	if cfg.Audio.FrameBytes != 4000 {
		t.Fatalf("expected default frame size 4000, got %d", cfg.Audio.FrameBytes)
	}
	if !cfg.Engine.SuppressEngineLog {
		t.Fatal("expected engine log suppression on by default")
	}
	if cfg.History.Enabled {
		t.Fatal("expected history disabled by default")
	}
}

func TestLoadFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "wavscribe.yaml")
	body := `
engine:
  mode: mock
  model_path: /models/small-en
audio:
  frame_bytes: 8000
history:
  enabled: true
  path: ./runs.db
  max_runs: 50
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.Mode != "mock" {
		t.Fatalf("expected mode override, got %q", cfg.Engine.Mode)
	}
	if cfg.Engine.ModelPath != "/models/small-en" {
		t.Fatalf("expected model path override, got %q", cfg.Engine.ModelPath)
	}
	if cfg.Audio.FrameBytes != 8000 {
		t.Fatalf("expected frame size override, got %d", cfg.Audio.FrameBytes)
	}
	if !cfg.History.Enabled || cfg.History.MaxRuns != 50 {
		t.Fatalf("expected history override, got %+v", cfg.History)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WAVSCRIBE_ENGINE_MODE", "mock")
	t.Setenv("WAVSCRIBE_ENGINE_MODEL_PATH", "/models/env")
	t.Setenv("WAVSCRIBE_ENGINE_SUPPRESS_LOG", "false")
	t.Setenv("WAVSCRIBE_AUDIO_FRAME_BYTES", "2000")
	t.Setenv("WAVSCRIBE_HISTORY_ENABLED", "true")
	t.Setenv("WAVSCRIBE_HISTORY_PATH", "./tmp.db")
	t.Setenv("WAVSCRIBE_HISTORY_MAX_RUNS", "7")
	t.Setenv("WAVSCRIBE_TELEMETRY_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.Mode != "mock" {
		t.Fatalf("expected engine mode override")
	}
	if cfg.Engine.ModelPath != "/models/env" {
		t.Fatalf("expected model path override")
	}
	if cfg.Engine.SuppressEngineLog {
		t.Fatal("expected suppress log override false")
	}
	if cfg.Audio.FrameBytes != 2000 {
		t.Fatalf("expected frame size 2000, got %d", cfg.Audio.FrameBytes)
	}
	if !cfg.History.Enabled || cfg.History.Path != "./tmp.db" || cfg.History.MaxRuns != 7 {
		t.Fatalf("expected history overrides, got %+v", cfg.History)
	}
	if cfg.Telemetry.LogLevel != "debug" {
		t.Fatalf("expected log level override")
	}
}

func TestValidateRejectsBadMode(t *testing.T) {
	t.Setenv("WAVSCRIBE_ENGINE_MODE", "whisper")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unknown engine mode")
	}
}

func TestValidateRejectsOddFrameSize(t *testing.T) {
	t.Setenv("WAVSCRIBE_AUDIO_FRAME_BYTES", "4001")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for odd frame size")
	}
}

func TestValidateRejectsExecWithoutCommand(t *testing.T) {
	t.Setenv("WAVSCRIBE_ENGINE_MODE", "exec")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for exec mode without command")
	}
}
