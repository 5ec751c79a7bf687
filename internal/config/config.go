package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	LogLevel     string `yaml:"log_level"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`
}

type EngineConfig struct {
	Mode              string `yaml:"mode"` // vosk, exec, mock
	ModelPath         string `yaml:"model_path"`
	Command           string `yaml:"command"`
	SuppressEngineLog bool   `yaml:"suppress_engine_log"`
}

type AudioConfig struct {
	FrameBytes int `yaml:"frame_bytes"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	MaxRuns int    `yaml:"max_runs"`
}

type Config struct {
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Engine    EngineConfig    `yaml:"engine"`
	Audio     AudioConfig     `yaml:"audio"`
	History   HistoryConfig   `yaml:"history"`
}

func Default() Config {
	return Config{
		Telemetry: TelemetryConfig{
			Enabled:      false,
			LogLevel:     "info",
			OTLPEndpoint: "",
			OTLPInsecure: true,
		},
		Engine: EngineConfig{
			Mode:              "vosk",
			SuppressEngineLog: true,
		},
		Audio: AudioConfig{
			FrameBytes: 4000,
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    "./data/wavscribe-history.db",
			MaxRuns: 1000,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideBool(&cfg.Telemetry.Enabled, "WAVSCRIBE_TELEMETRY_ENABLED")
	overrideString(&cfg.Telemetry.LogLevel, "WAVSCRIBE_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "WAVSCRIBE_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "WAVSCRIBE_TELEMETRY_OTLP_INSECURE")
	overrideString(&cfg.Engine.Mode, "WAVSCRIBE_ENGINE_MODE")
	overrideString(&cfg.Engine.ModelPath, "WAVSCRIBE_ENGINE_MODEL_PATH")
	overrideString(&cfg.Engine.Command, "WAVSCRIBE_ENGINE_COMMAND")
	overrideBool(&cfg.Engine.SuppressEngineLog, "WAVSCRIBE_ENGINE_SUPPRESS_LOG")
	overrideInt(&cfg.Audio.FrameBytes, "WAVSCRIBE_AUDIO_FRAME_BYTES")
	overrideBool(&cfg.History.Enabled, "WAVSCRIBE_HISTORY_ENABLED")
	overrideString(&cfg.History.Path, "WAVSCRIBE_HISTORY_PATH")
	overrideInt(&cfg.History.MaxRuns, "WAVSCRIBE_HISTORY_MAX_RUNS")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func validate(cfg Config) error {
	switch cfg.Engine.Mode {
	case "vosk", "exec", "mock":
	default:
		return errors.New("engine.mode must be one of vosk|exec|mock")
	}
	if cfg.Engine.Mode == "exec" && cfg.Engine.Command == "" {
		return errors.New("engine.command must be set when mode=exec")
	}
	if cfg.Audio.FrameBytes <= 0 {
		return errors.New("audio.frame_bytes must be positive")
	}
	if cfg.Audio.FrameBytes%2 != 0 {
		return errors.New("audio.frame_bytes must be even for 16-bit PCM")
	}
	if cfg.History.Enabled {
		if cfg.History.Path == "" {
			return errors.New("history.path must not be empty when history is enabled")
		}
		if cfg.History.MaxRuns <= 0 {
			return errors.New("history.max_runs must be >= 1")
		}
	}
	switch cfg.Telemetry.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("telemetry.log_level must be one of debug|info|warn|error")
	}
	return nil
}
