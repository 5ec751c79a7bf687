package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ambiware-labs/wavscribe/internal/audio"
	"github.com/ambiware-labs/wavscribe/internal/config"
)

// Recognizer is the boundary to the speech engine. A recognizer is bound to
// one audio stream's sample rate and owned by a single transcription run.
type Recognizer interface {
	// Accept submits one PCM frame. It reports true when the frame completed
	// an utterance, making Result available.
	Accept(frame []byte) (bool, error)
	// Result returns the engine's JSON payload for the last completed
	// utterance.
	Result() ([]byte, error)
	// FinalResult flushes buffered evidence and returns the payload for the
	// remaining, possibly incomplete utterance. No frames may be submitted
	// afterwards.
	FinalResult() ([]byte, error)
	Close() error
}

// New constructs the recognizer backend selected by cfg.Mode.
func New(ctx context.Context, cfg config.EngineConfig, info audio.Info) (Recognizer, error) {
	switch cfg.Mode {
	case "vosk":
		return newVoskRecognizer(cfg, info)
	case "exec":
		return newExecRecognizer(ctx, cfg, info)
	case "mock":
		return NewMockRecognizer(nil), nil
	default:
		return nil, fmt.Errorf("unknown engine mode %q", cfg.Mode)
	}
}

type resultPayload struct {
	Text string `json:"text"`
}

// Text extracts the "text" field from an engine result payload. Malformed
// payloads and payloads without a text field decode to the empty string.
func Text(payload []byte) string {
	var result resultPayload
	if err := json.Unmarshal(payload, &result); err != nil {
		return ""
	}
	return result.Text
}
