package engine

import (
	"errors"
	"fmt"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"

	"github.com/ambiware-labs/wavscribe/internal/audio"
	"github.com/ambiware-labs/wavscribe/internal/config"
)

// Engine log level is process-wide in the native library and must be set
// before the first model is constructed.
var voskLogOnce sync.Once

type voskRecognizer struct {
	model *vosk.VoskModel
	rec   *vosk.VoskRecognizer
}

var _ Recognizer = (*voskRecognizer)(nil)

func newVoskRecognizer(cfg config.EngineConfig, info audio.Info) (Recognizer, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("engine model path is required")
	}
	if cfg.SuppressEngineLog {
		voskLogOnce.Do(func() { vosk.SetLogLevel(-1) })
	}

	model, err := vosk.NewModel(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", cfg.ModelPath, err)
	}
	rec, err := vosk.NewRecognizer(model, float64(info.SampleRate))
	if err != nil {
		model.Free()
		return nil, fmt.Errorf("create recognizer: %w", err)
	}
	return &voskRecognizer{model: model, rec: rec}, nil
}

func (r *voskRecognizer) Accept(frame []byte) (bool, error) {
	return r.rec.AcceptWaveform(frame) != 0, nil
}

func (r *voskRecognizer) Result() ([]byte, error) {
	return []byte(r.rec.Result()), nil
}

func (r *voskRecognizer) FinalResult() ([]byte, error) {
	return []byte(r.rec.FinalResult()), nil
}

func (r *voskRecognizer) Close() error {
	r.rec.Free()
	r.model.Free()
	return nil
}
