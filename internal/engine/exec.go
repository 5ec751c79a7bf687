package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/mattn/go-shellwords"

	"github.com/ambiware-labs/wavscribe/internal/audio"
	"github.com/ambiware-labs/wavscribe/internal/config"
)

// execRecognizer shells out to an external transcription command. The command
// is batch-oriented, so frames are buffered and decoded in one pass at
// finalization; no mid-stream utterance boundaries are ever reported.
type execRecognizer struct {
	ctx  context.Context
	cmd  []string
	cfg  config.EngineConfig
	info audio.Info
	pcm  []byte
}

func newExecRecognizer(ctx context.Context, cfg config.EngineConfig, info audio.Info) (Recognizer, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse engine command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("engine command is empty")
	}
	return &execRecognizer{ctx: ctx, cmd: args, cfg: cfg, info: info}, nil
}

func (r *execRecognizer) Accept(frame []byte) (bool, error) {
	r.pcm = append(r.pcm, frame...)
	return false, nil
}

func (r *execRecognizer) Result() ([]byte, error) {
	return nil, fmt.Errorf("exec engine has no utterance results before finalization")
}

func (r *execRecognizer) FinalResult() ([]byte, error) {
	file, err := os.CreateTemp(os.TempDir(), "wavscribe_*.wav")
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(file.Name())
	defer file.Close()

	if err := audio.WritePCM(file, r.pcm, r.info.SampleRate, r.info.Channels); err != nil {
		return nil, err
	}

	base := r.cmd[0]
	cmdArgs := append([]string{}, r.cmd[1:]...)
	cmdArgs = append(cmdArgs, "--audio", file.Name())
	if r.cfg.ModelPath != "" {
		cmdArgs = append(cmdArgs, "--model", r.cfg.ModelPath)
	}

	command := exec.CommandContext(r.ctx, base, cmdArgs...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return nil, fmt.Errorf("engine command failed: %w: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

func (r *execRecognizer) Close() error {
	r.pcm = nil
	return nil
}
