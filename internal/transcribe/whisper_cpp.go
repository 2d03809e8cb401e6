package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalTranscriber runs a whisper.cpp main binary against a local audio file.
// You need a compiled whisper.cpp executable and a downloaded ggml model.
type LocalTranscriber struct {
	binaryPath string
	modelPath  string
	language   string
	logger     *zap.Logger
}

// NewLocalTranscriber creates a whisper.cpp backed transcriber.
func NewLocalTranscriber(binaryPath, modelPath, language string, logger *zap.Logger) *LocalTranscriber {
	if language == "" {
		language = "auto"
	}
	return &LocalTranscriber{
		binaryPath: binaryPath,
		modelPath:  modelPath,
		language:   language,
		logger:     logger,
	}
}

// Load verifies the binary and the model file exist. The model itself is
// mapped on first inference by whisper.cpp.
func (lt *LocalTranscriber) Load(ctx context.Context) error {
	if lt.binaryPath == "" {
		return fmt.Errorf("whisper binary path is empty")
	}
	if _, err := os.Stat(lt.binaryPath); err != nil {
		return fmt.Errorf("whisper binary %s: %w", lt.binaryPath, err)
	}
	if _, err := os.Stat(lt.modelPath); err != nil {
		return fmt.Errorf("whisper model %s: %w", lt.modelPath, err)
	}
	return nil
}

// Transcribe shells out to whisper.cpp and reads the text output file.
func (lt *LocalTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	outDir, err := os.MkdirTemp("", "whisper-out-*")
	if err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	defer os.RemoveAll(outDir)
	outputBase := filepath.Join(outDir, "transcript")

	args := []string{
		"-m", lt.modelPath,
		"-l", lt.language,
		"-otxt",
		"-f", audioPath,
		"-of", outputBase,
	}

	command := exec.CommandContext(ctx, lt.binaryPath, args...)
	var stderr bytes.Buffer
	command.Stderr = &stderr

	lt.logger.Debug("running whisper.cpp",
		zap.String("binary", lt.binaryPath),
		zap.String("args", strings.Join(args, " ")),
	)

	if err := command.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("whisper.cpp failed: %w, stderr: %s", err, stderr.String())
	}

	output, err := os.ReadFile(outputBase + ".txt")
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}
	return string(output), nil
}
