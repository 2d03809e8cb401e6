package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,64}$`)

// YTDLPFetcher downloads the audio track of a YouTube video with yt-dlp into a
// temporary directory. Any download or decode failure classifies the source as
// unavailable; the queue never retries it.
type YTDLPFetcher struct {
	binaryPath string
	logger     *zap.Logger
}

// NewYTDLPFetcher creates a fetcher. binaryPath defaults to "yt-dlp" on PATH.
func NewYTDLPFetcher(binaryPath string, logger *zap.Logger) *YTDLPFetcher {
	if binaryPath == "" {
		binaryPath = "yt-dlp"
	}
	return &YTDLPFetcher{binaryPath: binaryPath, logger: logger}
}

// Fetch downloads bestaudio for a video id and returns the local file path.
func (f *YTDLPFetcher) Fetch(ctx context.Context, source string) (string, func(), error) {
	if !videoIDPattern.MatchString(source) {
		return "", nil, fmt.Errorf("invalid video id %q", source)
	}

	dir, err := os.MkdirTemp("", "ytscout-audio-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	url := "https://www.youtube.com/watch?v=" + source
	outTemplate := filepath.Join(dir, source+".%(ext)s")

	args := []string{
		"-f", "bestaudio[ext=m4a]/bestaudio/best",
		"-x", "--audio-format", "mp3",
		"-o", outTemplate,
		"--no-playlist",
		"--quiet", "--no-warnings",
		"--socket-timeout", "60",
		"--retries", "3",
		url,
	}

	command := exec.CommandContext(ctx, f.binaryPath, args...)
	var stderr bytes.Buffer
	command.Stderr = &stderr

	f.logger.Debug("downloading audio", zap.String("video_id", source))
	if err := command.Run(); err != nil {
		if ctx.Err() != nil {
			return "", cleanup, ctx.Err()
		}
		return "", cleanup, fmt.Errorf("yt-dlp failed: %w, stderr: %s", err, stderr.String())
	}

	// yt-dlp may keep a different extension when no re-encode was needed.
	for _, ext := range []string{".mp3", ".m4a", ".webm", ".wav", ".opus"} {
		candidate := filepath.Join(dir, source+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, cleanup, nil
		}
	}
	return "", cleanup, fmt.Errorf("downloaded audio for %s not found", source)
}
