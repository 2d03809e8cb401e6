package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ModelHost owns the single loaded inference model. It is initialized once at
// server startup and exclusively driven by the worker loop; the HTTP layer
// never touches it directly. Converting "N processes wanting the accelerator"
// into "one serialized consumer" is the whole point of this type.
type ModelHost struct {
	transcriber Transcriber
	fetcher     MediaFetcher
	archiver    Archiver
	logger      *zap.Logger

	loaded atomic.Bool
	busy   atomic.Bool
}

// HostOption configures a ModelHost.
type HostOption func(*ModelHost)

// WithArchiver keeps a copy of every fetched audio file in object storage.
func WithArchiver(a Archiver) HostOption {
	return func(h *ModelHost) { h.archiver = a }
}

// NewModelHost wires a transcriber and a media fetcher into a host. The host
// starts unloaded; call Load exactly once before use.
func NewModelHost(transcriber Transcriber, fetcher MediaFetcher, logger *zap.Logger, opts ...HostOption) *ModelHost {
	h := &ModelHost{
		transcriber: transcriber,
		fetcher:     fetcher,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Load initializes the model. Calling it twice is an error; the loaded flag
// never flips back to false while the process runs.
func (h *ModelHost) Load(ctx context.Context) error {
	if !h.loaded.CompareAndSwap(false, true) {
		return ErrAlreadyLoaded
	}
	start := time.Now()
	if err := h.transcriber.Load(ctx); err != nil {
		h.loaded.Store(false)
		return fmt.Errorf("load model: %w", err)
	}
	h.logger.Info("model loaded", zap.Duration("took", time.Since(start)))
	return nil
}

// Loaded reports whether the model has been initialized.
func (h *ModelHost) Loaded() bool {
	return h.loaded.Load()
}

// Transcribe fetches the referenced media and runs it through the model. It
// must not be called concurrently; the caller serializes access.
func (h *ModelHost) Transcribe(ctx context.Context, source string) (string, error) {
	if !h.loaded.Load() {
		return "", ErrModelNotLoaded
	}
	if !h.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer h.busy.Store(false)

	audioPath, cleanup, err := h.fetcher.Fetch(ctx, source)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("fetch %q: %w", source, ErrTranscriptionTimeout)
		}
		return "", fmt.Errorf("fetch %q: %w (%v)", source, ErrSourceUnavailable, err)
	}

	if h.archiver != nil {
		if aerr := h.archiver.Archive(ctx, source, audioPath); aerr != nil {
			h.logger.Warn("audio archive failed", zap.String("source", source), zap.Error(aerr))
		}
	}

	text, err := h.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("transcribe %q: %w", source, ErrTranscriptionTimeout)
		}
		return "", fmt.Errorf("transcribe %q: %w", source, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("transcribe %q: model produced no text", source)
	}
	return text, nil
}
