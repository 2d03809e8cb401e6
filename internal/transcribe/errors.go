package transcribe

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyLoaded is returned by a second Load call; the model is loaded
	// exactly once per process.
	ErrAlreadyLoaded = errors.New("model already loaded")

	// ErrModelNotLoaded is returned when Transcribe is called before Load.
	ErrModelNotLoaded = errors.New("model not loaded")

	// ErrBusy indicates a concurrent Transcribe call. The worker loop is the
	// sole caller; hitting this is a programming error, not a transient state.
	ErrBusy = errors.New("model host is busy with another job")

	// ErrSourceUnavailable means the referenced media could not be fetched or
	// decoded. Not retried automatically.
	ErrSourceUnavailable = errors.New("media source unavailable")

	// ErrTranscriptionTimeout means the model itself gave up, as opposed to a
	// caller merely ceasing to wait.
	ErrTranscriptionTimeout = errors.New("transcription timed out")
)

// Error codes recorded on failed job results and surfaced over the wire.
const (
	CodeSourceUnavailable    = "source_unavailable"
	CodeTranscriptionTimeout = "transcription_timeout"
	CodeModelError           = "model_error"
)

// ClassifyError maps a transcription failure to its wire code.
func ClassifyError(err error) string {
	switch {
	case errors.Is(err, ErrSourceUnavailable):
		return CodeSourceUnavailable
	case errors.Is(err, ErrTranscriptionTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return CodeTranscriptionTimeout
	default:
		return CodeModelError
	}
}
