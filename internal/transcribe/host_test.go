package transcribe

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTranscriber struct {
	loadErr   error
	text      string
	err       error
	delay     time.Duration
	inFlight  atomic.Int32
	maxDepth  atomic.Int32
	loadCalls atomic.Int32
}

func (f *fakeTranscriber) Load(ctx context.Context) error {
	f.loadCalls.Add(1)
	return f.loadErr
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	depth := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		max := f.maxDepth.Load()
		if depth <= max || f.maxDepth.CompareAndSwap(max, depth) {
			break
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

type fakeFetcher struct {
	path string
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, source string) (string, func(), error) {
	return f.path, func() {}, f.err
}

func newTestHost(tr Transcriber, fe MediaFetcher) *ModelHost {
	return NewModelHost(tr, fe, zap.NewNop())
}

func TestModelHost_DoubleLoadFails(t *testing.T) {
	h := newTestHost(&fakeTranscriber{text: "ok"}, &fakeFetcher{path: "/tmp/a.mp3"})

	require.NoError(t, h.Load(context.Background()))
	assert.True(t, h.Loaded())

	err := h.Load(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyLoaded)
	assert.True(t, h.Loaded(), "loaded flag must never flip back")
}

func TestModelHost_TranscribeBeforeLoad(t *testing.T) {
	h := newTestHost(&fakeTranscriber{}, &fakeFetcher{})

	_, err := h.Transcribe(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestModelHost_LoadFailureLeavesHostUnloaded(t *testing.T) {
	h := newTestHost(&fakeTranscriber{loadErr: errors.New("no cuda")}, &fakeFetcher{})

	err := h.Load(context.Background())
	require.Error(t, err)
	assert.False(t, h.Loaded())
}

func TestModelHost_SourceUnavailableClassification(t *testing.T) {
	h := newTestHost(&fakeTranscriber{text: "ok"}, &fakeFetcher{err: errors.New("video is private")})
	require.NoError(t, h.Load(context.Background()))

	_, err := h.Transcribe(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, CodeSourceUnavailable, ClassifyError(err))
}

func TestModelHost_TimeoutClassification(t *testing.T) {
	h := newTestHost(
		&fakeTranscriber{text: "ok", delay: 500 * time.Millisecond},
		&fakeFetcher{path: "/tmp/a.mp3"},
	)
	require.NoError(t, h.Load(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := h.Transcribe(ctx, "abc123")
	assert.ErrorIs(t, err, ErrTranscriptionTimeout)
	assert.Equal(t, CodeTranscriptionTimeout, ClassifyError(err))
}

func TestModelHost_EmptyTranscriptIsError(t *testing.T) {
	h := newTestHost(&fakeTranscriber{text: "   "}, &fakeFetcher{path: "/tmp/a.mp3"})
	require.NoError(t, h.Load(context.Background()))

	_, err := h.Transcribe(context.Background(), "abc123")
	require.Error(t, err)
	assert.Equal(t, CodeModelError, ClassifyError(err))
}

func TestModelHost_RejectsConcurrentUse(t *testing.T) {
	tr := &fakeTranscriber{text: "ok", delay: 50 * time.Millisecond}
	h := newTestHost(tr, &fakeFetcher{path: "/tmp/a.mp3"})
	require.NoError(t, h.Load(context.Background()))

	var busyErrs atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.Transcribe(context.Background(), "abc123"); errors.Is(err, ErrBusy) {
				busyErrs.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), tr.maxDepth.Load(),
		"at most one transcription may ever be in flight")
	assert.Equal(t, int32(3), busyErrs.Load())
}

func TestClassifyError_Generic(t *testing.T) {
	assert.Equal(t, CodeModelError, ClassifyError(errors.New("boom")))
	assert.Equal(t, CodeTranscriptionTimeout, ClassifyError(context.DeadlineExceeded))
}
