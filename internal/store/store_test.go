package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetUnknownID(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	_, err := s.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Lifecycle(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	s.Create("job-1")

	res, err := s.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, res.Status)

	s.MarkRunning("job-1")
	res, _ = s.Get("job-1")
	assert.Equal(t, StatusRunning, res.Status)

	s.Complete("job-1", "hello world")
	res, _ = s.Get("job-1")
	assert.Equal(t, StatusDone, res.Status)
	assert.Equal(t, "hello world", res.Text)
	assert.False(t, res.CompletedAt.IsZero())
}

func TestStore_TerminalStateNeverOverwritten(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	s.Create("job-1")
	s.MarkRunning("job-1")
	s.Fail("job-1", "source_unavailable", "video not found")

	s.Complete("job-1", "should not stick")
	s.MarkRunning("job-1")

	res, err := s.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "source_unavailable", res.ErrorCode)
	assert.Empty(t, res.Text)
}

func TestStore_WaitWakesOnCompletion(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	s.Create("job-1")

	got := make(chan JobResult, 1)
	go func() {
		res, err := s.Wait(context.Background(), "job-1")
		if err == nil {
			got <- res
		}
	}()

	time.Sleep(20 * time.Millisecond)
	s.Complete("job-1", "transcript")

	select {
	case res := <-got:
		assert.Equal(t, StatusDone, res.Status)
		assert.Equal(t, "transcript", res.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was not signalled")
	}
}

func TestStore_WaitTimeoutLeavesJobRetrievable(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	s.Create("job-1")
	s.MarkRunning("job-1")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := s.Wait(ctx, "job-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The job keeps going and the result is still retrievable by id afterwards.
	s.Complete("job-1", "late but done")
	res, err := s.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, res.Status)
	assert.Equal(t, "late but done", res.Text)
}

func TestStore_ExpiryRemovesTerminalEntries(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	s.Create("done-job")
	s.Complete("done-job", "text")
	s.Create("pending-job")

	// Force the sweep instead of waiting for the janitor tick.
	s.expire(time.Now().Add(2 * time.Minute))

	_, err := s.Get("done-job")
	assert.ErrorIs(t, err, ErrNotFound)

	// Non-terminal entries survive the sweep.
	_, err = s.Get("pending-job")
	assert.NoError(t, err)
}

func TestStore_DeleteRollsBackRejectedSubmission(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	s.Create("job-1")
	s.Delete("job-1")

	_, err := s.Get("job-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
