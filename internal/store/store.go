package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned for unknown or expired job ids.
var ErrNotFound = errors.New("job not found")

// Status is the lifecycle state of a job. pending and running are transient;
// done and failed are terminal and never overwritten.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// JobResult is the externally visible completion state of a job.
type JobResult struct {
	JobID       string
	Status      Status
	Text        string
	ErrorCode   string
	Error       string
	SubmittedAt time.Time
	CompletedAt time.Time
	Duration    time.Duration
}

type entry struct {
	result    JobResult
	done      chan struct{} // closed when the result reaches a terminal state
	expiresAt time.Time
}

// ResultStore maps job ids to their current result. It has a single writer (the
// worker loop) and many concurrent readers (polling clients); terminal entries
// self-expire after the retention window. Waiters are signalled through a
// per-entry channel rather than by polling.
type ResultStore struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	retention time.Duration
	stop      chan struct{}
	stopOnce  sync.Once
}

// New creates a store whose terminal entries expire after retention.
func New(retention time.Duration) *ResultStore {
	if retention <= 0 {
		retention = 30 * time.Minute
	}
	s := &ResultStore{
		entries:   make(map[string]*entry),
		retention: retention,
		stop:      make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Create registers a pending entry for a freshly submitted job.
func (s *ResultStore) Create(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[jobID]; ok {
		return
	}
	s.entries[jobID] = &entry{
		result: JobResult{
			JobID:       jobID,
			Status:      StatusPending,
			SubmittedAt: time.Now(),
		},
		done: make(chan struct{}),
	}
}

// Delete removes an entry. Used to roll back a submission the queue rejected.
func (s *ResultStore) Delete(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, jobID)
}

// MarkRunning transitions a pending entry to running.
func (s *ResultStore) MarkRunning(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[jobID]
	if !ok || e.result.Status.Terminal() {
		return
	}
	e.result.Status = StatusRunning
}

// Complete writes the done state with the transcribed text. Terminal states are
// never overwritten.
func (s *ResultStore) Complete(jobID, text string) {
	s.finish(jobID, func(r *JobResult) {
		r.Status = StatusDone
		r.Text = text
	})
}

// Fail writes the failed state with a classified error code and message.
func (s *ResultStore) Fail(jobID, code, message string) {
	s.finish(jobID, func(r *JobResult) {
		r.Status = StatusFailed
		r.ErrorCode = code
		r.Error = message
	})
}

func (s *ResultStore) finish(jobID string, apply func(*JobResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[jobID]
	if !ok || e.result.Status.Terminal() {
		return
	}
	apply(&e.result)
	e.result.CompletedAt = time.Now()
	e.result.Duration = e.result.CompletedAt.Sub(e.result.SubmittedAt)
	e.expiresAt = e.result.CompletedAt.Add(s.retention)
	close(e.done)
}

// Get returns the current result for a job id.
func (s *ResultStore) Get(jobID string) (JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[jobID]
	if !ok {
		return JobResult{}, ErrNotFound
	}
	return e.result, nil
}

// Wait blocks until the job reaches a terminal state or ctx expires. A waiter
// that gives up does not cancel the job; the entry stays retrievable by id.
func (s *ResultStore) Wait(ctx context.Context, jobID string) (JobResult, error) {
	s.mu.RLock()
	e, ok := s.entries[jobID]
	s.mu.RUnlock()
	if !ok {
		return JobResult{}, ErrNotFound
	}

	select {
	case <-e.done:
		s.mu.RLock()
		defer s.mu.RUnlock()
		return e.result, nil
	case <-ctx.Done():
		return JobResult{}, ctx.Err()
	}
}

// Len reports the number of cached results.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the expiry janitor.
func (s *ResultStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *ResultStore) janitor() {
	interval := s.retention / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.expire(now)
		}
	}
}

func (s *ResultStore) expire(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.result.Status.Terminal() && now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
