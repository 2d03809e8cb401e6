package queue

import (
	"time"

	"github.com/google/uuid"
)

// Mode distinguishes callers that block for a result from callers that poll later.
type Mode string

const (
	ModeSync  Mode = "sync"
	ModeAsync Mode = "async"
)

// Priority controls dequeue order. Higher-priority jobs are dequeued before any
// lower-priority job, but never preempt a job that is already running.
type Priority int

const (
	PriorityNormal Priority = 0
	PriorityHigh   Priority = 1
)

// TranscriptionJob is one transcription request. It is immutable after creation;
// status transitions live in the result store, not on the job itself.
type TranscriptionJob struct {
	ID          string
	Source      string
	Mode        Mode
	Priority    Priority
	SubmittedAt time.Time
}

// NewJob creates a job for the given media source reference.
func NewJob(source string, mode Mode, priority Priority) *TranscriptionJob {
	return &TranscriptionJob{
		ID:          uuid.New().String(),
		Source:      source,
		Mode:        mode,
		Priority:    priority,
		SubmittedAt: time.Now(),
	}
}
