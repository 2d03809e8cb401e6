package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueFull is the backpressure signal returned when the queue is at capacity.
// Callers should retry later or reduce concurrency; the job is never silently dropped.
var ErrQueueFull = errors.New("transcription queue is full")

// ErrClosed is returned by Dequeue after Close.
var ErrClosed = errors.New("transcription queue is closed")

// Queue is a bounded, two-level FIFO of pending transcription jobs. High-priority
// jobs (synchronous callers) are dequeued before normal-priority jobs; within a
// priority level order is strictly submission order. The queue never retries or
// re-orders on its own.
type Queue struct {
	mu       sync.Mutex
	high     []*TranscriptionJob
	normal   []*TranscriptionJob
	capacity int
	notify   chan struct{}
	closed   bool
}

// New creates a queue holding at most capacity pending jobs.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{
		capacity: capacity,
		notify:   make(chan struct{}, capacity),
	}
}

// Enqueue adds a job, failing with ErrQueueFull at capacity.
func (q *Queue) Enqueue(job *TranscriptionJob) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if len(q.high)+len(q.normal) >= q.capacity {
		q.mu.Unlock()
		return ErrQueueFull
	}
	if job.Priority >= PriorityHigh {
		q.high = append(q.high, job)
	} else {
		q.normal = append(q.normal, job)
	}
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue blocks until a job is available, the context is cancelled, or the
// queue is closed. Jobs come out in priority-then-submission order.
func (q *Queue) Dequeue(ctx context.Context) (*TranscriptionJob, error) {
	for {
		q.mu.Lock()
		if job := q.pop(); job != nil {
			q.mu.Unlock()
			return job, nil
		}
		if q.closed {
			q.mu.Unlock()
			return nil, ErrClosed
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		}
	}
}

// pop removes the next job. Caller holds q.mu.
func (q *Queue) pop() *TranscriptionJob {
	if len(q.high) > 0 {
		job := q.high[0]
		q.high = q.high[1:]
		return job
	}
	if len(q.normal) > 0 {
		job := q.normal[0]
		q.normal = q.normal[1:]
		return job
	}
	return nil
}

// Depth reports the number of pending jobs.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.high) + len(q.normal)
}

// Close rejects further enqueues and wakes a blocked Dequeue.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}
