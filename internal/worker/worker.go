package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"youtube-scout/internal/metrics"
	"youtube-scout/internal/queue"
	"youtube-scout/internal/store"
	"youtube-scout/internal/transcribe"
)

// Worker is the single consumer of the request queue and the only caller of
// the model host. One failing job never stops the loop; only context
// cancellation (or queue close) does.
type Worker struct {
	queue      *queue.Queue
	store      *store.ResultStore
	host       *transcribe.ModelHost
	metrics    *metrics.Metrics
	logger     *zap.Logger
	jobTimeout time.Duration
}

// New creates a worker. jobTimeout bounds a single transcription; exceeding it
// fails the job with a transcription_timeout code.
func New(q *queue.Queue, s *store.ResultStore, h *transcribe.ModelHost, m *metrics.Metrics, logger *zap.Logger, jobTimeout time.Duration) *Worker {
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Minute
	}
	return &Worker{
		queue:      q,
		store:      s,
		host:       h,
		metrics:    m,
		logger:     logger,
		jobTimeout: jobTimeout,
	}
}

// Run consumes the queue until ctx is cancelled. The model host must already
// be loaded; a host that failed to load is fatal at startup, before Run.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker loop started", zap.Duration("job_timeout", w.jobTimeout))
	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, queue.ErrClosed) {
				w.logger.Info("worker loop stopped")
				return
			}
			w.logger.Error("dequeue failed", zap.Error(err))
			continue
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *queue.TranscriptionJob) {
	start := time.Now()
	w.store.MarkRunning(job.ID)
	w.logger.Info("processing job",
		zap.String("job_id", job.ID),
		zap.String("source", job.Source),
		zap.String("mode", string(job.Mode)),
	)

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	text, err := w.host.Transcribe(jobCtx, job.Source)
	cancel()

	took := time.Since(start)
	if err != nil {
		code := transcribe.ClassifyError(err)
		w.store.Fail(job.ID, code, err.Error())
		w.metrics.JobFailed(took)
		w.logger.Warn("job failed",
			zap.String("job_id", job.ID),
			zap.String("source", job.Source),
			zap.String("code", code),
			zap.Duration("took", took),
			zap.Error(err),
		)
		return
	}

	w.store.Complete(job.ID, text)
	w.metrics.JobCompleted(took)
	w.logger.Info("job completed",
		zap.String("job_id", job.ID),
		zap.String("source", job.Source),
		zap.Duration("took", took),
		zap.Int("chars", len(text)),
	)
}
