package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apierrors "youtube-scout/internal/api/errors"
	"youtube-scout/internal/api/middleware"
	"youtube-scout/internal/api/v1/dto"
	"youtube-scout/internal/metrics"
	"youtube-scout/internal/queue"
	"youtube-scout/internal/store"
	"youtube-scout/internal/transcribe"
)

// TranscriptionHandler translates HTTP requests into queue and store
// operations. Handlers only enqueue, poll, and wait; nothing here ever
// touches the model host directly.
type TranscriptionHandler struct {
	queue       *queue.Queue
	store       *store.ResultStore
	host        *transcribe.ModelHost
	metrics     *metrics.Metrics
	syncTimeout time.Duration
}

// NewTranscriptionHandler creates the handler set for the transcription API.
// syncTimeout is the default wait bound for /transcribe/sync when the caller
// does not pass one.
func NewTranscriptionHandler(q *queue.Queue, s *store.ResultStore, h *transcribe.ModelHost, m *metrics.Metrics, syncTimeout time.Duration) *TranscriptionHandler {
	if syncTimeout <= 0 {
		syncTimeout = 30 * time.Minute
	}
	return &TranscriptionHandler{
		queue:       q,
		store:       s,
		host:        h,
		metrics:     m,
		syncTimeout: syncTimeout,
	}
}

// Health reports liveness and model state. Never fails.
func (h *TranscriptionHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:        "healthy",
		Loaded:        h.host.Loaded(),
		UptimeSeconds: h.metrics.Uptime().Seconds(),
	})
}

// TranscribeSync enqueues with high priority, then blocks until the job is
// terminal or the caller timeout elapses. A timeout does not cancel the job;
// the response carries the job id so the caller can poll /result later.
func (h *TranscriptionHandler) TranscribeSync(c *gin.Context) {
	var req dto.SyncTranscribeRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	job, err := h.submit(req.Source, queue.ModeSync, queue.PriorityHigh)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	timeout := h.syncTimeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	res, err := h.store.Wait(ctx, job.ID)
	if err != nil {
		// Only the wait gave up; the job keeps running and stays retrievable.
		middleware.HandleError(c, apierrors.NewRequestTimeoutError(job.ID))
		return
	}

	if res.Status == store.StatusFailed {
		middleware.HandleError(c, failureToAPIError(res))
		return
	}

	c.JSON(http.StatusOK, dto.SyncTranscribeResponse{
		JobID:             res.JobID,
		Text:              res.Text,
		ProcessingSeconds: res.Duration.Seconds(),
	})
}

// Submit enqueues with normal priority and returns the job id immediately.
func (h *TranscriptionHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	job, err := h.submit(req.Source, queue.ModeAsync, queue.PriorityNormal)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.SubmitResponse{
		JobID:         job.ID,
		Status:        string(store.StatusPending),
		QueuePosition: h.queue.Depth(),
	})
}

// Result returns the current state of a job.
func (h *TranscriptionHandler) Result(c *gin.Context) {
	jobID := c.Param("job_id")

	res, err := h.store.Get(jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.HandleError(c, apierrors.NewNotFoundError("job "+jobID))
			return
		}
		middleware.HandleError(c, err)
		return
	}

	resp := dto.ResultResponse{
		JobID:     res.JobID,
		Status:    string(res.Status),
		Text:      res.Text,
		ErrorCode: res.ErrorCode,
		Error:     res.Error,
	}
	if res.Status.Terminal() {
		resp.ProcessingSeconds = res.Duration.Seconds()
	}
	c.JSON(http.StatusOK, resp)
}

// Stats reports queue depth, job counters, and uptime.
func (h *TranscriptionHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot(h.queue.Depth(), h.store.Len()))
}

// submit creates the store entry before enqueueing and rolls it back when the
// queue rejects the job, so a QueueFull submission leaves no trace.
func (h *TranscriptionHandler) submit(source string, mode queue.Mode, prio queue.Priority) (*queue.TranscriptionJob, error) {
	job := queue.NewJob(source, mode, prio)
	h.store.Create(job.ID)
	if err := h.queue.Enqueue(job); err != nil {
		h.store.Delete(job.ID)
		if errors.Is(err, queue.ErrQueueFull) {
			return nil, apierrors.NewQueueFullError()
		}
		return nil, apierrors.NewInternalError(err.Error())
	}
	return job, nil
}

func failureToAPIError(res store.JobResult) *apierrors.APIError {
	switch res.ErrorCode {
	case transcribe.CodeSourceUnavailable:
		return apierrors.NewSourceUnavailableError(res.JobID, res.Error)
	case transcribe.CodeTranscriptionTimeout:
		return apierrors.NewTranscriptionTimeoutError(res.JobID, res.Error)
	default:
		return apierrors.NewModelError(res.JobID, res.Error)
	}
}
