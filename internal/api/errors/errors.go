package errors

import (
	"fmt"
	"net/http"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindBadRequest         ErrorKind = "bad_request"
	KindTimeout            ErrorKind = "timeout"
)

// Stable machine-readable codes carried alongside the kind so clients can
// tell apart, say, a full queue from a backend that is simply down.
const (
	CodeQueueFull            = "queue_full"
	CodeRequestTimeout       = "request_timeout"
	CodeTranscriptionTimeout = "transcription_timeout"
	CodeSourceUnavailable    = "source_unavailable"
	CodeModelError           = "model_error"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Code      string            `json:"code,omitempty"`
	JobID     string            `json:"job_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Code:    "not_found",
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// NewQueueFullError signals backpressure: the request queue rejected the job.
func NewQueueFullError() *APIError {
	return &APIError{
		Kind:    KindServiceUnavailable,
		Code:    CodeQueueFull,
		Message: "transcription queue is full, try again later",
	}
}

// NewRequestTimeoutError means only the HTTP caller stopped waiting; the job
// is still running and retrievable under the given id.
func NewRequestTimeoutError(jobID string) *APIError {
	return &APIError{
		Kind:    KindTimeout,
		Code:    CodeRequestTimeout,
		JobID:   jobID,
		Message: "timed out waiting for transcription, poll /result/" + jobID + " for the outcome",
	}
}

// NewSourceUnavailableError reports media that could not be fetched or decoded.
func NewSourceUnavailableError(jobID, detail string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Code:    CodeSourceUnavailable,
		JobID:   jobID,
		Message: detail,
	}
}

// NewTranscriptionTimeoutError means the model itself gave up on the job.
func NewTranscriptionTimeoutError(jobID, detail string) *APIError {
	return &APIError{
		Kind:    KindTimeout,
		Code:    CodeTranscriptionTimeout,
		JobID:   jobID,
		Message: detail,
	}
}

// NewModelError reports a per-job inference failure.
func NewModelError(jobID, detail string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Code:    CodeModelError,
		JobID:   jobID,
		Message: detail,
	}
}
