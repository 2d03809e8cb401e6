package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		status int
		code   string
	}{
		{"queue full maps to 503", NewQueueFullError(), http.StatusServiceUnavailable, CodeQueueFull},
		{"request timeout maps to 504", NewRequestTimeoutError("j1"), http.StatusGatewayTimeout, CodeRequestTimeout},
		{"transcription timeout maps to 504", NewTranscriptionTimeoutError("j1", "gave up"), http.StatusGatewayTimeout, CodeTranscriptionTimeout},
		{"source unavailable maps to 422", NewSourceUnavailableError("j1", "bad video"), http.StatusUnprocessableEntity, CodeSourceUnavailable},
		{"not found maps to 404", NewNotFoundError("job"), http.StatusNotFound, "not_found"},
		{"model error maps to 500", NewModelError("j1", "inference blew up"), http.StatusInternalServerError, CodeModelError},
		{"bad request maps to 400", NewBadRequestError("nope"), http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestRequestTimeoutCarriesJobID(t *testing.T) {
	err := NewRequestTimeoutError("abc-123")
	assert.Equal(t, "abc-123", err.JobID)
	assert.Contains(t, err.Message, "abc-123")
}
