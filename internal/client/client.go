// Package client is a small Go client for the transcription server. The
// discover command uses it to sample transcripts from candidate channels, and
// it doubles as the reference for anyone scripting against the HTTP surface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultPollInterval = 2 * time.Second

// Client talks to a running transcription server.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. The default has no
// timeout because sync transcriptions can legitimately run for minutes;
// callers bound waits with a context instead.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPollInterval changes how often PollResult asks for a job's state.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// New returns a client for the server at baseURL, e.g. "http://127.0.0.1:5555".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{},
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health reports whether the server is reachable and its model loaded.
type Health struct {
	Status  string  `json:"status"`
	Loaded  bool    `json:"loaded"`
	UptimeS float64 `json:"uptime_s"`
}

// Result is a job result as returned by the server.
type Result struct {
	JobID             string  `json:"job_id"`
	Status            string  `json:"status"`
	Text              string  `json:"text,omitempty"`
	ErrorCode         string  `json:"error_code,omitempty"`
	Error             string  `json:"error,omitempty"`
	ProcessingSeconds float64 `json:"processing_time_s,omitempty"`
}

// Submitted acknowledges an async submission.
type Submitted struct {
	JobID         string `json:"job_id"`
	Status        string `json:"status"`
	QueuePosition int    `json:"queue_position"`
}

// Stats is the server's counter snapshot.
type Stats struct {
	QueueDepth    int     `json:"queue_depth"`
	Completed     int64   `json:"completed"`
	Failed        int64   `json:"failed"`
	ResultsCached int     `json:"results_cached"`
	UptimeS       float64 `json:"uptime_s"`
}

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	JobID      string `json:"job_id,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Health fetches GET /health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.get(ctx, "/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TranscribeSync submits a source and waits for the transcript inline.
// timeout, when positive, is sent as timeout_s and bounds the server-side
// wait; on expiry the returned *APIError carries the job id so the caller can
// poll for the eventual result.
func (c *Client) TranscribeSync(ctx context.Context, source string, timeout time.Duration) (*Result, error) {
	body := map[string]any{"source": source}
	if timeout > 0 {
		body["timeout_s"] = int(timeout.Seconds())
	}
	var out Result
	if err := c.post(ctx, "/transcribe/sync", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Submit enqueues a source for background transcription.
func (c *Client) Submit(ctx context.Context, source string) (*Submitted, error) {
	var out Submitted
	if err := c.post(ctx, "/transcribe", map[string]any{"source": source}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Result fetches the current state of a job.
func (c *Client) Result(ctx context.Context, jobID string) (*Result, error) {
	var out Result
	if err := c.get(ctx, "/result/"+jobID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PollResult polls a job until it reaches a terminal state or ctx expires.
func (c *Client) PollResult(ctx context.Context, jobID string) (*Result, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		res, err := c.Result(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if res.Status == "done" || res.Status == "failed" {
			return res, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stats fetches GET /stats.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.get(ctx, "/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = string(data)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
