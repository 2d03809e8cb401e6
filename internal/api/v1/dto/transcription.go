package dto

// SyncTranscribeRequest asks for a transcription and blocks for the result.
type SyncTranscribeRequest struct {
	Source         string `json:"source" binding:"required"`
	TimeoutSeconds int    `json:"timeout_s" binding:"omitempty,min=1,max=3600"`
}

// SubmitRequest queues a transcription for later polling.
type SubmitRequest struct {
	Source string `json:"source" binding:"required"`
}

// SubmitResponse acknowledges an async submission.
type SubmitResponse struct {
	JobID         string `json:"job_id"`
	Status        string `json:"status"`
	QueuePosition int    `json:"queue_position"`
}

// SyncTranscribeResponse carries a completed synchronous transcription.
type SyncTranscribeResponse struct {
	JobID             string  `json:"job_id"`
	Text              string  `json:"text"`
	ProcessingSeconds float64 `json:"processing_time_s"`
}

// ResultResponse is the current state of a job, terminal or not.
type ResultResponse struct {
	JobID             string  `json:"job_id"`
	Status            string  `json:"status"`
	Text              string  `json:"text,omitempty"`
	ErrorCode         string  `json:"error_code,omitempty"`
	Error             string  `json:"error,omitempty"`
	ProcessingSeconds float64 `json:"processing_time_s,omitempty"`
}

// HealthResponse reports liveness and whether the model host is loaded.
type HealthResponse struct {
	Status        string  `json:"status"`
	Loaded        bool    `json:"loaded"`
	UptimeSeconds float64 `json:"uptime_s"`
}
