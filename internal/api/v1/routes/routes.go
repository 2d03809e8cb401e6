package routes

import (
	"github.com/gin-gonic/gin"

	"youtube-scout/internal/api/v1/handlers"
)

// Register wires the transcription endpoints onto the router. The surface is
// deliberately flat; the local client scripts predate any /api/v1 prefix.
func Register(r *gin.Engine, h *handlers.TranscriptionHandler) {
	r.GET("/health", h.Health)
	r.POST("/transcribe/sync", h.TranscribeSync)
	r.POST("/transcribe", h.Submit)
	r.GET("/result/:job_id", h.Result)
	r.GET("/stats", h.Stats)
}
