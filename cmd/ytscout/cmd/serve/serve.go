package serve

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"youtube-scout/internal/app"
	"youtube-scout/internal/config"
)

var configPath string

func init() {
	Cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the transcription server",
	Long: `Run the transcription server: loads the Whisper model once and serializes
all transcription requests through a bounded queue. Endpoints:

  GET  /health           liveness and model state
  POST /transcribe/sync  transcribe and wait for the text
  POST /transcribe       enqueue and return a job id
  GET  /result/:job_id   poll a job
  GET  /stats            queue and throughput counters
  GET  /metrics          Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServerConfig(configPath)
		if err != nil {
			return err
		}

		logger, err := buildLogger(cfg.Environment)
		if err != nil {
			return err
		}
		defer logger.Sync()

		application, err := app.InitializeApplication(cfg, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- application.Start(ctx)
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
			logger.Info("shutdown signal received")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return application.Shutdown(shutdownCtx)
	},
}

func buildLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
