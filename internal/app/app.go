// Package app assembles the transcription server from its parts.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"youtube-scout/internal/api/server"
	"youtube-scout/internal/api/v1/handlers"
	"youtube-scout/internal/archive"
	"youtube-scout/internal/config"
	"youtube-scout/internal/metrics"
	"youtube-scout/internal/queue"
	"youtube-scout/internal/store"
	"youtube-scout/internal/transcribe"
	"youtube-scout/internal/worker"
)

// Application owns every long-lived component of the transcription server and
// their startup/shutdown order.
type Application struct {
	Config  config.ServerConfig
	Logger  *zap.Logger
	Queue   *queue.Queue
	Store   *store.ResultStore
	Host    *transcribe.ModelHost
	Metrics *metrics.Metrics
	Worker  *worker.Worker
	Server  *server.Server

	workerCancel context.CancelFunc
	workerDone   chan struct{}
}

// Start loads the model, launches the worker loop and begins serving HTTP.
// A model that fails to load is fatal; serving requests that can only fail is
// worse than not starting.
func (a *Application) Start(ctx context.Context) error {
	if err := a.Host.Load(ctx); err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	workerCtx, cancel := context.WithCancel(context.Background())
	a.workerCancel = cancel
	a.workerDone = make(chan struct{})
	go func() {
		defer close(a.workerDone)
		a.Worker.Run(workerCtx)
	}()

	a.Logger.Info("server starting",
		zap.String("host", a.Config.Host),
		zap.String("port", a.Config.Port),
		zap.String("provider", a.Config.Transcriber.Provider),
		zap.Int("queue_size", a.Config.QueueSize),
	)
	return a.Server.Start()
}

// Shutdown stops accepting requests, drains the worker and closes the store.
func (a *Application) Shutdown(ctx context.Context) error {
	err := a.Server.Shutdown(ctx)

	a.Queue.Close()
	if a.workerCancel != nil {
		a.workerCancel()
	}
	if a.workerDone != nil {
		select {
		case <-a.workerDone:
		case <-ctx.Done():
			err = errors.Join(err, fmt.Errorf("worker did not stop: %w", ctx.Err()))
		}
	}
	a.Store.Close()

	a.Logger.Info("server stopped")
	return err
}

func newApplication(
	cfg config.ServerConfig,
	logger *zap.Logger,
	q *queue.Queue,
	s *store.ResultStore,
	h *transcribe.ModelHost,
	m *metrics.Metrics,
	w *worker.Worker,
	srv *server.Server,
) *Application {
	return &Application{
		Config:  cfg,
		Logger:  logger,
		Queue:   q,
		Store:   s,
		Host:    h,
		Metrics: m,
		Worker:  w,
		Server:  srv,
	}
}

func provideQueue(cfg config.ServerConfig) *queue.Queue {
	return queue.New(cfg.QueueSize)
}

func provideStore(cfg config.ServerConfig) *store.ResultStore {
	return store.New(cfg.Retention())
}

func provideTranscriber(cfg config.ServerConfig, logger *zap.Logger) (transcribe.Transcriber, error) {
	switch cfg.Transcriber.Provider {
	case "whisper_cpp":
		if cfg.Transcriber.BinaryPath == "" || cfg.Transcriber.ModelPath == "" {
			return nil, errors.New("whisper_cpp provider needs binary_path and model_path (or WHISPER_CPP_BINARY / WHISPER_CPP_MODEL)")
		}
		return transcribe.NewLocalTranscriber(
			cfg.Transcriber.BinaryPath,
			cfg.Transcriber.ModelPath,
			cfg.Transcriber.Language,
			logger,
		), nil
	case "openai":
		keys, err := config.GetKeys()
		if err != nil {
			return nil, err
		}
		if keys.OpenAI == "" {
			return nil, errors.New("openai provider needs OPENAI_API_KEY")
		}
		return transcribe.NewRemoteTranscriber(openai.NewClient(keys.OpenAI)), nil
	default:
		return nil, fmt.Errorf("unknown transcriber provider %q", cfg.Transcriber.Provider)
	}
}

func provideFetcher(cfg config.ServerConfig, logger *zap.Logger) transcribe.MediaFetcher {
	binary := cfg.Transcriber.YTDLPPath
	if binary == "" {
		binary = "yt-dlp"
	}
	return transcribe.NewYTDLPFetcher(binary, logger)
}

func provideHost(cfg config.ServerConfig, t transcribe.Transcriber, f transcribe.MediaFetcher, logger *zap.Logger) (*transcribe.ModelHost, error) {
	var opts []transcribe.HostOption
	if cfg.Archive.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		arch, err := archive.NewMinIOArchiver(ctx, cfg.Archive, logger)
		if err != nil {
			return nil, fmt.Errorf("archive storage: %w", err)
		}
		opts = append(opts, transcribe.WithArchiver(arch))
	}
	return transcribe.NewModelHost(t, f, logger, opts...), nil
}

func provideMetrics(q *queue.Queue) *metrics.Metrics {
	return metrics.New(q.Depth)
}

func provideWorker(cfg config.ServerConfig, q *queue.Queue, s *store.ResultStore, h *transcribe.ModelHost, m *metrics.Metrics, logger *zap.Logger) *worker.Worker {
	return worker.New(q, s, h, m, logger, cfg.JobTimeout())
}

func provideHandler(cfg config.ServerConfig, q *queue.Queue, s *store.ResultStore, h *transcribe.ModelHost, m *metrics.Metrics) *handlers.TranscriptionHandler {
	return handlers.NewTranscriptionHandler(q, s, h, m, cfg.SyncTimeout())
}

func provideServerConfig(cfg config.ServerConfig) server.Config {
	return server.Config{
		Host:        cfg.Host,
		Port:        cfg.Port,
		ReadTimeout: 30 * time.Second,
		// The write timeout must outlive the longest sync wait, or gin
		// cuts the connection before the transcript arrives.
		WriteTimeout: cfg.SyncTimeout() + time.Minute,
		IdleTimeout:  2 * time.Minute,
		Environment:  cfg.Environment,
	}
}
