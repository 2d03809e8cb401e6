//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"youtube-scout/internal/api/server"
	"youtube-scout/internal/config"
)

// InitializeApplication builds the full server graph from config.
func InitializeApplication(cfg config.ServerConfig, logger *zap.Logger) (*Application, error) {
	wire.Build(
		newApplication,
		provideQueue,
		provideStore,
		provideTranscriber,
		provideFetcher,
		provideHost,
		provideMetrics,
		provideWorker,
		provideHandler,
		provideServerConfig,
		server.New,
	)
	return nil, nil
}
