//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"coachlens/internal/app/pipeline"
	"coachlens/internal/app/storage"
	"coachlens/internal/config"
)

// InitializeApp builds the full application from configuration.
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		provideStore,
		provideMediaStore,
		provideTranscriber,
		provideAnalyzer,
		provideQueue,
		provideZapLogger,
		provideSlogLogger,
		providePool,
		provideServer,
		pipeline.NewRunner,
		pipeline.NewService,
		newApp,
		wire.Bind(new(pipeline.URLResolver), new(*storage.MinioMediaStore)),
		wire.Bind(new(pipeline.MediaRemover), new(*storage.MinioMediaStore)),
	)
	return nil, nil, nil
}
