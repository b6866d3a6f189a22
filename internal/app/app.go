// Package app wires configuration into the stores, fetchers and services
// shared by the API server and the command-line tool.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timmy/tubevault/internal/config"
	"github.com/timmy/tubevault/internal/export"
	"github.com/timmy/tubevault/internal/logger"
	"github.com/timmy/tubevault/internal/repository"
	"github.com/timmy/tubevault/internal/service"
	"github.com/timmy/tubevault/internal/storage"
	"github.com/timmy/tubevault/internal/youtube"
)

// App holds the long-lived components built from a Config.
type App struct {
	Config  *config.Config
	Videos  *service.VideoService
	Fetcher *service.VideoFetcher

	// TextGen is nil when no generative-model API key is configured.
	TextGen service.TextGenerator

	closers []func() error
}

// New builds every component. Stores are dialed lazily, so New succeeds
// while the databases are still down; failures surface per operation.
// Parameters:
//   - cfg: validated configuration.
// Returns:
//   - *App: wired application; call Close when done.
//   - error: non-nil if a component cannot be constructed.
func New(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	docs, err := a.documentStore()
	if err != nil {
		return nil, err
	}

	qdrantRepo, err := repository.NewQdrantRepository(&repository.QdrantConnectionConfig{
		Host:            cfg.Qdrant.Host,
		Port:            cfg.Qdrant.Port,
		Collection:      cfg.Qdrant.Collection,
		APIKey:          cfg.Qdrant.APIKey,
		UseTLS:          cfg.Qdrant.UseTLS,
		VectorDimension: cfg.Embedding.Dimensions,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize qdrant: %w", err)
	}
	a.closers = append(a.closers, qdrantRepo.Close)

	embedder, err := service.NewEmbeddingProvider(&cfg.Embedding)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}

	a.Fetcher = service.NewVideoFetcher(
		youtube.NewMetadataFetcher(cfg.YouTube.OEmbedURL, cfg.YouTube.Timeout),
		youtube.NewTranscriptFetcher(cfg.YouTube.WatchURL, cfg.YouTube.TranscriptLanguage, cfg.YouTube.Timeout),
	)

	if cfg.LLM.APIKey != "" {
		gen, err := service.NewChatTextGenerator(&cfg.LLM)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize text generator: %w", err)
		}
		a.TextGen = gen
	} else {
		logger.Warn("GEMINI_API_KEY is not set; /generate and export are disabled")
	}

	a.Videos = service.NewVideoService(
		service.NewDocumentClient(docs, a.Fetcher),
		service.NewVectorClient(qdrantRepo, a.Fetcher, embedder),
		a.Fetcher,
		a.TextGen,
	)

	logger.GetDefault().WithFields(logger.Fields{
		logger.FieldStore:  cfg.Database.Driver,
		"vector_index":     cfg.Qdrant.Collection,
		"embedding_model":  embedder.GetModel(),
		"embedding_dim":    embedder.Dimensions(),
		"text_gen_enabled": a.TextGen != nil,
	}).Info("Application initialized")

	return a, nil
}

func (a *App) documentStore() (repository.DocumentStore, error) {
	cfg := a.Config.Database
	if cfg.Driver == "mongodb" {
		return repository.NewMongoVideoStore(repository.MongoConfig{
			URI:            cfg.URI,
			Database:       cfg.Name,
			Collection:     cfg.Collection,
			ConnectTimeout: 10 * time.Second,
		}), nil
	}

	db, err := repository.InitDB(&cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	a.closers = append(a.closers, sqlDB.Close)
	return repository.NewVideoRepository(db), nil
}

// Exporter builds the offline exporter for the configured object storage,
// creating the bucket first for S3-style backends.
func (a *App) Exporter(ctx context.Context) (*export.Exporter, error) {
	if a.TextGen == nil {
		return nil, errors.New("export needs GEMINI_API_KEY for title and description generation")
	}
	store, err := storage.NewStorage(&a.Config.Export)
	if err != nil {
		return nil, err
	}
	if b, ok := store.(interface{ EnsureBucket(context.Context) error }); ok {
		if err := b.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure export bucket: %w", err)
		}
	}
	return export.NewExporter(a.Fetcher, a.TextGen, store), nil
}

// Close releases store connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
