package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/phuslu/log"

	"aigist/internal/chunker"
	"aigist/internal/config"
	"aigist/internal/embedding"
	"aigist/internal/embedding/gemini"
	"aigist/internal/engine"
	"aigist/internal/llm"
	"aigist/internal/vectorstore"
	badgersnap "aigist/internal/vectorstore/badger"
)

// App owns the assembled component graph: the durable store, the external
// clients and the engine on top of them.
type App struct {
	Config *config.AppConfig
	Engine *engine.Engine
	Store  *vectorstore.Store

	snaps  *badgersnap.Snapshotter
	logger log.Logger
}

// New builds every component from the configuration. API keys are read from
// the environment variables the config names; a missing key fails fast here
// rather than on the first request.
func New(ctx context.Context, cfg *config.AppConfig, logger log.Logger) (*App, error) {
	snaps, err := badgersnap.Open(cfg.Store.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", cfg.Store.Path, err)
	}

	store, err := vectorstore.New(cfg.Embedder.Dimension, snaps, logger)
	if err != nil {
		snaps.Close()
		return nil, fmt.Errorf("load vector store: %w", err)
	}

	retry := embedding.DefaultRetryPolicy()
	if cfg.Embedder.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.Embedder.MaxAttempts
	}
	embedder, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:            os.Getenv(cfg.Embedder.APIKeyEnv),
		Model:             cfg.Embedder.Model,
		Dimension:         cfg.Embedder.Dimension,
		MaxBatchSize:      cfg.Embedder.BatchSize,
		Timeout:           time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
		RequestsPerSecond: cfg.Embedder.RequestsPerSecond,
		Retry:             retry,
	}, logger)
	if err != nil {
		snaps.Close()
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	completer, err := llm.New(llm.Config{
		APIKey:      os.Getenv(cfg.Completer.APIKeyEnv),
		Model:       cfg.Completer.Model,
		Temperature: cfg.Completer.Temperature,
		Timeout:     time.Duration(cfg.Completer.TimeoutSecs) * time.Second,
	}, logger)
	if err != nil {
		snaps.Close()
		return nil, fmt.Errorf("init completer: %w", err)
	}

	ch := chunker.New(cfg.Chunker.TargetSize, cfg.Chunker.Overlap, cfg.Chunker.MaxChunks)
	eng := engine.New(ch, embedder, completer, store, engine.Config{
		TopK:            cfg.Search.TopK,
		MinSimilarity:   cfg.Search.MinSimilarity,
		ContextBudget:   cfg.Search.ContextBudget,
		AnswerMaxTokens: cfg.Search.AnswerMaxTokens,
	}, logger)

	return &App{Config: cfg, Engine: eng, Store: store, snaps: snaps, logger: logger}, nil
}

// Close flushes any pending snapshot and releases the store.
func (a *App) Close() error {
	if err := a.Store.Persist(); err != nil {
		a.logger.Error().Err(err).Msg("final snapshot flush failed")
	}
	return a.snaps.Close()
}
