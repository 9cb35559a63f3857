package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/solpipe/internal/ai"
	"github.com/xxxsen/solpipe/internal/config"
	"github.com/xxxsen/solpipe/internal/db"
	"github.com/xxxsen/solpipe/internal/embedcache"
	"github.com/xxxsen/solpipe/internal/extract"
	"github.com/xxxsen/solpipe/internal/filestore"
	"github.com/xxxsen/solpipe/internal/job"
	"github.com/xxxsen/solpipe/internal/repo"
	"github.com/xxxsen/solpipe/internal/schedule"
	"github.com/xxxsen/solpipe/internal/service"
)

type app struct {
	cfg        *config.Config
	db         *sql.DB
	extraction *service.ExtractionService
	indexing   *service.IndexingService
	cacheRepo  *repo.EmbeddingCacheRepo
}

func newApp(configPath string) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	a, err := buildApp(cfg, conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return a, nil
}

func buildApp(cfg *config.Config, conn *sql.DB) (*app, error) {
	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return nil, fmt.Errorf("init file store: %w", err)
	}
	invoker, err := ai.BuildInvoker(cfg.AI.Generators)
	if err != nil {
		return nil, fmt.Errorf("init generators: %w", err)
	}
	embedder, err := ai.BuildEmbedder(cfg.AI.Embedders)
	if err != nil {
		return nil, fmt.Errorf("init embedders: %w", err)
	}
	cacheRepo := repo.NewEmbeddingCacheRepo(conn)
	if cfg.EmbedCache.UseDB {
		embedder = embedcache.WrapDB(embedder, cacheRepo)
	}
	embedder = embedcache.WrapLRU(embedder, cfg.EmbedCache.LRUSize, time.Duration(cfg.EmbedCache.LRUTTLSeconds)*time.Second)

	extractor := extract.NewExtractor(invoker, extract.Config{
		MaxTokens:   cfg.Extraction.MaxTokens,
		Temperature: cfg.Extraction.Temperature,
		Timeout:     time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second,
	})
	extraction := service.NewExtractionService(
		repo.NewQuestionFileRepo(conn),
		store,
		extractor,
		repo.NewQuestionRepo(conn),
		service.ExtractionOptions{
			MaxChars:           cfg.Extraction.MaxChars,
			OverlapChars:       cfg.Extraction.OverlapChars,
			PersistConcurrency: cfg.Extraction.PersistConcurrency,
		},
	)
	indexing := service.NewIndexingService(
		repo.NewKnowledgeDocumentRepo(conn),
		service.NewChunkResolver(store),
		embedder,
		repo.NewChunkVectorRepo(conn),
	)
	return &app{
		cfg:        cfg,
		db:         conn,
		extraction: extraction,
		indexing:   indexing,
		cacheRepo:  cacheRepo,
	}, nil
}

func (a *app) runWorker(ctx context.Context, once bool) error {
	logger := logutil.GetLogger(ctx)
	sched := schedule.NewCronScheduler()
	cleanup := job.NewEmbeddingCacheCleanupJob(a.cacheRepo, a.cfg.EmbedCache.MaxAgeDays)
	if err := sched.AddJob(cleanup, a.cfg.Jobs.EmbeddingCacheCleanupSpec); err != nil {
		return err
	}
	if once {
		return sched.RunNow(ctx, cleanup.Name())
	}
	sched.Start(ctx)
	logger.Info("worker started")
	<-ctx.Done()
	logger.Info("worker stopping...")
	sched.Stop()
	return nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		logutil.GetLogger(context.Background()).Warn("close db failed", zap.Error(err))
	}
}
