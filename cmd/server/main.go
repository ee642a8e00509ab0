package main

import (
	"database/sql"
	"log"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/lexmetrica/juris-analyzer/internal/analysis"
	"github.com/lexmetrica/juris-analyzer/internal/api"
	"github.com/lexmetrica/juris-analyzer/internal/caselaw"
	"github.com/lexmetrica/juris-analyzer/internal/config"
	"github.com/lexmetrica/juris-analyzer/internal/contradiction"
	"github.com/lexmetrica/juris-analyzer/internal/embeddings"
	"github.com/lexmetrica/juris-analyzer/internal/retrieval"
	"github.com/lexmetrica/juris-analyzer/internal/similarity"
	"github.com/lexmetrica/juris-analyzer/internal/storage"
	"github.com/lexmetrica/juris-analyzer/internal/trend"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	tagger := caselaw.NewTagger()
	if cfg.PatternTablePath != "" {
		tagger, err = caselaw.NewTaggerFromFile(cfg.PatternTablePath)
		if err != nil {
			logger.Fatal("failed to load pattern table",
				zap.String("path", cfg.PatternTablePath),
				zap.Error(err))
		}
	}

	embeddingOpts := []embeddings.ClientOption{
		embeddings.WithMaxConcurrent(cfg.MaxConcurrent),
		embeddings.WithTimeout(cfg.RequestTimeout),
	}
	if cfg.EmbeddingModel != "" {
		embeddingOpts = append(embeddingOpts, embeddings.WithModel(cfg.EmbeddingModel))
	}
	embeddingClient := embeddings.NewClient(cfg.OpenRouterKey, embeddingOpts...)

	cache, err := embeddings.NewLRUCache(cfg.EmbeddingCacheSize)
	if err != nil {
		logger.Fatal("failed to create embedding cache", zap.Error(err))
	}
	embedder := embeddings.NewCachedClient(embeddingClient, cache)

	adjudicatorCfg := contradiction.DefaultConfig()
	adjudicatorCfg.APIKey = cfg.AnthropicKey
	adjudicatorCfg.Timeout = cfg.RequestTimeout
	if cfg.AdjudicatorModel != "" {
		adjudicatorCfg.Model = cfg.AdjudicatorModel
	}
	adjudicator := contradiction.NewHTTPAdjudicator(adjudicatorCfg)

	repo := storage.NewPostgresCaseRepository(db)
	source := retrieval.NewService(repo, embedder, tagger, logger)

	matcher := similarity.NewMatcher(embedder, similarity.DefaultThreshold)
	classifier := contradiction.NewClassifier(adjudicator,
		contradiction.WithMaxConcurrent(cfg.MaxConcurrent),
		contradiction.WithLogger(logger))

	detector := analysis.NewDetector(source, matcher, classifier, logger)
	monitor := analysis.NewMonitor(source, trend.NewEngine(cfg.MinCasesPerBucket), adjudicator, logger)

	server := api.NewServer(detector, monitor, source, repo, logger)

	logger.Info("starting juris-analyzer server", zap.String("port", cfg.Port))
	if err := server.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
