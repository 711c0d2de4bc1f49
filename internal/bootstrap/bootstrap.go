package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/cheese-shop-assistant/internal/config"
	"github.com/kirillkom/cheese-shop-assistant/internal/core/ports"
	"github.com/kirillkom/cheese-shop-assistant/internal/core/usecase"
	"github.com/kirillkom/cheese-shop-assistant/internal/infrastructure/cache/redis"
	openaillm "github.com/kirillkom/cheese-shop-assistant/internal/infrastructure/llm/openai"
	"github.com/kirillkom/cheese-shop-assistant/internal/infrastructure/projection"
	"github.com/kirillkom/cheese-shop-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/cheese-shop-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/cheese-shop-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/cheese-shop-assistant/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/cheese-shop-assistant/internal/infrastructure/vector/pinecone"
	"github.com/kirillkom/cheese-shop-assistant/internal/observability/logging"
	"github.com/kirillkom/cheese-shop-assistant/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Queue      ports.MessageQueue
	Catalog    ports.CatalogReader
	IngestUC   ports.CatalogIngestor
	ProcessUC  ports.CatalogProcessor
	RetrieveUC ports.Retriever
	AnswerUC   ports.ChatService
	BulkLoadUC ports.BulkLoader

	Metrics *metrics.HTTPServerMetrics

	closeFn func()
}

// Options tweaks bootstrap per binary. The loader skips the queue because
// it writes both stores directly.
type Options struct {
	Service    string
	SkipQueue  bool
	HTTPServer bool
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	service := opts.Service
	if service == "" {
		service = "cheese-shop-assistant"
	}
	logger := logging.NewJSONLogger(service, cfg.LogLevel)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	attrs := postgres.NewAttributeRepository(db)
	if err := attrs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	var httpMetrics *metrics.HTTPServerMetrics
	if opts.HTTPServer {
		httpMetrics = metrics.NewHTTPServerMetrics(service)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	var onUsage func(promptTokens, completionTokens int)
	if httpMetrics != nil {
		onUsage = func(promptTokens, completionTokens int) {
			httpMetrics.RecordTokenUsage(service, cfg.OpenAIGenModel, promptTokens, completionTokens)
		}
	}
	llmClient := openaillm.New(openaillm.Config{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		GenModel:   cfg.OpenAIGenModel,
		EmbedModel: cfg.OpenAIEmbedModel,
		Dimensions: cfg.EmbeddingDimensions,
		Executor:   executor,
		OnUsage:    onUsage,
	})
	planner := openaillm.NewPlanner(llmClient)
	generator := openaillm.NewGenerator(llmClient)

	var embedder ports.Embedder = openaillm.NewEmbedder(llmClient)
	var redisStore *redis.Store
	if cfg.RedisAddr != "" {
		redisStore, err = redis.NewStore(cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("init embedding cache: %w", err)
		}
		embedder = redis.NewCachedEmbedder(
			embedder,
			redisStore,
			cfg.OpenAIEmbedModel,
			time.Duration(cfg.EmbedCacheTTLSeconds)*time.Second,
			logger,
		)
	}

	vectors := pinecone.New(cfg.PineconeBaseURL, cfg.PineconeAPIKey, cfg.PineconeNamespace, cfg.EmbeddingDimensions)
	projector := projection.New()

	var queue *nats.Queue
	if !opts.SkipQueue {
		queue, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init message queue: %w", err)
		}
	}

	retrieveUC := usecase.NewRetrieveUseCase(planner, embedder, attrs, vectors, cfg.EmbeddingDimensions, logger)
	answerUC := usecase.NewAnswerUseCase(retrieveUC, generator, cfg.RetrieveTopK, cfg.ContextTopK)
	processUC := usecase.NewProjectCatalogItemUseCase(storage, projector, embedder, attrs, vectors)
	bulkLoadUC := usecase.NewBulkLoadUseCase(projector, embedder, attrs, vectors, cfg.VectorBatchSize, logger)

	app := &App{
		Config:     cfg,
		Catalog:    attrs,
		ProcessUC:  processUC,
		RetrieveUC: retrieveUC,
		AnswerUC:   answerUC,
		BulkLoadUC: bulkLoadUC,
		Metrics:    httpMetrics,
		closeFn: func() {
			if queue != nil {
				queue.Close()
			}
			if redisStore != nil {
				redisStore.Close()
			}
			_ = db.Close()
		},
	}
	if queue != nil {
		app.Queue = queue
		app.IngestUC = usecase.NewIngestCatalogUseCase(storage, queue)
	}
	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
