package bootstrap

import (
	"context"
	"log"
	"time"

	"site-assistant-be/internal/config"
	"site-assistant-be/internal/controller"
	"site-assistant-be/internal/pkg/logger"
	"site-assistant-be/internal/repository/implementation"
	"site-assistant-be/internal/repository/unitofwork"
	"site-assistant-be/internal/service"
	"site-assistant-be/pkg/embedding"
	"site-assistant-be/pkg/guard"
	"site-assistant-be/pkg/llm"
	"site-assistant-be/pkg/llm/factory"
	"site-assistant-be/pkg/rag/retrieval"

	pktNats "site-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController
	WebsiteController  controller.IWebsiteController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}
	embeddingClient := embedding.NewClient(embeddingProvider, sysLogger)

	// A missing model credential degrades the stream to a fallback
	// answer instead of failing startup.
	var llmProvider llm.LLMProvider
	if cfg.Ai.LLMProvider == "openai" && cfg.Keys.OpenAI == "" {
		log.Printf("[WARN] OPENAI_API_KEY not set, chat answers will be a configuration notice")
	} else {
		var err error
		llmProvider, err = factory.NewLLMProvider(
			cfg.Ai.LLMProvider,
			cfg.Ai.LLMModel,
			cfg.Keys.OpenAI,
			cfg.Ai.OllamaBaseURL,
		)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
		}
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	// 4. Infrastructure
	// NATS
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
	}

	// Redis
	var rdb *redis.Client
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb = redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, origin lookups go to the database: %v", err)
		rdb = nil
	}

	// 5. Guardrails and Retrieval
	websiteRepo := implementation.NewWebsiteRepository(db)
	chunkRepo := implementation.NewChunkRepository(db)

	originChecker := guard.NewOriginChecker(websiteRepo, rdb, sysLogger)
	rateLimiter := guard.NewRateLimiter(guard.DefaultLimit, guard.DefaultWindow)
	retriever := retrieval.NewRetriever(embeddingClient, chunkRepo, sysLogger)

	// 6. Services
	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	chatService := service.NewChatService(
		uowFactory,
		retriever,
		originChecker,
		rateLimiter,
		llmProvider,
		natsPub,
		sysLogger,
		time.Duration(cfg.Ai.StreamTimeoutSec)*time.Second,
	)
	documentService := service.NewDocumentService(
		uowFactory,
		pubSub,
		cfg.App.IngestTopic,
		cfg.Storage.UploadDir,
		cfg.Storage.MaxUploadMB,
		sysLogger,
	)
	websiteService := service.NewWebsiteService(uowFactory)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IngestTopic,
		uowFactory,
		embeddingClient,
		eventPublisher,
		sysLogger,
	)

	// 7. Controllers
	return &Container{
		ChatController:     controller.NewChatController(chatService),
		DocumentController: controller.NewDocumentController(documentService),
		WebsiteController:  controller.NewWebsiteController(websiteService),

		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}
