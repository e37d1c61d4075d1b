package bootstrap

import (
	"context"
	"fmt"
	"time"

	"ai-notes-assistant/internal/config"
	"ai-notes-assistant/internal/controller"
	"ai-notes-assistant/internal/pkg/logger"
	"ai-notes-assistant/internal/repository/implementation"
	"ai-notes-assistant/internal/repository/memory"
	"ai-notes-assistant/internal/repository/unitofwork"
	"ai-notes-assistant/internal/service"
	"ai-notes-assistant/pkg/events"
	pktNats "ai-notes-assistant/pkg/nats"
	"ai-notes-assistant/pkg/rag/qa"
	"ai-notes-assistant/pkg/rag/search"
	"ai-notes-assistant/pkg/speech"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

const sessionCleanupInterval = 10 * time.Minute

type Container struct {
	Logger logger.ILogger

	// Controllers
	NoteController      controller.INoteController
	SearchController    controller.ISearchController
	ChatbotController   controller.IChatbotController
	AssistantController controller.IAssistantController

	// Services, exposed for the worker and the CLI
	NoteService     service.INoteService
	IndexingService service.IIndexingService
	SearchEngine    *search.Engine
	Orchestrator    *qa.Orchestrator

	// Background services
	ConsumerService service.IConsumerService
	ReindexWorker   *service.ReindexWorker
	InboxWatcher    *service.InboxWatcher

	closers []func()
}

// NewContainer wires every service from cfg. db may be nil when both the
// note store and the vector store run in memory.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	promptLogger := logger.NewIsolatedLogger(cfg.App.PromptLogFilePath)
	c := &Container{Logger: sysLogger}

	var uowFactory unitofwork.RepositoryFactory
	var noteReader search.NoteReader
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
		noteReader = implementation.NewNoteRepository(db)
	} else {
		notes := memory.NewNoteRepository()
		uowFactory = unitofwork.NewMemoryRepositoryFactory(notes)
		noteReader = notes
	}

	vectors, closeVectors, err := NewVectorStore(ctx, db, cfg)
	if err != nil {
		return nil, fmt.Errorf("vector store: %w", err)
	}
	c.closers = append(c.closers, closeVectors)

	locker, closeLocker, err := NewLocker(ctx, cfg, sysLogger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("lock: %w", err)
	}
	c.closers = append(c.closers, closeLocker)

	// 2. AI providers
	embedder, err := NewEmbeddingProvider(cfg)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	llmProvider, err := NewLLMProvider(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	// 3. Event bus
	var eventPublisher events.Publisher
	if cfg.App.NatsURL != "" {
		natsPublisher, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "NATS unavailable, lifecycle events disabled", map[string]interface{}{"error": err.Error()})
		} else {
			eventPublisher = natsPublisher
			c.closers = append(c.closers, natsPublisher.Close)
		}
	}

	var publisherService service.IPublisherService
	var pubSub *gochannel.GoChannel
	if cfg.Indexing.Mode == "queue" {
		pubSub = gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
		publisherService = service.NewPublisherService(cfg.Indexing.Topic, pubSub)
		c.closers = append(c.closers, func() { _ = pubSub.Close() })
	}

	// 4. Services
	c.NoteService = service.NewNoteService(uowFactory, vectors, locker, publisherService, eventPublisher, sysLogger)
	c.IndexingService = service.NewIndexingService(uowFactory, vectors, embedder, locker, eventPublisher, sysLogger, cfg.Ai.RequestTimeout)
	if pubSub != nil {
		c.ConsumerService = service.NewConsumerService(pubSub, cfg.Indexing.Topic, c.IndexingService, sysLogger)
	}
	if db != nil && cfg.Vector.Provider == "memory" {
		// Vectors do not survive a restart; an empty version matches no note.
		if _, err := c.NoteService.InvalidateEmbeddingVersion(ctx, ""); err != nil {
			c.Close()
			return nil, fmt.Errorf("reset index state: %w", err)
		}
	}
	c.ReindexWorker = service.NewReindexWorker(c.NoteService, c.IndexingService, sysLogger, cfg.Indexing.ReindexInterval, cfg.Indexing.Workers)

	c.SearchEngine = search.NewEngine(embedder, vectors, noteReader, sysLogger, cfg.Rag.MaxTopK)
	c.Orchestrator = qa.NewOrchestrator(c.SearchEngine, llmProvider, qa.Config{
		TopK:              cfg.Rag.QATopK,
		MinScore:          cfg.Rag.QAMinScore,
		ContextCharBudget: cfg.Rag.ContextCharBudget,
		HistoryTurns:      cfg.Rag.HistoryTurns,
		Temperature:       cfg.Rag.AnswerTemperature,
		Timeout:           cfg.Ai.RequestTimeout,
	}, sysLogger, promptLogger)

	sessions := memory.NewSessionRepository(cfg.Rag.SessionTTL, sessionCleanupInterval)
	chatbotService := service.NewChatbotService(c.Orchestrator, sessions, locker, cfg.Rag.HistoryTurns, sysLogger)
	assistantService := service.NewAssistantService(llmProvider, sysLogger)

	var speechService service.ISpeechService
	if cfg.Keys.OpenAI != "" {
		client := speech.NewOpenAIClient(cfg.Keys.OpenAI, cfg.Ai.SpeechBaseURL, cfg.Ai.TranscriptionModel, cfg.Ai.SpeechModel, cfg.Ai.RequestTimeout)
		speechService = service.NewSpeechService(c.NoteService, client, client, cfg.Ai.SpeechVoice, sysLogger)
	}
	if cfg.App.InboxDir != "" {
		c.InboxWatcher = service.NewInboxWatcher(cfg.App.InboxDir, c.NoteService, speechService, sysLogger)
	}

	// 5. Controllers
	c.NoteController = controller.NewNoteController(c.NoteService, c.IndexingService, speechService)
	c.SearchController = controller.NewSearchController(c.SearchEngine, cfg.Rag.SearchTopK, cfg.Rag.SearchMinScore)
	c.ChatbotController = controller.NewChatbotController(chatbotService)
	c.AssistantController = controller.NewAssistantController(assistantService)

	sysLogger.Info("BOOTSTRAP", "Container ready", map[string]interface{}{
		"embedding_version": embedder.Version(),
		"vector_store":      cfg.Vector.Provider,
		"indexing_mode":     cfg.Indexing.Mode,
		"lock":              cfg.Lock.Provider,
	})
	return c, nil
}

// StartBackground launches the index consumer, the reindex sweeper and the
// inbox watcher. They stop when ctx is done.
func (c *Container) StartBackground(ctx context.Context) error {
	if c.ConsumerService != nil {
		if err := c.ConsumerService.Consume(ctx); err != nil {
			return err
		}
	}
	go c.ReindexWorker.Start(ctx)
	if c.InboxWatcher != nil {
		go func() {
			if err := c.InboxWatcher.Run(ctx); err != nil {
				c.Logger.Error("BOOTSTRAP", "Inbox watcher stopped", map[string]interface{}{"error": err.Error()})
			}
		}()
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
