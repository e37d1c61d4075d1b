package bootstrap

import (
	"context"
	"fmt"

	"ai-notes-assistant/internal/config"
	"ai-notes-assistant/internal/model"
	"ai-notes-assistant/internal/pkg/logger"
	"ai-notes-assistant/internal/repository/contract"
	"ai-notes-assistant/internal/repository/implementation"
	"ai-notes-assistant/internal/repository/memory"
	"ai-notes-assistant/pkg/database"
	"ai-notes-assistant/pkg/embedding"
	embeddingFactory "ai-notes-assistant/pkg/embedding/factory"
	"ai-notes-assistant/pkg/llm"
	llmFactory "ai-notes-assistant/pkg/llm/factory"
	"ai-notes-assistant/pkg/lock"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func apiKeyFor(cfg *config.Config, provider string) string {
	switch provider {
	case "gemini":
		return cfg.Keys.GoogleGemini
	case "jina":
		return cfg.Keys.Jina
	case "huggingface":
		return cfg.Keys.HuggingFace
	case "openai":
		return cfg.Keys.OpenAI
	}
	return ""
}

func NewEmbeddingProvider(cfg *config.Config) (*embedding.GuardedProvider, error) {
	baseURL := cfg.Ai.EmbeddingBaseURL
	if baseURL == "" && cfg.Ai.EmbeddingProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	return embeddingFactory.NewEmbeddingProvider(embeddingFactory.Config{
		Provider:      cfg.Ai.EmbeddingProvider,
		Model:         cfg.Ai.EmbeddingModel,
		BaseURL:       baseURL,
		APIKey:        apiKeyFor(cfg, cfg.Ai.EmbeddingProvider),
		Dimension:     cfg.Ai.EmbeddingDimension,
		MaxInputChars: cfg.Ai.EmbeddingMaxInputChars,
		Timeout:       cfg.Ai.RequestTimeout,
	})
}

func NewLLMProvider(ctx context.Context, cfg *config.Config) (llm.LLMProvider, error) {
	baseURL := cfg.Ai.LLMBaseURL
	if baseURL == "" && cfg.Ai.LLMProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	return llmFactory.NewLLMProvider(ctx, llmFactory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  baseURL,
		APIKey:   apiKeyFor(cfg, cfg.Ai.LLMProvider),
		Timeout:  cfg.Ai.RequestTimeout,
	})
}

// NewVectorStore opens the configured vector store. The returned close
// function releases its connection.
func NewVectorStore(ctx context.Context, db *gorm.DB, cfg *config.Config) (contract.NoteVectorRepository, func(), error) {
	noop := func() {}
	switch cfg.Vector.Provider {
	case "pgvector":
		if db == nil {
			return nil, noop, fmt.Errorf("pgvector store needs a database")
		}
		return implementation.NewNoteVectorRepository(db), noop, nil
	case "qdrant":
		repo, err := implementation.NewQdrantNoteVectorRepository(ctx, implementation.QdrantConfig{
			Host:       cfg.Vector.QdrantHost,
			Port:       cfg.Vector.QdrantPort,
			APIKey:     cfg.Vector.QdrantAPIKey,
			UseTLS:     cfg.Vector.QdrantUseTLS,
			Collection: cfg.Vector.QdrantCollection,
			Dimension:  cfg.Ai.EmbeddingDimension,
		})
		if err != nil {
			return nil, noop, err
		}
		return repo, func() { _ = repo.Close() }, nil
	case "chroma":
		repo, err := implementation.NewChromaNoteVectorRepository(ctx, cfg.Vector.ChromaURL, cfg.Vector.ChromaCollection)
		if err != nil {
			return nil, noop, err
		}
		return repo, func() { _ = repo.Close() }, nil
	case "memory":
		return memory.NewNoteVectorRepository(), noop, nil
	}
	return nil, noop, fmt.Errorf("unsupported vector store provider: %s", cfg.Vector.Provider)
}

// NewLocker returns the per-note lock. The Redis locker is shared between
// processes, so an unreachable Redis fails startup instead of degrading to
// process-local locks.
func NewLocker(ctx context.Context, cfg *config.Config, log logger.ILogger) (lock.Locker, func(), error) {
	if cfg.Lock.Provider != "redis" {
		return lock.NewKeyedMutex(), func() {}, nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, func() {}, fmt.Errorf("redis lock unreachable: %w", err)
	}
	return lock.NewRedisLocker(rdb, "notes:lock:", cfg.Lock.TTL), func() { _ = rdb.Close() }, nil
}

// OpenDatabase connects the note store. The "memory" driver returns a nil
// handle and the container falls back to in-process repositories. SQLite
// databases are migrated on open since they are usually created on demand.
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.Driver == "memory" {
		return nil, nil
	}
	level := gormLogger.Warn
	if !cfg.IsProduction() {
		level = gormLogger.Info
	}
	db, err := database.Open(cfg.Database.Driver, cfg.Database.Connection, level)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == database.DriverSQLite {
		if err := model.AutoMigrate(db, false); err != nil {
			return nil, err
		}
	}
	return db, nil
}
