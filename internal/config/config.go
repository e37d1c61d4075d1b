package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Vector   VectorConfig
	Rag      RagConfig
	Indexing IndexingConfig
	Lock     LockConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	PromptLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	InboxDir           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Driver     string // postgres | sqlite | memory
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
	Jina         string
	HuggingFace  string
}

type AIConfig struct {
	EmbeddingProvider      string // gemini | ollama | jina | openai
	EmbeddingModel         string
	EmbeddingBaseURL       string
	EmbeddingDimension     int
	EmbeddingMaxInputChars int
	OllamaBaseURL          string
	LLMProvider            string // ollama | openai | huggingface | gemini
	LLMModel               string
	LLMBaseURL             string
	SpeechBaseURL          string
	TranscriptionModel     string
	SpeechModel            string
	SpeechVoice            string
	RequestTimeout         time.Duration
}

type VectorConfig struct {
	Provider         string // pgvector | qdrant | chroma | memory
	QdrantHost       string
	QdrantPort       int
	QdrantAPIKey     string
	QdrantUseTLS     bool
	QdrantCollection string
	ChromaURL        string
	ChromaCollection string
}

// RagConfig holds the retrieval knobs. Values may be overlaid from RAG_TUNING_FILE.
type RagConfig struct {
	MaxTopK           int
	SearchTopK        int
	SearchMinScore    float64
	QATopK            int
	QAMinScore        float64
	ContextCharBudget int
	HistoryTurns      int
	AnswerTemperature float64
	SessionTTL        time.Duration
	TuningFile        string
}

type IndexingConfig struct {
	Mode            string // queue | nats | none
	Topic           string
	ReindexInterval time.Duration
	Workers         int
}

type LockConfig struct {
	Provider string // memory | redis
	TTL      time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			PromptLogFilePath:  getEnv("PROMPT_LOG_FILE_PATH", "logs/llm_rag.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			InboxDir:           getEnv("INBOX_DIR", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:      getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:         getEnv("EMBEDDING_MODEL", ""),
			EmbeddingBaseURL:       getEnv("EMBEDDING_BASE_URL", ""),
			EmbeddingDimension:     getEnvAsInt("EMBEDDING_DIMENSION", 3072),
			EmbeddingMaxInputChars: getEnvAsInt("EMBEDDING_MAX_INPUT_CHARS", 20000),
			OllamaBaseURL:          getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:            getEnv("LLM_PROVIDER", "openai"),
			LLMModel:               getEnv("LLM_MODEL", "gpt-4o"),
			LLMBaseURL:             getEnv("LLM_BASE_URL", ""),
			SpeechBaseURL:          getEnv("SPEECH_BASE_URL", "https://api.openai.com/v1"),
			TranscriptionModel:     getEnv("TRANSCRIPTION_MODEL", "whisper-1"),
			SpeechModel:            getEnv("SPEECH_MODEL", "tts-1"),
			SpeechVoice:            getEnv("SPEECH_VOICE", "onyx"),
			RequestTimeout:         getEnvAsDuration("AI_REQUEST_TIMEOUT", 60*time.Second),
		},
		Vector: VectorConfig{
			Provider:         getEnv("VECTOR_STORE_PROVIDER", "pgvector"),
			QdrantHost:       getEnv("QDRANT_HOST", "localhost"),
			QdrantPort:       getEnvAsInt("QDRANT_PORT", 6334),
			QdrantAPIKey:     getEnv("QDRANT_API_KEY", ""),
			QdrantUseTLS:     getEnvAsBool("QDRANT_USE_TLS", false),
			QdrantCollection: getEnv("QDRANT_COLLECTION", "notes"),
			ChromaURL:        getEnv("CHROMA_URL", "http://localhost:8000"),
			ChromaCollection: getEnv("CHROMA_COLLECTION", "notes"),
		},
		Rag: RagConfig{
			MaxTopK:           getEnvAsInt("RAG_MAX_TOP_K", 100),
			SearchTopK:        getEnvAsInt("RAG_SEARCH_TOP_K", 10),
			SearchMinScore:    getEnvAsFloat("RAG_SEARCH_MIN_SCORE", 0.0),
			QATopK:            getEnvAsInt("RAG_QA_TOP_K", 5),
			QAMinScore:        getEnvAsFloat("RAG_QA_MIN_SCORE", 0.2),
			ContextCharBudget: getEnvAsInt("RAG_CONTEXT_CHAR_BUDGET", 8000),
			HistoryTurns:      getEnvAsInt("RAG_HISTORY_TURNS", 10),
			AnswerTemperature: getEnvAsFloat("RAG_ANSWER_TEMPERATURE", 0.2),
			SessionTTL:        getEnvAsDuration("CHAT_SESSION_TTL", time.Hour),
			TuningFile:        getEnv("RAG_TUNING_FILE", ""),
		},
		Indexing: IndexingConfig{
			Mode:            getEnv("INDEXING_MODE", "queue"),
			Topic:           getEnv("EMBED_NOTE_CONTENT_TOPIC_NAME", "EMBED_NOTE_CONTENT"),
			ReindexInterval: getEnvAsDuration("REINDEX_INTERVAL", 5*time.Minute),
			Workers:         getEnvAsInt("REINDEX_WORKERS", 4),
		},
		Lock: LockConfig{
			Provider: getEnv("LOCK_PROVIDER", "memory"),
			TTL:      getEnvAsDuration("LOCK_TTL", 3*time.Minute),
		},
	}

	if cfg.Rag.TuningFile != "" {
		if err := cfg.Rag.LoadTuningFile(cfg.Rag.TuningFile); err != nil {
			log.Printf("Warn: failed to load RAG tuning file %s: %v", cfg.Rag.TuningFile, err)
		}
	}

	return cfg
}

// Validate rejects settings the retrieval engine cannot honour.
func (c *Config) Validate() error {
	var problems []string
	r := c.Rag
	if r.MaxTopK < 1 {
		problems = append(problems, "RAG_MAX_TOP_K must be >= 1")
	}
	if r.QATopK < 1 || r.QATopK > r.MaxTopK {
		problems = append(problems, "RAG_QA_TOP_K must be in [1, RAG_MAX_TOP_K]")
	}
	if r.SearchTopK < 1 || r.SearchTopK > r.MaxTopK {
		problems = append(problems, "RAG_SEARCH_TOP_K must be in [1, RAG_MAX_TOP_K]")
	}
	if r.QAMinScore < 0 || r.QAMinScore > 1 || r.SearchMinScore < 0 || r.SearchMinScore > 1 {
		problems = append(problems, "min scores must be in [0, 1]")
	}
	if r.ContextCharBudget < 1 {
		problems = append(problems, "RAG_CONTEXT_CHAR_BUDGET must be >= 1")
	}
	if c.Ai.RequestTimeout <= 0 {
		problems = append(problems, "AI_REQUEST_TIMEOUT must be positive")
	}
	if c.Ai.EmbeddingDimension < 1 {
		problems = append(problems, "EMBEDDING_DIMENSION must be >= 1")
	}
	// Indexing in another process only stays serialized per note through a shared lock.
	if c.Indexing.Mode == "nats" && c.Lock.Provider != "redis" {
		problems = append(problems, "INDEXING_MODE=nats requires LOCK_PROVIDER=redis")
	}
	if c.Lock.Provider == "redis" && c.Lock.TTL <= 2*c.Ai.RequestTimeout {
		problems = append(problems, "LOCK_TTL must exceed twice AI_REQUEST_TIMEOUT")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
