package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ai-notes-assistant/internal/bootstrap"
	"ai-notes-assistant/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		App: config.AppConfig{
			Port:               "0",
			Environment:        "test",
			LogFilePath:        filepath.Join(dir, "app.log"),
			PromptLogFilePath:  filepath.Join(dir, "prompt.log"),
			CorsAllowedOrigins: "*",
		},
		Database: config.DatabaseConfig{Driver: "memory"},
		Ai: config.AIConfig{
			EmbeddingProvider:      "ollama",
			EmbeddingModel:         "nomic-embed-text",
			EmbeddingDimension:     768,
			EmbeddingMaxInputChars: 20000,
			OllamaBaseURL:          "http://127.0.0.1:1",
			LLMProvider:            "ollama",
			LLMModel:               "gemma:2b",
			RequestTimeout:         time.Second,
		},
		Vector: config.VectorConfig{Provider: "memory"},
		Rag: config.RagConfig{
			MaxTopK:           100,
			SearchTopK:        10,
			QATopK:            5,
			QAMinScore:        0.2,
			ContextCharBudget: 8000,
			HistoryTurns:      10,
			SessionTTL:        time.Hour,
		},
		Indexing: config.IndexingConfig{Mode: "queue", Topic: "EMBED_NOTE_CONTENT", Workers: 1},
		Lock:     config.LockConfig{Provider: "memory"},
	}
}

func TestServerRoutes(t *testing.T) {
	cfg := memoryConfig(t)
	container, err := bootstrap.NewContainer(context.Background(), nil, cfg)
	require.NoError(t, err)
	defer container.Close()
	assert.NotNil(t, container.ConsumerService)
	assert.Nil(t, container.InboxWatcher)

	app := New(cfg, container).GetApp()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"create note", http.MethodPost, "/api/note/v1", `{"text":"Buy milk and eggs tomorrow"}`, http.StatusCreated},
		{"list notes", http.MethodGet, "/api/note/v1", "", http.StatusOK},
		{"empty note rejected", http.MethodPost, "/api/note/v1", `{"text":""}`, http.StatusBadRequest},
		{"speech disabled without key", http.MethodGet, "/api/note/v1/00000000-0000-0000-0000-000000000001/speech", "", http.StatusServiceUnavailable},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestNoQueueOutsideQueueMode(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Indexing.Mode = "none"
	container, err := bootstrap.NewContainer(context.Background(), nil, cfg)
	require.NoError(t, err)
	defer container.Close()

	assert.Nil(t, container.ConsumerService)
	assert.NotNil(t, container.ReindexWorker)
}

func TestUnknownVectorStoreFails(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Vector.Provider = "faiss"
	_, err := bootstrap.NewContainer(context.Background(), nil, cfg)
	assert.ErrorContains(t, err, "unsupported vector store provider")
}

func TestUnreachableRedisLockFails(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Lock = config.LockConfig{Provider: "redis", TTL: 3 * time.Second}
	cfg.App.RedisURL = "redis://127.0.0.1:1/0"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := bootstrap.NewContainer(ctx, nil, cfg)
	assert.ErrorContains(t, err, "redis lock unreachable")
}
