package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RAG_QA_TOP_K", "")
	cfg := Load()

	assert.Equal(t, 5, cfg.Rag.QATopK)
	assert.Equal(t, 0.2, cfg.Rag.QAMinScore)
	assert.Equal(t, 100, cfg.Rag.MaxTopK)
	assert.Equal(t, 60*time.Second, cfg.Ai.RequestTimeout)
	assert.Equal(t, 3*time.Minute, cfg.Lock.TTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RAG_QA_TOP_K", "7")
	t.Setenv("RAG_QA_MIN_SCORE", "0.35")
	t.Setenv("AI_REQUEST_TIMEOUT", "5s")
	t.Setenv("QDRANT_USE_TLS", "true")

	cfg := Load()
	assert.Equal(t, 7, cfg.Rag.QATopK)
	assert.Equal(t, 0.35, cfg.Rag.QAMinScore)
	assert.Equal(t, 5*time.Second, cfg.Ai.RequestTimeout)
	assert.True(t, cfg.Vector.QdrantUseTLS)
}

func TestRagConfig_LoadTuningFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rag.yaml")
	require.NoError(t, os.WriteFile(path, []byte("qa_top_k: 3\nqa_min_score: 0.5\n"), 0o644))

	r := RagConfig{QATopK: 5, QAMinScore: 0.2, ContextCharBudget: 8000}
	require.NoError(t, r.LoadTuningFile(path))

	assert.Equal(t, 3, r.QATopK)
	assert.Equal(t, 0.5, r.QAMinScore)
	assert.Equal(t, 8000, r.ContextCharBudget, "absent keys keep their value")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "qa top_k above cap", mutate: func(c *Config) { c.Rag.QATopK = 101 }, wantErr: true},
		{name: "min score above one", mutate: func(c *Config) { c.Rag.QAMinScore = 1.5 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Ai.RequestTimeout = 0 }, wantErr: true},
		{name: "nats with process-local lock", mutate: func(c *Config) { c.Indexing.Mode = "nats" }, wantErr: true},
		{name: "nats with redis lock", mutate: func(c *Config) {
			c.Indexing.Mode = "nats"
			c.Lock = LockConfig{Provider: "redis", TTL: 3 * time.Second}
		}},
		{name: "lock ttl shorter than one index", mutate: func(c *Config) {
			c.Lock = LockConfig{Provider: "redis", TTL: 2 * time.Second}
		}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Ai:  AIConfig{RequestTimeout: time.Second, EmbeddingDimension: 8},
				Rag: RagConfig{MaxTopK: 100, SearchTopK: 10, QATopK: 5, QAMinScore: 0.2, ContextCharBudget: 100},
			}
			tt.mutate(c)
			if tt.wantErr {
				assert.Error(t, c.Validate())
			} else {
				assert.NoError(t, c.Validate())
			}
		})
	}
}
