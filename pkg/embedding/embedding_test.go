package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	values []float32
	err    error
	delay  time.Duration
	calls  int
}

func (s *stubProvider) Version() string { return "stub:v1" }

func (s *stubProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return newResponse(s.values), nil
}

func TestGuardedProvider(t *testing.T) {
	tests := []struct {
		name    string
		inner   *stubProvider
		text    string
		wantErr error
		calls   int
	}{
		{name: "ok", inner: &stubProvider{values: []float32{1, 0, 0}}, text: "hello", calls: 1},
		{name: "empty input", inner: &stubProvider{values: []float32{1, 0, 0}}, text: "   ", wantErr: ErrEmptyInput},
		{name: "input too long", inner: &stubProvider{values: []float32{1, 0, 0}}, text: strings.Repeat("a", 11), wantErr: ErrInputTooLong},
		{name: "wrong dimension", inner: &stubProvider{values: []float32{1, 0}}, text: "hello", wantErr: ErrDimensionMismatch, calls: 1},
		{name: "timeout", inner: &stubProvider{values: []float32{1, 0, 0}, delay: time.Second}, text: "hello", wantErr: context.DeadlineExceeded, calls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuardedProvider(tt.inner, 3, 10, 20*time.Millisecond)
			res, err := g.Generate(context.Background(), tt.text, TaskRetrievalDocument)
			assert.Equal(t, tt.calls, tt.inner.calls)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, res.Embedding.Values, 3)
			assert.Equal(t, "stub:v1", g.Version())
		})
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openAIEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-large", req.Model)
		assert.Equal(t, []string{"grocery reminder"}, req.Input)
		assert.Equal(t, 4, req.Dimensions)

		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.1,0.2,0.3,0.4]}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL, "", 4, srv.Client())
	res, err := p.Generate(context.Background(), "grocery reminder", TaskRetrievalQuery)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, res.Embedding.Values)
}

func TestOpenAIProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL, "", 0, srv.Client())
	_, err := p.Generate(context.Background(), "x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOllamaProvider_NormalizesVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		_, _ = w.Write([]byte(`{"embedding":[3.0,4.0]}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "nomic-embed-text", srv.Client())
	res, err := p.Generate(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, res.Embedding.Values[0], 1e-6)
	assert.InDelta(t, 0.8, res.Embedding.Values[1], 1e-6)
}

func TestGeminiProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/text-embedding-004:embedContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))
		var req EmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, TaskRetrievalDocument, req.TaskType)
		_, _ = w.Write([]byte(`{"embedding":{"values":[1,0]}}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("g-key", "", srv.Client())
	p.BaseURL = srv.URL
	res, err := p.Generate(context.Background(), "note", TaskRetrievalDocument)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, res.Embedding.Values)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2}, b: []float32{1, 2}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 0}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.True(t, math.Abs(got-tt.want) < 1e-9, "got %v want %v", got, tt.want)
		})
	}
}
