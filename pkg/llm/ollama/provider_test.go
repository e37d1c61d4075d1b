package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-notes-assistant/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Chat(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		reply   string
		delay   time.Duration
		want    string
		wantErr string
	}{
		{name: "answer", status: http.StatusOK, reply: `{"message":{"role":"assistant","content":"hello"},"done":true}`, want: "hello"},
		{name: "model error", status: http.StatusOK, reply: `{"error":"model 'llama3' not found"}`, wantErr: "not found"},
		{name: "server error", status: http.StatusInternalServerError, reply: "boom", wantErr: "returned 500: boom"},
		{name: "incomplete", status: http.StatusOK, reply: `{"message":{"content":"hel"},"done":false}`, wantErr: "incomplete"},
		{name: "timeout", status: http.StatusOK, reply: `{"done":true}`, delay: 200 * time.Millisecond, wantErr: "deadline exceeded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/chat", r.URL.Path)
				var req chatRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.False(t, req.Stream)
				assert.Equal(t, "llama3", req.Model)
				assert.Equal(t, 64, req.Options.NumPredict)
				assert.Equal(t, llm.RoleAssistant, req.Messages[1].Role)
				if tt.delay > 0 {
					select {
					case <-time.After(tt.delay):
					case <-r.Context().Done():
						return
					}
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.reply))
			}))
			defer srv.Close()

			p := NewProvider(srv.URL+"/", "llama3", 50*time.Millisecond)
			out, err := p.Chat(context.Background(), []llm.Message{
				{Role: llm.RoleUser, Content: "hi"},
				{Role: "model", Content: "hello"},
				{Role: llm.RoleUser, Content: "again"},
			}, llm.WithMaxTokens(64))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestProvider_EmptyHistory(t *testing.T) {
	_, err := NewProvider("", "llama3", 0).Chat(context.Background(), nil)
	assert.Error(t, err)
}
