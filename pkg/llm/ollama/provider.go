package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-notes-assistant/pkg/llm"
)

const (
	defaultBaseURL = "http://localhost:11434"
	// keepAlive holds the model in memory between the questions of a session.
	keepAlive = "10m"
)

// Provider calls a local Ollama server through /api/chat without streaming.
type Provider struct {
	baseURL string
	model   string
	timeout time.Duration
	client  *http.Client
}

var _ llm.LLMProvider = &Provider{}

// NewProvider builds a client for model. timeout bounds each call and is
// applied on the request context, so a caller deadline that is shorter wins.
func NewProvider(baseURL, model string, timeout time.Duration) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		timeout: timeout,
		client:  &http.Client{},
	}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	Stream    bool          `json:"stream"`
	KeepAlive string        `json:"keep_alive,omitempty"`
	Options   modelOptions  `json:"options"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// modelOptions mirrors the Modelfile parameters Ollama accepts per request.
type modelOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if len(history) == 0 {
		return "", fmt.Errorf("ollama: empty chat history")
	}
	opts := llm.ApplyOptions(llm.Options{Model: p.model, Temperature: 0.7}, options...)

	body := chatRequest{
		Model:     opts.Model,
		Messages:  make([]chatMessage, 0, len(history)),
		KeepAlive: keepAlive,
		Options:   modelOptions{Temperature: opts.Temperature, NumPredict: opts.MaxTokens},
	}
	for _, m := range history {
		body.Messages = append(body.Messages, chatMessage{Role: llm.NormalizeRole(m.Role), Content: m.Content})
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var out chatResponse
	if err := p.post(ctx, "/api/chat", body, &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}
	if !out.Done {
		return "", fmt.Errorf("ollama: incomplete response from model %s", opts.Model)
	}
	return out.Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func (p *Provider) post(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("ollama: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("ollama: %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ollama: decode response: %w", err)
	}
	return nil
}
