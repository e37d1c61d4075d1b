// Package speech wraps the transcription and speech synthesis engines.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"
)

type Transcriber interface {
	// Transcribe returns the text spoken in audio. filename carries the format (.mp3, .wav, ...).
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

type Synthesizer interface {
	// Synthesize returns mp3 audio of text read with voice.
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// OpenAIClient implements both interfaces against /audio/transcriptions and /audio/speech.
type OpenAIClient struct {
	apiKey             string
	baseURL            string
	transcriptionModel string
	speechModel        string
	client             *http.Client
}

func NewOpenAIClient(apiKey, baseURL, transcriptionModel, speechModel string, timeout time.Duration) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if transcriptionModel == "" {
		transcriptionModel = "whisper-1"
	}
	if speechModel == "" {
		speechModel = "tts-1"
	}
	return &OpenAIClient{
		apiKey:             apiKey,
		baseURL:            baseURL,
		transcriptionModel: transcriptionModel,
		speechModel:        speechModel,
		client:             &http.Client{Timeout: timeout},
	}
}

var (
	_ Transcriber = (*OpenAIClient)(nil)
	_ Synthesizer = (*OpenAIClient)(nil)
)

type transcriptionResponse struct {
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}
	if err := writer.WriteField("model", c.transcriptionModel); err != nil {
		return "", err
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	var tr transcriptionResponse
	if err := json.Unmarshal(respBytes, &tr); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if tr.Error != nil {
		return "", fmt.Errorf("transcription returned error: %s", tr.Error.Message)
	}
	return tr.Text, nil
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

func (c *OpenAIClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	payload, err := json.Marshal(speechRequest{
		Model:          c.speechModel,
		Input:          text,
		Voice:          voice,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech error (status %d): %s", resp.StatusCode, string(audio))
	}
	return audio, nil
}
