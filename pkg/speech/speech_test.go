package speech

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClient_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "memo.mp3", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "fake-audio", string(data))

		_, _ = w.Write([]byte(`{"text":"Buy milk and eggs tomorrow"}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk", srv.URL, "", "", time.Second)
	text, err := c.Transcribe(context.Background(), strings.NewReader("fake-audio"), "/tmp/inbox/memo.mp3")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk and eggs tomorrow", text)
}

func TestOpenAIClient_Synthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		var req speechRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tts-1", req.Model)
		assert.Equal(t, "onyx", req.Voice)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3mp3"))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk", srv.URL, "", "", time.Second)
	audio, err := c.Synthesize(context.Background(), "hello", "onyx")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3mp3"), audio)
}

func TestOpenAIClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk", srv.URL, "", "", time.Second)
	_, err := c.Transcribe(context.Background(), strings.NewReader("x"), "a.wav")
	assert.Error(t, err)
	_, err = c.Synthesize(context.Background(), "x", "onyx")
	assert.Error(t, err)
}
