package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ladle/internal/config"
)

func TestCompleteJSON(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer auth: %q", r.Header.Get("Authorization"))
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("request body not json: %v", err)
		}
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "{\"title\": \"X\"}"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(config.OpenAIConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		ChatModel: "gpt-4o-mini",
	})

	content, err := client.CompleteJSON(context.Background(), CompletionRequest{
		System:      "system prompt",
		User:        "user prompt",
		Temperature: 0.3,
		MaxTokens:   2000,
	})
	if err != nil {
		t.Fatalf("CompleteJSON failed: %v", err)
	}
	if content != `{"title": "X"}` {
		t.Errorf("content = %q", content)
	}

	if gotBody["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v", gotBody["model"])
	}
	rf, ok := gotBody["response_format"].(map[string]any)
	if !ok || rf["type"] != "json_object" {
		t.Errorf("response_format = %v, want json_object mode", gotBody["response_format"])
	}
}

func TestCompleteJSONErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewOpenAIClient(config.OpenAIConfig{APIKey: "k", BaseURL: srv.URL})
	if _, err := client.CompleteJSON(context.Background(), CompletionRequest{}); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestWhisperTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("response_format"); got != "text" {
			t.Errorf("response_format = %q", got)
		}
		w.Write([]byte("the spoken transcript\n"))
	}))
	defer srv.Close()

	audioPath := filepath.Join(t.TempDir(), "clip.m4a")
	if err := os.WriteFile(audioPath, []byte("fake audio bytes"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	client := NewWhisperClient(config.OpenAIConfig{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		WhisperModel: "whisper-1",
	})

	transcript, err := client.Transcribe(context.Background(), audioPath)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if transcript != "the spoken transcript" {
		t.Errorf("transcript = %q", transcript)
	}
}

func TestWhisperRejectsOversizeFile(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "huge.m4a")
	f, err := os.Create(audioPath)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	// Sparse file over the limit; nothing is actually written.
	if err := f.Truncate(MaxAudioBytes + 1); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	f.Close()

	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewWhisperClient(config.OpenAIConfig{APIKey: "k", BaseURL: srv.URL, WhisperModel: "whisper-1"})
	_, err = client.Transcribe(context.Background(), audioPath)
	if err == nil {
		t.Fatal("expected error for oversize file")
	}
	if !errors.Is(err, ErrAudioTooLarge) {
		t.Errorf("err = %v, want ErrAudioTooLarge", err)
	}
	if called {
		t.Error("API was called despite the local size check")
	}
}

func TestWhisperNotConfigured(t *testing.T) {
	client := NewWhisperClient(config.OpenAIConfig{})
	if client.Configured() {
		t.Error("client without key reports configured")
	}
	if _, err := client.Transcribe(context.Background(), "/nonexistent"); err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}
