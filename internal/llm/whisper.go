package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ladle/internal/config"
)

// MaxAudioBytes is the transcription API's hard input ceiling. Files
// over the limit are rejected locally without making the call.
const MaxAudioBytes = 25 * 1024 * 1024

// ErrAudioTooLarge is returned for files over MaxAudioBytes.
var ErrAudioTooLarge = errors.New("audio file exceeds 25MB transcription limit")

// WhisperClient transcribes audio files via the OpenAI transcription
// endpoint, requesting plain-text output.
type WhisperClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

func NewWhisperClient(cfg config.OpenAIConfig) *WhisperClient {
	return &WhisperClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.WhisperModel,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// Configured reports whether a credential is present.
func (c *WhisperClient) Configured() bool {
	return c.apiKey != ""
}

// Transcribe uploads the audio file and returns its transcript. The
// caller owns the file and its cleanup.
func (c *WhisperClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if !c.Configured() {
		return "", errors.New("transcription client not configured")
	}

	stat, err := os.Stat(audioPath)
	if err != nil {
		return "", err
	}
	if stat.Size() > MaxAudioBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrAudioTooLarge, stat.Size())
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := writer.WriteField("model", c.model); err != nil {
		return "", err
	}
	if err := writer.WriteField("response_format", "text"); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	endpoint := c.baseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("transcription failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(body)), nil
}
