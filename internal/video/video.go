// Package video implements the video extraction chain on top of the
// yt-dlp CLI: generic metadata for any supported platform, YouTube
// caption transcripts, and the audio-download fallback.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"ladle/internal/classify"
	"ladle/internal/config"
	"ladle/internal/model"
)

// AudioTranscriber turns a downloaded audio file into text. The llm
// package provides the Whisper-backed implementation.
type AudioTranscriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Extractor resolves video metadata and a best-effort transcript.
// Transcript absence is not an extraction failure; the AI normalizer
// downstream reports insufficient content as its own error.
type Extractor struct {
	cfg         *config.Config
	transcriber AudioTranscriber
	logger      *slog.Logger

	// runYtDlp is swappable in tests so no subprocess is spawned.
	runYtDlp func(ctx context.Context, args ...string) ([]byte, error)
}

func NewExtractor(cfg *config.Config, transcriber AudioTranscriber, logger *slog.Logger) *Extractor {
	e := &Extractor{cfg: cfg, transcriber: transcriber, logger: logger}
	e.runYtDlp = e.execYtDlp
	return e
}

// ytDlpInfo is the subset of `yt-dlp --dump-json` output we consume.
type ytDlpInfo struct {
	Title             string                    `json:"title"`
	Description       string                    `json:"description"`
	Thumbnail         string                    `json:"thumbnail"`
	Duration          float64                   `json:"duration"`
	Extractor         string                    `json:"extractor"`
	Subtitles         map[string][]captionTrack `json:"subtitles"`
	AutomaticCaptions map[string][]captionTrack `json:"automatic_captions"`
}

type captionTrack struct {
	URL string `json:"url"`
	Ext string `json:"ext"`
}

// Extract fetches metadata and a transcript for the given video URL.
// YouTube videos try the caption path first and fall back to audio
// transcription; other platforms go straight to audio transcription.
func (e *Extractor) Extract(ctx context.Context, url string) (*model.VideoInfo, error) {
	youtubeID := classify.YouTubeID(url)

	info, err := e.metadata(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch video metadata: %w", err)
	}

	platform := strings.ToLower(info.Extractor)
	if platform == "" {
		platform = "unknown"
	}

	var transcript string
	if youtubeID != "" {
		platform = "youtube"
		transcript, err = e.Captions(ctx, youtubeID)
		if err != nil {
			e.logger.Info("no captions, falling back to audio transcription",
				"video_id", youtubeID, "reason", err.Error())
			transcript = e.transcribeVideo(ctx, url)
		}
	} else {
		transcript = e.transcribeVideo(ctx, url)
	}

	return &model.VideoInfo{
		Title:       info.Title,
		Description: info.Description,
		Thumbnail:   info.Thumbnail,
		Duration:    info.Duration,
		Platform:    platform,
		Transcript:  transcript,
	}, nil
}

// metadata runs yt-dlp in dump-json mode without downloading anything.
func (e *Extractor) metadata(ctx context.Context, url string) (*ytDlpInfo, error) {
	out, err := e.runYtDlp(ctx,
		"--dump-json",
		"--no-download",
		"--no-playlist",
		"--no-warnings",
		url,
	)
	if err != nil {
		return nil, err
	}

	var info ytDlpInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	return &info, nil
}

func (e *Extractor) execYtDlp(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, e.cfg.Video.YtDlpPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("yt-dlp: %s", msg)
	}

	return stdout.Bytes(), nil
}
