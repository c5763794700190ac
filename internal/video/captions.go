package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNoCaptions means the video has no usable English caption track.
// It is an expected, recoverable outcome that triggers the audio
// transcription fallback.
var ErrNoCaptions = errors.New("no english caption track")

// captionLangs is the fixed language priority for caption selection.
var captionLangs = []string{"en", "en-US", "en-GB"}

// captionFormat is the timed-text JSON format we know how to flatten.
const captionFormat = "json3"

// Captions locates an English caption track for a YouTube video and
// flattens it to plain text. Human-authored tracks win over
// auto-generated ones within each language.
func (e *Extractor) Captions(ctx context.Context, videoID string) (string, error) {
	watchURL := "https://www.youtube.com/watch?v=" + videoID

	info, err := e.metadata(ctx, watchURL)
	if err != nil {
		return "", fmt.Errorf("caption metadata: %w", err)
	}

	captionURL := selectCaptionURL(info)
	if captionURL == "" {
		return "", ErrNoCaptions
	}

	transcript, err := e.fetchCaptionPayload(ctx, captionURL)
	if err != nil {
		return "", fmt.Errorf("fetch caption payload: %w", err)
	}
	if transcript == "" {
		return "", ErrNoCaptions
	}

	return transcript, nil
}

// selectCaptionURL walks the language priority list, preferring manual
// subtitles over automatic captions, and within a track list the
// machine-readable json3 format.
func selectCaptionURL(info *ytDlpInfo) string {
	for _, lang := range captionLangs {
		if url := trackURL(info.Subtitles[lang]); url != "" {
			return url
		}
		if url := trackURL(info.AutomaticCaptions[lang]); url != "" {
			return url
		}
	}
	return ""
}

func trackURL(tracks []captionTrack) string {
	for _, track := range tracks {
		if track.Ext == captionFormat && track.URL != "" {
			return track.URL
		}
	}
	return ""
}

// json3 payload shape: a list of timed events, each holding text segments.
type captionPayload struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// fetchCaptionPayload downloads the caption track and joins all
// segments, in timeline order, into one space-separated string.
func (e *Extractor) fetchCaptionPayload(ctx context.Context, captionURL string) (string, error) {
	timeout := time.Duration(e.cfg.Video.CaptionTimeoutMs) * time.Millisecond
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, captionURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("caption fetch failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var payload captionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parse caption payload: %w", err)
	}

	var parts []string
	for _, event := range payload.Events {
		for _, seg := range event.Segs {
			text := strings.TrimSpace(seg.UTF8)
			if text != "" && text != "\n" {
				parts = append(parts, text)
			}
		}
	}

	return strings.Join(parts, " "), nil
}
