package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// audioFormat asks for an audio-only stream without container
// re-encoding, so no ffmpeg post-processing is needed.
const audioFormat = "bestaudio[ext=m4a]/bestaudio[ext=mp3]/bestaudio[ext=webm]/bestaudio/best"

// audioExts are probed when yt-dlp does not report the final path.
var audioExts = []string{".m4a", ".mp3", ".webm", ".mp4", ".opus", ".ogg", ".wav"}

// transcribeVideo downloads the audio track and hands it to the
// transcriber. Every failure mode degrades to an empty transcript; the
// reason is logged here and never propagated, so the orchestrator only
// observes absence.
func (e *Extractor) transcribeVideo(ctx context.Context, url string) string {
	audioPath, err := e.downloadAudio(ctx, url)
	if err != nil {
		e.logger.Warn("audio download failed", "url", url, "error", err)
		return ""
	}
	defer os.Remove(audioPath)

	transcript, err := e.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		e.logger.Warn("audio transcription failed", "url", url, "error", err)
		return ""
	}

	return transcript
}

// downloadAudio fetches the best audio-only stream to a request-scoped
// temp path. The uuid stem keeps concurrent extractions from clobbering
// each other's files.
func (e *Extractor) downloadAudio(ctx context.Context, url string) (string, error) {
	stem := filepath.Join(e.cfg.Video.TempDir, "ladle-audio-"+uuid.NewString())

	out, err := e.runYtDlp(ctx,
		"-f", audioFormat,
		"-o", stem+".%(ext)s",
		"--no-playlist",
		"--no-warnings",
		"--no-simulate",
		"--print", "after_move:filepath",
		url,
	)
	if err != nil {
		return "", err
	}

	// yt-dlp prints the final path once the download lands.
	if path := lastLine(string(out)); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	// Fall back to probing common audio extensions at the stem.
	for _, ext := range audioExts {
		candidate := stem + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no audio file found at %s", stem)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
