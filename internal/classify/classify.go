// Package classify decides which extraction chain a URL belongs to.
// Both checks are pure string matching with no I/O.
package classify

import "regexp"

// videoPatterns covers the hosting platforms the video chain supports.
// Anything that does not match is treated as a regular website.
var videoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)youtube\.com`),
	regexp.MustCompile(`(?i)youtu\.be`),
	regexp.MustCompile(`(?i)tiktok\.com`),
	regexp.MustCompile(`(?i)instagram\.com/reel`),
	regexp.MustCompile(`(?i)instagram\.com/p/`),
	regexp.MustCompile(`(?i)vimeo\.com`),
}

// youtubeIDPatterns match the watch, short-link, embed, and shorts URL
// forms. YouTube video IDs are exactly 11 characters.
var youtubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
}

// IsVideoURL reports whether the URL points at a known video platform.
func IsVideoURL(url string) bool {
	for _, p := range videoPatterns {
		if p.MatchString(url) {
			return true
		}
	}
	return false
}

// YouTubeID extracts the 11-character video ID from a YouTube URL, or
// returns "" when the URL is not a recognized YouTube video form.
func YouTubeID(url string) string {
	for _, p := range youtubeIDPatterns {
		if m := p.FindStringSubmatch(url); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}
