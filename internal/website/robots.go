package website

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	robotstxt "github.com/temoto/robotstxt"
)

// fetchRobots fetches and parses robots.txt for the page's host.
func fetchRobots(ctx context.Context, client *http.Client, base *url.URL, userAgent string) (*robotstxt.RobotsData, error) {
	robotsURL := &url.URL{
		Scheme: base.Scheme,
		Host:   base.Host,
		Path:   "/robots.txt",
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("non-200 robots.txt")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return robotstxt.FromStatusAndBytes(resp.StatusCode, body)
}

// robotsAllowed reports whether userAgent may fetch pageURL. Missing or
// unreadable robots.txt allows the fetch.
func robotsAllowed(ctx context.Context, pageURL, userAgent string) bool {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return true
	}

	client := &http.Client{Timeout: 5 * time.Second}
	data, err := fetchRobots(ctx, client, u, userAgent)
	if err != nil || data == nil {
		return true
	}

	return data.FindGroup(userAgent).Test(u.String())
}
