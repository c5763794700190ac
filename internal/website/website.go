// Package website implements the website extraction chain: fetch the
// page, try schema.org microdata, and fall back to JSON-LD blocks. The
// orchestrator sequences the stages; this package provides them.
package website

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ladle/internal/config"
	"ladle/internal/model"
)

// ErrNoRecipe means the page was fetched fine but no structured recipe
// could be located in it.
var ErrNoRecipe = errors.New("no recipe found on page")

// ErrRobotsDisallowed means robots.txt forbids fetching the page for
// our user agent.
var ErrRobotsDisallowed = errors.New("fetch disallowed by robots.txt")

// Extractor owns the network side of the website chain.
type Extractor struct {
	cfg     *config.Config
	fetcher Fetcher
}

func NewExtractor(cfg *config.Config) *Extractor {
	timeout := time.Duration(cfg.Extractor.FetchTimeoutMs) * time.Millisecond

	var fetcher Fetcher
	if cfg.Rod.Enabled {
		fetcher = NewRodFetcher("", timeout)
	} else {
		fetcher = NewHTTPFetcher(timeout, cfg.Extractor.UserAgent)
	}

	return &Extractor{cfg: cfg, fetcher: fetcher}
}

// NewExtractorWithFetcher is used by tests to swap the network layer.
func NewExtractorWithFetcher(cfg *config.Config, fetcher Fetcher) *Extractor {
	return &Extractor{cfg: cfg, fetcher: fetcher}
}

// FetchHTML retrieves the page body, honoring the robots gate when
// enabled. A failure here is terminal for the chain; there is nothing
// to fall back to without HTML.
func (e *Extractor) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	if e.cfg.Robots.Respect && !robotsAllowed(ctx, pageURL, e.cfg.Extractor.UserAgent) {
		return "", ErrRobotsDisallowed
	}

	html, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	return html, nil
}

// ParseDocument parses fetched HTML for the markup stages.
func ParseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// ScrapeMicrodata extracts a recipe marked up with schema.org microdata
// (itemscope/itemprop attributes). An error triggers the JSON-LD
// fallback rather than failing the chain.
func ScrapeMicrodata(doc *goquery.Document) (*model.WebsiteExtraction, error) {
	scope := doc.Find(`[itemtype*="schema.org/Recipe"]`).First()
	if scope.Length() == 0 {
		return nil, errors.New("no recipe microdata scope")
	}

	ext := &model.WebsiteExtraction{
		Title: strings.TrimSpace(scope.Find(`[itemprop="name"]`).First().Text()),
	}

	ingredientSel := scope.Find(`[itemprop="recipeIngredient"]`)
	if ingredientSel.Length() == 0 {
		// Pre-2013 schema.org vocabulary.
		ingredientSel = scope.Find(`[itemprop="ingredients"]`)
	}
	ingredientSel.Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			ext.Ingredients = append(ext.Ingredients, text)
		}
	})

	scope.Find(`[itemprop="recipeInstructions"]`).Each(func(_ int, sel *goquery.Selection) {
		items := sel.Find("li")
		if items.Length() > 0 {
			items.Each(func(_ int, li *goquery.Selection) {
				if text := strings.TrimSpace(li.Text()); text != "" {
					ext.Instructions = append(ext.Instructions, text)
				}
			})
			return
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			ext.Instructions = append(ext.Instructions, text)
		}
	})

	ext.PrepTime = microdataValue(scope, "prepTime")
	ext.CookTime = microdataValue(scope, "cookTime")
	ext.TotalTime = microdataValue(scope, "totalTime")
	ext.Servings = microdataValue(scope, "recipeYield")
	ext.ImageURL = microdataImage(scope)

	if len(ext.Ingredients) == 0 && len(ext.Instructions) == 0 {
		return nil, errors.New("recipe microdata carries no ingredients or instructions")
	}

	return ext, nil
}

// microdataValue reads an itemprop value, preferring machine-readable
// attributes over the rendered text.
func microdataValue(scope *goquery.Selection, prop string) string {
	sel := scope.Find(fmt.Sprintf(`[itemprop=%q]`, prop)).First()
	if sel.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"content", "datetime"} {
		if v, ok := sel.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return strings.TrimSpace(sel.Text())
}

func microdataImage(scope *goquery.Selection) string {
	sel := scope.Find(`[itemprop="image"]`).First()
	if sel.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"src", "content", "href"} {
		if v, ok := sel.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
