package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"ladle/internal/config"
	"ladle/internal/model"
)

type fakeWebsite struct {
	html string
	err  error
}

func (f *fakeWebsite) FetchHTML(_ context.Context, _ string) (string, error) {
	return f.html, f.err
}

type fakeVideo struct {
	info *model.VideoInfo
	err  error
}

func (f *fakeVideo) Extract(_ context.Context, _ string) (*model.VideoInfo, error) {
	return f.info, f.err
}

type fakeNormalizer struct {
	rec          *model.Recipe
	parseErr     error
	parseCalls   int
	lastText     string
	enhanceCalls int
	enhanced     *model.WebsiteExtraction
}

func (f *fakeNormalizer) Parse(_ context.Context, text, _, _ string) (*model.Recipe, error) {
	f.parseCalls++
	f.lastText = text
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return f.rec, nil
}

func (f *fakeNormalizer) Enhance(_ context.Context, ext *model.WebsiteExtraction) *model.WebsiteExtraction {
	f.enhanceCalls++
	if f.enhanced != nil {
		return f.enhanced
	}
	return ext
}

func serviceConfig() *config.Config {
	cfg := &config.Config{}
	cfg.AI.WeakMinIngredients = 3
	cfg.AI.WeakMinInstructions = 2
	return cfg
}

func newTestService(web *fakeWebsite, video *fakeVideo, norm *fakeNormalizer) *ExtractService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewExtractService(serviceConfig(), web, video, norm, logger)
}

const jsonldPage = `<html><head><script type="application/ld+json">{
	"@type": "Recipe",
	"name": "Braised Greens",
	"recipeIngredient": ["1 bunch collard greens", "2 cloves garlic", "1 tbsp olive oil"],
	"recipeInstructions": ["Wash the greens.", "Saute the garlic.", "Braise until tender."]
}</script></head><body></body></html>`

func TestExtractWebsiteJSONLDFallback(t *testing.T) {
	// No microdata on the page, so the chain must fall through to JSON-LD.
	norm := &fakeNormalizer{}
	svc := newTestService(&fakeWebsite{html: jsonldPage}, &fakeVideo{}, norm)

	rec, err := svc.Extract(context.Background(), "https://example.com/greens")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rec.Title != "Braised Greens" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.SourceType != model.SourceWebsite {
		t.Errorf("source type = %q", rec.SourceType)
	}
	if rec.SourceURL != "https://example.com/greens" {
		t.Errorf("source url = %q", rec.SourceURL)
	}
	// Ordering must survive the whole pipeline.
	if rec.Instructions[0] != "Wash the greens." || rec.Instructions[2] != "Braise until tender." {
		t.Errorf("instructions out of order: %v", rec.Instructions)
	}
	// 3 ingredients and 3 instructions is not weak, no enhancement.
	if norm.enhanceCalls != 0 {
		t.Errorf("enhance ran %d times, want 0", norm.enhanceCalls)
	}
}

func TestExtractWebsiteMicrodataWins(t *testing.T) {
	// Both markup kinds present; microdata runs first and must win.
	page := `<html><body>
	<div itemscope itemtype="https://schema.org/Recipe">
	  <span itemprop="name">Microdata Recipe</span>
	  <span itemprop="recipeIngredient">1 cup lentils</span>
	  <span itemprop="recipeIngredient">4 cups stock</span>
	  <span itemprop="recipeIngredient">1 onion</span>
	  <div itemprop="recipeInstructions">Simmer everything.</div>
	  <div itemprop="recipeInstructions">Season and serve.</div>
	</div>
	<script type="application/ld+json">{"@type": "Recipe", "name": "JSONLD Recipe",
	 "recipeIngredient": ["x"], "recipeInstructions": ["y"]}</script>
	</body></html>`

	svc := newTestService(&fakeWebsite{html: page}, &fakeVideo{}, &fakeNormalizer{})
	rec, err := svc.Extract(context.Background(), "https://example.com/lentils")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rec.Title != "Microdata Recipe" {
		t.Errorf("title = %q, want the microdata recipe", rec.Title)
	}
}

func TestExtractWebsiteWeakTriggersEnhance(t *testing.T) {
	page := `<html><head><script type="application/ld+json">{"@type": "Recipe",
	 "name": "Thin Recipe", "recipeIngredient": ["something"],
	 "recipeInstructions": ["do it"]}</script></head></html>`

	norm := &fakeNormalizer{enhanced: &model.WebsiteExtraction{
		Title:        "Thin Recipe",
		Ingredients:  []string{"1 cup something", "2 tbsp butter", "salt"},
		Instructions: []string{"Prep.", "Cook."},
	}}
	svc := newTestService(&fakeWebsite{html: page}, &fakeVideo{}, norm)

	rec, err := svc.Extract(context.Background(), "https://example.com/thin")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if norm.enhanceCalls != 1 {
		t.Fatalf("enhance ran %d times, want 1", norm.enhanceCalls)
	}
	if len(rec.Ingredients) != 3 {
		t.Errorf("ingredients = %v, want the enhanced list", rec.Ingredients)
	}
}

func TestExtractWebsiteNoRecipe(t *testing.T) {
	svc := newTestService(&fakeWebsite{html: "<html><body><p>blog post</p></body></html>"}, &fakeVideo{}, &fakeNormalizer{})

	rec, err := svc.Extract(context.Background(), "https://example.com/post")
	if err == nil {
		t.Fatal("expected error for page without a recipe")
	}
	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %T, want *PipelineError", err)
	}
	if perr.Kind != FailInput {
		t.Errorf("kind = %v, want FailInput", perr.Kind)
	}
	if !strings.Contains(rec.Error, "Could not extract recipe from this website") {
		t.Errorf("envelope error = %q", rec.Error)
	}
	if rec.Ingredients == nil || rec.Instructions == nil {
		t.Error("failure envelope must carry empty lists, not nil")
	}
	if rec.SourceURL != "https://example.com/post" || rec.SourceType != model.SourceWebsite {
		t.Errorf("envelope source fields: %q %q", rec.SourceURL, rec.SourceType)
	}
}

func TestExtractWebsiteFetchFailure(t *testing.T) {
	svc := newTestService(&fakeWebsite{err: errors.New("connection timed out")}, &fakeVideo{}, &fakeNormalizer{})

	rec, err := svc.Extract(context.Background(), "https://example.com/slow")
	if err == nil {
		t.Fatal("expected error when fetch fails")
	}
	if rec.Error == "" {
		t.Error("failure envelope missing error reason")
	}
}

func TestExtractVideoSuccess(t *testing.T) {
	norm := &fakeNormalizer{rec: &model.Recipe{
		Title:        "Pad Thai",
		Ingredients:  []string{"noodles", "tamarind", "peanuts"},
		Instructions: []string{"Soak.", "Stir fry."},
		SourceType:   model.SourceVideo,
		Platform:     "youtube",
	}}
	video := &fakeVideo{info: &model.VideoInfo{
		Title:       "Pad Thai at Home",
		Description: "Full recipe below",
		Thumbnail:   "https://img.example.com/padthai.jpg",
		Platform:    "youtube",
		Transcript:  "first soak the noodles",
	}}
	svc := newTestService(&fakeWebsite{}, video, norm)

	rec, err := svc.Extract(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rec.SourceURL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("source url = %q", rec.SourceURL)
	}
	if rec.ImageURL != "https://img.example.com/padthai.jpg" {
		t.Errorf("image = %q", rec.ImageURL)
	}
	// Transcript and description are both fed to the normalizer.
	if !strings.Contains(norm.lastText, "first soak the noodles") ||
		!strings.Contains(norm.lastText, "Full recipe below") {
		t.Errorf("normalizer input missing transcript or description: %q", norm.lastText)
	}
}

func TestExtractVideoTitleFallback(t *testing.T) {
	norm := &fakeNormalizer{rec: &model.Recipe{
		Ingredients:  []string{"x"},
		Instructions: []string{"y"},
		SourceType:   model.SourceVideo,
	}}
	video := &fakeVideo{info: &model.VideoInfo{Title: "Original Video Title", Transcript: "words"}}
	svc := newTestService(&fakeWebsite{}, video, norm)

	rec, err := svc.Extract(context.Background(), "https://vimeo.com/123456789")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rec.Title != "Original Video Title" {
		t.Errorf("title = %q, want the video title fallback", rec.Title)
	}
}

func TestExtractVideoMetadataFailure(t *testing.T) {
	svc := newTestService(&fakeWebsite{}, &fakeVideo{err: errors.New("yt-dlp: unavailable")}, &fakeNormalizer{})

	rec, err := svc.Extract(context.Background(), "https://www.tiktok.com/@cook/video/1")
	if err == nil {
		t.Fatal("expected error when video metadata fails")
	}
	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != FailInput {
		t.Fatalf("err = %v, want FailInput pipeline error", err)
	}
	if rec.Error != "Could not extract video information" {
		t.Errorf("envelope error = %q", rec.Error)
	}
	if rec.SourceType != model.SourceVideo {
		t.Errorf("source type = %q", rec.SourceType)
	}
}

func TestExtractVideoAIFailure(t *testing.T) {
	norm := &fakeNormalizer{parseErr: errors.New("No recipe found")}
	video := &fakeVideo{info: &model.VideoInfo{Title: "Vlog", Transcript: "just chatting"}}
	svc := newTestService(&fakeWebsite{}, video, norm)

	rec, err := svc.Extract(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err == nil {
		t.Fatal("expected error for AI failure")
	}
	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != FailAI {
		t.Fatalf("err = %v, want FailAI pipeline error", err)
	}
	if rec.Error != "No recipe found" {
		t.Errorf("envelope error = %q", rec.Error)
	}
}
