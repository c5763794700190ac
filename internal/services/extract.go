// Package services contains the pipeline orchestrator: it classifies
// the URL, runs the matching extraction chain, and applies the AI
// normalization or enhancement pass.
package services

import (
	"context"
	"log/slog"

	"ladle/internal/classify"
	"ladle/internal/config"
	"ladle/internal/metrics"
	"ladle/internal/model"
	"ladle/internal/recipe"
	"ladle/internal/website"
)

// WebsiteFetcher is the network half of the website chain.
type WebsiteFetcher interface {
	FetchHTML(ctx context.Context, pageURL string) (string, error)
}

// VideoExtractor resolves metadata and a best-effort transcript.
type VideoExtractor interface {
	Extract(ctx context.Context, url string) (*model.VideoInfo, error)
}

// Normalizer is the AI pass over free text and weak extractions.
type Normalizer interface {
	Parse(ctx context.Context, text, title, platform string) (*model.Recipe, error)
	Enhance(ctx context.Context, ext *model.WebsiteExtraction) *model.WebsiteExtraction
}

// FailKind classifies a terminal pipeline failure so the HTTP layer can
// pick a transport status. The response body is the uniform Recipe
// envelope either way.
type FailKind int

const (
	// FailInput covers failures rooted in the URL's content: the page
	// had no recipe, the video metadata could not be resolved.
	FailInput FailKind = iota
	// FailAI covers AI-stage failures after a healthy extraction chain.
	FailAI
)

// PipelineError is the terminal failure for one extraction request.
type PipelineError struct {
	Kind   FailKind
	Reason string
}

func (e *PipelineError) Error() string { return e.Reason }

// ExtractService runs the whole pipeline for one URL. It holds no
// per-request state, so a single instance serves concurrent requests.
type ExtractService struct {
	cfg        *config.Config
	website    WebsiteFetcher
	video      VideoExtractor
	normalizer Normalizer
	logger     *slog.Logger
}

func NewExtractService(cfg *config.Config, web WebsiteFetcher, video VideoExtractor, normalizer Normalizer, logger *slog.Logger) *ExtractService {
	return &ExtractService{
		cfg:        cfg,
		website:    web,
		video:      video,
		normalizer: normalizer,
		logger:     logger,
	}
}

// Extract runs the pipeline. On a terminal failure the returned Recipe
// is the uniform failure envelope (empty lists, error populated) and
// the error is a *PipelineError carrying the same reason.
func (s *ExtractService) Extract(ctx context.Context, url string) (*model.Recipe, error) {
	if classify.IsVideoURL(url) {
		return s.extractVideo(ctx, url)
	}
	return s.extractWebsite(ctx, url)
}

// outcome is the tagged result of one extraction strategy. Chains stop
// at the first success or fatal outcome and fall through on a
// recoverable one.
type outcome struct {
	ext    *model.WebsiteExtraction
	reason string
	fatal  bool
}

func success(ext *model.WebsiteExtraction) outcome { return outcome{ext: ext} }
func recoverable(reason string) outcome            { return outcome{reason: reason} }
func fatal(reason string) outcome                  { return outcome{reason: reason, fatal: true} }

// strategy is one named stage of an extraction chain.
type strategy struct {
	name string
	run  func(ctx context.Context) outcome
}

// runChain executes strategies in order. Recoverable outcomes fall
// through to the next strategy; an exhausted chain is fatal with the
// last recoverable reason.
func (s *ExtractService) runChain(ctx context.Context, chain []strategy) outcome {
	last := "no extraction strategy available"
	for _, strat := range chain {
		out := strat.run(ctx)
		if out.ext != nil || out.fatal {
			return out
		}
		s.logger.Debug("extraction strategy fell through",
			"strategy", strat.name, "reason", out.reason)
		last = out.reason
	}
	return fatal(last)
}

func (s *ExtractService) extractWebsite(ctx context.Context, url string) (*model.Recipe, error) {
	html, err := s.website.FetchHTML(ctx, url)
	if err != nil {
		metrics.RecordExtraction("website", "failure")
		return s.fail(url, model.SourceWebsite, FailInput, err.Error())
	}

	doc, err := website.ParseDocument(html)
	if err != nil {
		metrics.RecordExtraction("website", "failure")
		return s.fail(url, model.SourceWebsite, FailInput, err.Error())
	}

	out := s.runChain(ctx, []strategy{
		{name: "microdata", run: func(context.Context) outcome {
			ext, err := website.ScrapeMicrodata(doc)
			if err != nil {
				return recoverable(err.Error())
			}
			return success(ext)
		}},
		{name: "json-ld", run: func(context.Context) outcome {
			ext, err := website.ExtractJSONLD(doc)
			if err != nil {
				return recoverable(err.Error())
			}
			return success(ext)
		}},
	})
	if out.ext == nil {
		metrics.RecordExtraction("website", "failure")
		return s.fail(url, model.SourceWebsite, FailInput,
			"Could not extract recipe from this website. The page may not contain a valid recipe.")
	}

	ext := out.ext
	if recipe.IsWeak(ext, s.cfg.AI.WeakMinIngredients, s.cfg.AI.WeakMinInstructions) {
		ext = s.normalizer.Enhance(ctx, ext)
	}

	metrics.RecordExtraction("website", "success")
	return ext.ToRecipe(url), nil
}

func (s *ExtractService) extractVideo(ctx context.Context, url string) (*model.Recipe, error) {
	info, err := s.video.Extract(ctx, url)
	if err != nil {
		s.logger.Warn("video extraction failed", "url", url, "error", err)
		metrics.RecordExtraction("video", "failure")
		return s.fail(url, model.SourceVideo, FailInput, "Could not extract video information")
	}

	// Transcript and description together give the normalizer the most
	// context. Absence of both surfaces as its insufficient-content error.
	text := info.Transcript
	if info.Description != "" {
		if text != "" {
			text += "\n\n"
		}
		text += info.Description
	}

	rec, err := s.normalizer.Parse(ctx, text, info.Title, info.Platform)
	if err != nil {
		metrics.RecordExtraction("video", "ai_failure")
		return s.fail(url, model.SourceVideo, FailAI, err.Error())
	}

	rec.SourceURL = url
	rec.ImageURL = info.Thumbnail
	if rec.Title == "" {
		rec.Title = info.Title
	}
	if rec.Title == "" {
		rec.Title = "Video Recipe"
	}

	metrics.RecordExtraction("video", "success")
	return rec, nil
}

func (s *ExtractService) fail(url string, sourceType model.SourceType, kind FailKind, reason string) (*model.Recipe, error) {
	return model.FailureRecipe(url, sourceType, reason), &PipelineError{Kind: kind, Reason: reason}
}
