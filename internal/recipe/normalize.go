// Package recipe turns free-form text (video transcripts, weak website
// extractions) into the canonical recipe shape via an LLM.
package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ladle/internal/config"
	"ladle/internal/llm"
	"ladle/internal/metrics"
	"ladle/internal/model"
)

var (
	// ErrNotConfigured is returned when no AI credential is present.
	ErrNotConfigured = errors.New("AI backend not configured: set OPENAI_API_KEY in the environment or .env file")

	// ErrInsufficientContent is returned for input below the minimum
	// length; no external call is made in that case.
	ErrInsufficientContent = errors.New("not enough text content to extract a recipe")

	// ErrMalformedResponse is returned when the model output is not
	// parseable JSON.
	ErrMalformedResponse = errors.New("failed to parse AI response")
)

// ServiceError wraps a transport or backend failure from the AI call.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return "AI processing failed: " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error { return e.Err }

const (
	// minTextChars is the floor below which text cannot plausibly hold
	// a recipe.
	minTextChars = 50

	// maxInputChars bounds request size and cost.
	maxInputChars = 8000

	// maxResponseTokens bounds the completion.
	maxResponseTokens = 2000

	temperature = 0.3
)

const systemPrompt = "You are a helpful assistant that extracts recipe information from text. Always respond with valid JSON."

const extractionPrompt = `You are a recipe extraction expert. Analyze the following text (which may be a video transcript, description, or webpage content) and extract the recipe information.

Return a JSON object with the following structure:
{
    "title": "Recipe name",
    "ingredients": ["ingredient 1 with quantity", "ingredient 2 with quantity", ...],
    "instructions": ["step 1", "step 2", ...],
    "prep_time": "prep time if mentioned, or null",
    "cook_time": "cook time if mentioned, or null",
    "servings": "servings if mentioned, or null",
    "tips": ["any tips or notes mentioned"]
}

Important rules:
1. Include EXACT quantities for all ingredients (e.g., "2 cups flour", "1 tbsp olive oil")
2. If quantities are unclear, estimate based on context or note "to taste"
3. Instructions should be clear, numbered steps
4. Preserve the original cooking techniques and methods
5. If the text doesn't contain a recipe, return {"error": "No recipe found"}

Text to analyze:
`

// fields is the JSON shape the model is instructed to return.
type fields struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	PrepTime     string   `json:"prep_time"`
	CookTime     string   `json:"cook_time"`
	Servings     string   `json:"servings"`
	Tips         []string `json:"tips"`
	Error        string   `json:"error"`
}

// Normalizer drives the AI parsing and enhancement passes. A nil
// client means no credential was configured.
type Normalizer struct {
	cfg    *config.Config
	client llm.Client
}

func NewNormalizer(cfg *config.Config, client llm.Client) *Normalizer {
	return &Normalizer{cfg: cfg, client: client}
}

// Parse sends free text through the LLM and returns a recipe tagged as
// a video extraction for the supplied platform. The caller fills in
// SourceURL and ImageURL afterwards.
func (n *Normalizer) Parse(ctx context.Context, text, title, platform string) (*model.Recipe, error) {
	return n.parse(ctx, text, title, platform, "normalize")
}

func (n *Normalizer) parse(ctx context.Context, text, title, platform, purpose string) (*model.Recipe, error) {
	if n.client == nil {
		return nil, ErrNotConfigured
	}
	if len(strings.TrimSpace(text)) < minTextChars {
		return nil, ErrInsufficientContent
	}

	// The cap counts characters, not bytes, so a multi-byte rune at the
	// boundary is never split.
	if runes := []rune(text); len(runes) > maxInputChars {
		text = string(runes[:maxInputChars])
	}
	fullText := fmt.Sprintf("Title: %s\n\nContent:\n%s", title, text)

	content, err := n.client.CompleteJSON(ctx, llm.CompletionRequest{
		System:      systemPrompt,
		User:        extractionPrompt + fullText,
		Temperature: temperature,
		MaxTokens:   maxResponseTokens,
	})
	metrics.RecordAICall(purpose, err == nil)
	if err != nil {
		return nil, &ServiceError{Err: err}
	}

	var parsed fields
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, ErrMalformedResponse
	}

	// The model reports its own failure inline; pass it through verbatim.
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}

	ingredients := parsed.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	instructions := parsed.Instructions
	if instructions == nil {
		instructions = []string{}
	}

	return &model.Recipe{
		Title:        parsed.Title,
		Ingredients:  ingredients,
		Instructions: instructions,
		PrepTime:     parsed.PrepTime,
		CookTime:     parsed.CookTime,
		Servings:     parsed.Servings,
		Tips:         parsed.Tips,
		SourceType:   model.SourceVideo,
		Platform:     platform,
	}, nil
}

// IsWeak reports whether a website extraction is thin enough to warrant
// the AI enhancement pass. The thresholds are a product decision and
// come from config.
func IsWeak(ext *model.WebsiteExtraction, minIngredients, minInstructions int) bool {
	return len(ext.Ingredients) < minIngredients || len(ext.Instructions) < minInstructions
}

// Enhance re-runs a weak website extraction through the LLM, feeding it
// the extraction's own fields rather than re-fetched HTML. On success
// only the ingredient and instruction lists are overwritten; on any
// failure the original extraction is returned unchanged.
func (n *Normalizer) Enhance(ctx context.Context, ext *model.WebsiteExtraction) *model.WebsiteExtraction {
	if n.client == nil {
		return ext
	}

	ingredientsJSON, _ := json.Marshal(ext.Ingredients)
	instructionsJSON, _ := json.Marshal(ext.Instructions)
	text := fmt.Sprintf("Recipe Title: %s\nIngredients: %s\nInstructions: %s",
		ext.Title, ingredientsJSON, instructionsJSON)

	enhanced, err := n.parse(ctx, text, ext.Title, "website", "enhance")
	if err != nil {
		return ext
	}

	out := *ext
	if len(enhanced.Ingredients) > 0 {
		out.Ingredients = enhanced.Ingredients
	}
	if len(enhanced.Instructions) > 0 {
		out.Instructions = enhanced.Instructions
	}
	return &out
}
