package model

// SourceType tags where a recipe was extracted from.
type SourceType string

const (
	SourceWebsite SourceType = "website"
	SourceVideo   SourceType = "video"
)

// Recipe is the canonical extraction output returned to callers.
// Ingredient and instruction order is preparation order and is never
// reordered or deduplicated. Time and serving fields are kept as the
// source formatted them; a populated Error signals a failed or partial
// extraction, in which case the list fields are empty but SourceURL and
// SourceType are still set.
type Recipe struct {
	Title        string     `json:"title"`
	Ingredients  []string   `json:"ingredients"`
	Instructions []string   `json:"instructions"`
	PrepTime     string     `json:"prep_time,omitempty"`
	CookTime     string     `json:"cook_time,omitempty"`
	TotalTime    string     `json:"total_time,omitempty"`
	Servings     string     `json:"servings,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	SourceURL    string     `json:"source_url"`
	SourceType   SourceType `json:"source_type"`
	Platform     string     `json:"platform,omitempty"`
	Tips         []string   `json:"tips,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// FailureRecipe builds the uniform error-shaped response: empty lists,
// the original URL and source type, and the failure reason.
func FailureRecipe(sourceURL string, sourceType SourceType, reason string) *Recipe {
	return &Recipe{
		Ingredients:  []string{},
		Instructions: []string{},
		SourceURL:    sourceURL,
		SourceType:   sourceType,
		Error:        reason,
	}
}

// VideoInfo is the intermediate product of the video chain. It lives
// only for the duration of one pipeline invocation and is folded into
// the normalizer input.
type VideoInfo struct {
	Title       string
	Description string
	Thumbnail   string
	Duration    float64
	Platform    string
	Transcript  string
}

// WebsiteExtraction is the raw product of the website chain before the
// orchestrator applies the weakness check and enhancement pass.
type WebsiteExtraction struct {
	Title        string
	Ingredients  []string
	Instructions []string
	PrepTime     string
	CookTime     string
	TotalTime    string
	Servings     string
	ImageURL     string
}

// ToRecipe converts a website extraction into the canonical envelope.
func (w *WebsiteExtraction) ToRecipe(sourceURL string) *Recipe {
	title := w.Title
	if title == "" {
		title = "Unknown Recipe"
	}
	ingredients := w.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	instructions := w.Instructions
	if instructions == nil {
		instructions = []string{}
	}
	return &Recipe{
		Title:        title,
		Ingredients:  ingredients,
		Instructions: instructions,
		PrepTime:     w.PrepTime,
		CookTime:     w.CookTime,
		TotalTime:    w.TotalTime,
		Servings:     w.Servings,
		ImageURL:     w.ImageURL,
		SourceURL:    sourceURL,
		SourceType:   SourceWebsite,
	}
}
