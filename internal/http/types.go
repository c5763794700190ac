package http

import "time"

// ExtractRequest is the input for the extraction endpoint. The URL is
// the only caller-supplied field; everything else is inferred.
type ExtractRequest struct {
	URL string `json:"url"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type SaveRecipeRequest struct {
	Title        string   `json:"title"`
	SourceURL    string   `json:"source_url"`
	ImageURL     string   `json:"image_url,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	PrepTime     string   `json:"prep_time,omitempty"`
	CookTime     string   `json:"cook_time,omitempty"`
	Servings     string   `json:"servings,omitempty"`
}

type SavedRecipeResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	SourceURL    string    `json:"source_url"`
	ImageURL     string    `json:"image_url,omitempty"`
	Ingredients  []string  `json:"ingredients"`
	Instructions []string  `json:"instructions"`
	PrepTime     string    `json:"prep_time,omitempty"`
	CookTime     string    `json:"cook_time,omitempty"`
	Servings     string    `json:"servings,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ErrorResponse is the envelope for request-level failures (bad JSON,
// auth, rate limiting). Extraction failures use the Recipe envelope
// instead so clients always get the same shape back from /api/extract.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error"`
}
