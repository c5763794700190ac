package website

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ladle/internal/config"
)

const microdataPage = `<html><body>
<div itemscope itemtype="https://schema.org/Recipe">
  <h1 itemprop="name">Weeknight Chili</h1>
  <img itemprop="image" src="https://img.example.com/chili.jpg">
  <meta itemprop="prepTime" content="PT15M">
  <meta itemprop="cookTime" content="PT45M">
  <span itemprop="recipeYield">4 servings</span>
  <ul>
    <li itemprop="recipeIngredient">1 lb ground beef</li>
    <li itemprop="recipeIngredient">2 cans kidney beans</li>
    <li itemprop="recipeIngredient">1 tbsp chili powder</li>
  </ul>
  <div itemprop="recipeInstructions">
    <ol>
      <li>Brown the beef.</li>
      <li>Add beans and chili powder.</li>
      <li>Simmer 45 minutes.</li>
    </ol>
  </div>
</div>
</body></html>`

func TestScrapeMicrodata(t *testing.T) {
	doc, err := ParseDocument(microdataPage)
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}

	ext, err := ScrapeMicrodata(doc)
	if err != nil {
		t.Fatalf("ScrapeMicrodata failed: %v", err)
	}

	if ext.Title != "Weeknight Chili" {
		t.Errorf("title = %q, want %q", ext.Title, "Weeknight Chili")
	}
	wantIngredients := []string{"1 lb ground beef", "2 cans kidney beans", "1 tbsp chili powder"}
	if len(ext.Ingredients) != len(wantIngredients) {
		t.Fatalf("got %d ingredients, want %d", len(ext.Ingredients), len(wantIngredients))
	}
	for i, want := range wantIngredients {
		if ext.Ingredients[i] != want {
			t.Errorf("ingredient[%d] = %q, want %q", i, ext.Ingredients[i], want)
		}
	}
	wantInstructions := []string{"Brown the beef.", "Add beans and chili powder.", "Simmer 45 minutes."}
	if len(ext.Instructions) != len(wantInstructions) {
		t.Fatalf("got %d instructions, want %d", len(ext.Instructions), len(wantInstructions))
	}
	for i, want := range wantInstructions {
		if ext.Instructions[i] != want {
			t.Errorf("instruction[%d] = %q, want %q", i, ext.Instructions[i], want)
		}
	}
	if ext.PrepTime != "PT15M" {
		t.Errorf("prep time = %q, want PT15M", ext.PrepTime)
	}
	if ext.CookTime != "PT45M" {
		t.Errorf("cook time = %q, want PT45M", ext.CookTime)
	}
	if ext.Servings != "4 servings" {
		t.Errorf("servings = %q, want %q", ext.Servings, "4 servings")
	}
	if ext.ImageURL != "https://img.example.com/chili.jpg" {
		t.Errorf("image = %q", ext.ImageURL)
	}
}

func TestScrapeMicrodataLegacyIngredients(t *testing.T) {
	page := `<div itemscope itemtype="http://schema.org/Recipe">
	  <span itemprop="name">Old Markup</span>
	  <span itemprop="ingredients">2 eggs</span>
	  <div itemprop="recipeInstructions">Beat the eggs.</div>
	</div>`

	doc, err := ParseDocument(page)
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	ext, err := ScrapeMicrodata(doc)
	if err != nil {
		t.Fatalf("ScrapeMicrodata failed: %v", err)
	}
	if len(ext.Ingredients) != 1 || ext.Ingredients[0] != "2 eggs" {
		t.Errorf("ingredients = %v, want [2 eggs]", ext.Ingredients)
	}
	if len(ext.Instructions) != 1 || ext.Instructions[0] != "Beat the eggs." {
		t.Errorf("instructions = %v", ext.Instructions)
	}
}

func TestScrapeMicrodataNoScope(t *testing.T) {
	doc, err := ParseDocument(`<html><body><p>Just a blog post.</p></body></html>`)
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	if _, err := ScrapeMicrodata(doc); err == nil {
		t.Fatal("expected error for page without recipe microdata")
	}
}

func TestScrapeMicrodataEmptyLists(t *testing.T) {
	page := `<div itemscope itemtype="https://schema.org/Recipe">
	  <span itemprop="name">Name Only</span>
	</div>`
	doc, err := ParseDocument(page)
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	if _, err := ScrapeMicrodata(doc); err == nil {
		t.Fatal("expected error when microdata has no ingredients or instructions")
	}
}

func TestFetchHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Extractor.FetchTimeoutMs = 5000
	e := NewExtractorWithFetcher(cfg, NewHTTPFetcher(0, "test-agent"))

	html, err := e.FetchHTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchHTML failed: %v", err)
	}
	if html != "<html><body>hello</body></html>" {
		t.Errorf("unexpected body: %q", html)
	}
}

func TestFetchHTMLNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := &config.Config{}
	e := NewExtractorWithFetcher(cfg, NewHTTPFetcher(0, "test-agent"))

	if _, err := e.FetchHTML(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
