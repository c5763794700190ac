package website

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ladle/internal/model"
)

// ExtractJSONLD walks every <script type="application/ld+json"> block
// looking for a schema.org Recipe object. Blocks that fail to parse or
// hold no recipe are skipped; only when all blocks are exhausted does
// the chain report ErrNoRecipe.
func ExtractJSONLD(doc *goquery.Document) (*model.WebsiteExtraction, error) {
	var found *model.WebsiteExtraction

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return true
		}

		recipe := findRecipeObject(data)
		if recipe == nil {
			return true
		}

		found = recipeFromJSONLD(recipe)
		return false
	})

	if found == nil {
		return nil, ErrNoRecipe
	}
	return found, nil
}

// findRecipeObject resolves @graph wrappers and top-level arrays down
// to the first object whose @type is Recipe.
func findRecipeObject(data any) map[string]any {
	if obj, ok := data.(map[string]any); ok {
		if graph, ok := obj["@graph"]; ok {
			data = graph
		}
	}

	if list, ok := data.([]any); ok {
		for _, item := range list {
			if obj, ok := item.(map[string]any); ok && isRecipeType(obj["@type"]) {
				return obj
			}
		}
		return nil
	}

	if obj, ok := data.(map[string]any); ok && isRecipeType(obj["@type"]) {
		return obj
	}
	return nil
}

// isRecipeType accepts both "Recipe" and multi-type arrays that include it.
func isRecipeType(t any) bool {
	switch v := t.(type) {
	case string:
		return strings.EqualFold(v, "recipe")
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.EqualFold(s, "recipe") {
				return true
			}
		}
	}
	return false
}

func recipeFromJSONLD(data map[string]any) *model.WebsiteExtraction {
	return &model.WebsiteExtraction{
		Title:        stringValue(data["name"]),
		Ingredients:  stringList(data["recipeIngredient"]),
		Instructions: instructionList(data["recipeInstructions"]),
		PrepTime:     stringValue(data["prepTime"]),
		CookTime:     stringValue(data["cookTime"]),
		TotalTime:    stringValue(data["totalTime"]),
		Servings:     stringValue(data["recipeYield"]),
		ImageURL:     imageValue(data["image"]),
	}
}

// instructionList normalizes the three recipeInstructions shapes — a
// bare string, a list of strings, and a list of HowTo objects — into a
// flat ordered sequence. HowToSection wrappers are flattened through
// their itemListElement.
func instructionList(value any) []string {
	var out []string

	var walk func(v any)
	walk = func(v any) {
		switch inst := v.(type) {
		case string:
			if text := strings.TrimSpace(inst); text != "" {
				out = append(out, text)
			}
		case []any:
			for _, item := range inst {
				walk(item)
			}
		case map[string]any:
			if elements, ok := inst["itemListElement"]; ok {
				walk(elements)
				return
			}
			text := stringValue(inst["text"])
			if text == "" {
				text = stringValue(inst["name"])
			}
			if text = strings.TrimSpace(text); text != "" {
				out = append(out, text)
			}
		}
	}
	walk(value)

	return out
}

func stringList(value any) []string {
	list, ok := value.([]any)
	if !ok {
		if s := stringValue(value); s != "" {
			return []string{s}
		}
		return nil
	}

	out := make([]string, 0, len(list))
	for _, item := range list {
		if s := stringValue(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// stringValue coerces the loosely-typed values JSON-LD publishers emit
// (strings, numbers, single-element arrays) into a plain string.
func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		if len(v) > 0 {
			return stringValue(v[0])
		}
	}
	return ""
}

// imageValue handles the image field's string, list, and ImageObject forms.
func imageValue(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		if len(v) > 0 {
			return imageValue(v[0])
		}
	case map[string]any:
		return stringValue(v["url"])
	}
	return ""
}
