package http

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ladle/internal/store"
)

func saveRecipeHandler(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(store.User)
	if !ok {
		return authRequired(c)
	}

	var req SaveRecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}
	if req.Title == "" || req.SourceURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Missing required fields 'title' and 'source_url'",
		})
	}

	st := c.Locals("store").(*store.Store)
	rec, err := st.SaveRecipe(c.Context(), user.ID, store.SaveRecipeParams{
		Title:        req.Title,
		SourceURL:    req.SourceURL,
		ImageURL:     req.ImageURL,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Servings:     req.Servings,
	})
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(savedRecipeResponse(rec))
}

func listRecipesHandler(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(store.User)
	if !ok {
		return authRequired(c)
	}

	st := c.Locals("store").(*store.Store)
	recs, err := st.ListRecipes(c.Context(), user.ID)
	if err != nil {
		return internalError(c, err)
	}

	out := make([]SavedRecipeResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, savedRecipeResponse(rec))
	}
	return c.JSON(out)
}

func getRecipeHandler(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(store.User)
	if !ok {
		return authRequired(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return recipeNotFound(c)
	}

	st := c.Locals("store").(*store.Store)
	rec, err := st.GetRecipe(c.Context(), id, user.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return recipeNotFound(c)
		}
		return internalError(c, err)
	}

	return c.JSON(savedRecipeResponse(rec))
}

func deleteRecipeHandler(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(store.User)
	if !ok {
		return authRequired(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return recipeNotFound(c)
	}

	st := c.Locals("store").(*store.Store)
	if err := st.DeleteRecipe(c.Context(), id, user.ID); err != nil {
		if err == sql.ErrNoRows {
			return recipeNotFound(c)
		}
		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func savedRecipeResponse(rec store.SavedRecipe) SavedRecipeResponse {
	return SavedRecipeResponse{
		ID:           rec.ID.String(),
		Title:        rec.Title,
		SourceURL:    rec.SourceURL,
		ImageURL:     rec.ImageURL.String,
		Ingredients:  store.StringList(rec.Ingredients),
		Instructions: store.StringList(rec.Instructions),
		PrepTime:     rec.PrepTime.String,
		CookTime:     rec.CookTime.String,
		Servings:     rec.Servings.String,
		CreatedAt:    rec.CreatedAt,
	}
}

func authRequired(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Success: false,
		Code:    "UNAUTHENTICATED",
		Error:   "Authentication required",
	})
}

func recipeNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
		Success: false,
		Code:    "NOT_FOUND",
		Error:   "Recipe not found",
	})
}
