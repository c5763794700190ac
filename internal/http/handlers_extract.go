package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"ladle/internal/config"
	"ladle/internal/services"
)

// extractHandler runs the full pipeline for one URL. Success and
// extraction failure share the Recipe envelope; only the HTTP status
// distinguishes them. AI-stage failures keep a 200 because the
// extraction itself worked and the envelope carries the error.
func extractHandler(c *fiber.Ctx) error {
	var req ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}
	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Missing required field 'url'",
		})
	}

	cfg := c.Locals("config").(*config.Config)
	svc := c.Locals("extractService").(*services.ExtractService)

	// Whisper transcription of a long video can take minutes, so the
	// deadline is generous and configurable.
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Extractor.RequestTimeoutMs)*time.Millisecond)
	defer cancel()

	rec, err := svc.Extract(ctx, req.URL)
	if err != nil {
		var perr *services.PipelineError
		if errors.As(err, &perr) {
			status := fiber.StatusBadRequest
			if perr.Kind == services.FailAI {
				status = fiber.StatusOK
			}
			return c.Status(status).JSON(rec)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	return c.JSON(rec)
}
