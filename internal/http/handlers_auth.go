package http

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"ladle/internal/config"
	"ladle/internal/store"
)

func registerHandler(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "email, username, and a password of at least 8 characters are required",
		})
	}

	st := c.Locals("store").(*store.Store)
	cfg := c.Locals("config").(*config.Config)

	if _, err := st.GetUserByEmail(c.Context(), req.Email); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "An account with this email already exists",
		})
	} else if err != sql.ErrNoRows {
		return internalError(c, err)
	}

	if _, err := st.GetUserByUsername(c.Context(), req.Username); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "This username is taken",
		})
	} else if err != sql.ErrNoRows {
		return internalError(c, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError(c, err)
	}

	user, err := st.CreateUser(c.Context(), req.Email, req.Username, string(hash))
	if err != nil {
		return internalError(c, err)
	}

	// Registration doubles as the first login.
	token, err := issueToken(cfg, user.ID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func loginHandler(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	st := c.Locals("store").(*store.Store)
	cfg := c.Locals("config").(*config.Config)

	user, err := st.GetUserByEmail(c.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		if err == sql.ErrNoRows {
			return invalidCredentials(c)
		}
		return internalError(c, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return invalidCredentials(c)
	}

	token, err := issueToken(cfg, user.ID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func meHandler(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(store.User)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "Authentication required",
		})
	}
	return c.JSON(UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	})
}

func invalidCredentials(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Success: false,
		Code:    "UNAUTHENTICATED",
		Error:   "Invalid email or password",
	})
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Success: false,
		Code:    "INTERNAL_ERROR",
		Error:   err.Error(),
	})
}
