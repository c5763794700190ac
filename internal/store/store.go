// Package store persists users and their saved recipes in Postgres.
// The extraction pipeline itself never touches storage; only the saved
// recipe endpoints do.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sqlc-dev/pqtype"
)

// Store wraps a shared pooled *sql.DB.
type Store struct {
	DB *sql.DB
}

func New(database *sql.DB) *Store {
	return &Store{DB: database}
}

// User is an account row.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// SavedRecipe is a recipe a user chose to keep. The ingredient and
// instruction lists are stored as JSONB in source order.
type SavedRecipe struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Title        string
	SourceURL    string
	ImageURL     sql.NullString
	Ingredients  pqtype.NullRawMessage
	Instructions pqtype.NullRawMessage
	PrepTime     sql.NullString
	CookTime     sql.NullString
	Servings     sql.NullString
	CreatedAt    time.Time
}

// StringList decodes a JSONB list column back into its ordered slice.
func StringList(raw pqtype.NullRawMessage) []string {
	if !raw.Valid {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(raw.RawMessage, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func (s *Store) CreateUser(ctx context.Context, email, username, passwordHash string) (User, error) {
	u := User{ID: uuid.New(), Email: email, Username: username, PasswordHash: passwordHash}
	row := s.DB.QueryRowContext(ctx,
		`INSERT INTO users (id, email, username, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		u.ID, u.Email, u.Username, u.PasswordHash)
	if err := row.Scan(&u.CreatedAt); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash, created_at
		 FROM users WHERE email = $1`, email)
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash, created_at
		 FROM users WHERE username = $1`, username)
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash, created_at
		 FROM users WHERE id = $1`, id)
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// SaveRecipeParams carries the caller-supplied fields for a new saved
// recipe.
type SaveRecipeParams struct {
	Title        string
	SourceURL    string
	ImageURL     string
	Ingredients  []string
	Instructions []string
	PrepTime     string
	CookTime     string
	Servings     string
}

func (s *Store) SaveRecipe(ctx context.Context, userID uuid.UUID, p SaveRecipeParams) (SavedRecipe, error) {
	ingredients, err := json.Marshal(p.Ingredients)
	if err != nil {
		return SavedRecipe{}, err
	}
	instructions, err := json.Marshal(p.Instructions)
	if err != nil {
		return SavedRecipe{}, err
	}

	rec := SavedRecipe{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        p.Title,
		SourceURL:    p.SourceURL,
		ImageURL:     nullString(p.ImageURL),
		Ingredients:  pqtype.NullRawMessage{RawMessage: ingredients, Valid: true},
		Instructions: pqtype.NullRawMessage{RawMessage: instructions, Valid: true},
		PrepTime:     nullString(p.PrepTime),
		CookTime:     nullString(p.CookTime),
		Servings:     nullString(p.Servings),
	}

	row := s.DB.QueryRowContext(ctx,
		`INSERT INTO saved_recipes
		   (id, user_id, title, source_url, image_url, ingredients, instructions, prep_time, cook_time, servings)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at`,
		rec.ID, rec.UserID, rec.Title, rec.SourceURL, rec.ImageURL,
		rec.Ingredients, rec.Instructions, rec.PrepTime, rec.CookTime, rec.Servings)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return SavedRecipe{}, err
	}
	return rec, nil
}

func (s *Store) ListRecipes(ctx context.Context, userID uuid.UUID) ([]SavedRecipe, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, user_id, title, source_url, image_url, ingredients, instructions,
		        prep_time, cook_time, servings, created_at
		 FROM saved_recipes WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SavedRecipe
	for rows.Next() {
		var rec SavedRecipe
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.SourceURL, &rec.ImageURL,
			&rec.Ingredients, &rec.Instructions, &rec.PrepTime, &rec.CookTime, &rec.Servings,
			&rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) GetRecipe(ctx context.Context, id, userID uuid.UUID) (SavedRecipe, error) {
	var rec SavedRecipe
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, user_id, title, source_url, image_url, ingredients, instructions,
		        prep_time, cook_time, servings, created_at
		 FROM saved_recipes WHERE id = $1 AND user_id = $2`, id, userID)
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.SourceURL, &rec.ImageURL,
		&rec.Ingredients, &rec.Instructions, &rec.PrepTime, &rec.CookTime, &rec.Servings,
		&rec.CreatedAt)
	return rec, err
}

// DeleteRecipe removes a user's saved recipe. sql.ErrNoRows is returned
// when the id does not exist or belongs to another user.
func (s *Store) DeleteRecipe(ctx context.Context, id, userID uuid.UUID) error {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM saved_recipes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
