package main

import (
	"database/sql"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"ladle/internal/config"
	server "ladle/internal/http"
	"ladle/internal/llm"
	"ladle/internal/migrate"
	"ladle/internal/recipe"
	"ladle/internal/services"
	"ladle/internal/store"
	"ladle/internal/video"
	"ladle/internal/website"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg := config.Load(*configPath)

	// Run migrations on a short-lived connection
	if err := migrate.Run(cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	// Create a shared *sql.DB with pooling for the Store
	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open db failed: %v", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	st := store.New(db)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))

	// A missing OpenAI key disables the AI stages without blocking the
	// structured extraction chains.
	var chatClient llm.Client
	if cfg.OpenAI.APIKey != "" {
		chatClient = llm.NewOpenAIClient(cfg.OpenAI)
	} else {
		logger.Warn("OPENAI_API_KEY not set, AI normalization and transcription disabled")
	}
	normalizer := recipe.NewNormalizer(cfg, chatClient)

	whisper := llm.NewWhisperClient(cfg.OpenAI)
	videoExtractor := video.NewExtractor(cfg, whisper, logger)
	websiteExtractor := website.NewExtractor(cfg)

	svc := services.NewExtractService(cfg, websiteExtractor, videoExtractor, normalizer, logger)

	s := server.NewServer(cfg, st, svc, logger)
	if err := s.Listen(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
