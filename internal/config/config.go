package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allowOrigins"`
}

type DatabaseConfig struct {
	DSN           string `yaml:"dsn"`
	MigrationsDir string `yaml:"migrationsDir"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	Enabled         bool   `yaml:"enabled"`
	JWTSecret       string `yaml:"jwtSecret"`
	TokenTTLMinutes int    `yaml:"tokenTTLMinutes"`
}

type RateLimitConfig struct {
	DefaultPerMinute int `yaml:"defaultPerMinute"`
}

type RobotsConfig struct {
	Respect bool `yaml:"respect"`
}

type RodConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ExtractorConfig controls the website extraction chain.
type ExtractorConfig struct {
	UserAgent        string `yaml:"userAgent"`
	FetchTimeoutMs   int    `yaml:"fetchTimeoutMs"`
	RequestTimeoutMs int    `yaml:"requestTimeoutMs"`
}

// VideoConfig controls the video extraction chain (yt-dlp and captions).
type VideoConfig struct {
	YtDlpPath        string `yaml:"ytDlpPath"`
	CaptionTimeoutMs int    `yaml:"captionTimeoutMs"`
	TempDir          string `yaml:"tempDir"`
}

// OpenAIConfig carries credentials for the chat and transcription APIs.
type OpenAIConfig struct {
	APIKey       string `yaml:"apiKey"`
	BaseURL      string `yaml:"baseURL"`
	ChatModel    string `yaml:"chatModel"`
	WhisperModel string `yaml:"whisperModel"`
}

// AIConfig tunes the recipe normalizer. The weakness thresholds decide
// when a website extraction is re-run through the AI enhancement pass.
type AIConfig struct {
	WeakMinIngredients  int `yaml:"weakMinIngredients"`
	WeakMinInstructions int `yaml:"weakMinInstructions"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	CORS      CORSConfig      `yaml:"cors"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Robots    RobotsConfig    `yaml:"robots"`
	Rod       RodConfig       `yaml:"rod"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Video     VideoConfig     `yaml:"video"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	AI        AIConfig        `yaml:"ai"`
}

func Load(path string) *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config: %v", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return &cfg
}

// applyEnv lets secrets come from the environment so the yaml file can
// be committed without credentials.
func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Database.MigrationsDir == "" {
		c.Database.MigrationsDir = "db/migrations"
	}
	if c.Extractor.UserAgent == "" {
		c.Extractor.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.Extractor.FetchTimeoutMs == 0 {
		c.Extractor.FetchTimeoutMs = 15000
	}
	if c.Extractor.RequestTimeoutMs == 0 {
		c.Extractor.RequestTimeoutMs = 300000
	}
	if c.Video.YtDlpPath == "" {
		c.Video.YtDlpPath = "yt-dlp"
	}
	if c.Video.CaptionTimeoutMs == 0 {
		c.Video.CaptionTimeoutMs = 10000
	}
	if c.Video.TempDir == "" {
		c.Video.TempDir = os.TempDir()
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if c.OpenAI.WhisperModel == "" {
		c.OpenAI.WhisperModel = "whisper-1"
	}
	if c.AI.WeakMinIngredients == 0 {
		c.AI.WeakMinIngredients = 3
	}
	if c.AI.WeakMinInstructions == 0 {
		c.AI.WeakMinInstructions = 2
	}
	if c.Auth.TokenTTLMinutes == 0 {
		c.Auth.TokenTTLMinutes = 60 * 24
	}
}
