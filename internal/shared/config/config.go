package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Config holds application configuration.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Env             string        `env:"ENV" envDefault:"dev"`
	CORSAllowOrigin []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	DocumentStore   string        `env:"DOCUMENT_STORE"`
	MongoURL        string        `env:"MONGO_URL"`
	DBName          string        `env:"DB_NAME" envDefault:"docbrains"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	ObjectStoreType string        `env:"OBJECT_STORE" envDefault:"local"`
	LocalStoreDir   string        `env:"LOCAL_STORE_DIR" envDefault:"./data"`
	AWSRegion       string        `env:"AWS_REGION"`
	S3Bucket        string        `env:"S3_BUCKET"`
	S3Prefix        string        `env:"S3_PREFIX"`
	SSEKMSKeyID     string        `env:"SSE_KMS_KEY_ID"`
	LLMProvider     string        `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMAPIKey       string        `env:"LLM_API_KEY"`
	LLMBaseURL      string        `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel        string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMVisionModel  string        `env:"LLM_VISION_MODEL"`
	LLMTimeout      time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" envDefault:"104857600"`
	MinTextLength   int           `env:"MIN_TEXT_LENGTH" envDefault:"50"`
	ExportDir       string        `env:"EXPORT_DIR"`
	ExportFontPath  string        `env:"EXPORT_FONT_PATH"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return Normalize(cfg)
}

// Normalize canonicalizes enum-like fields and checks cross-field requirements.
func Normalize(cfg Config) (Config, error) {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.ObjectStoreType = normalizeStoreType(cfg.ObjectStoreType)
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.CORSAllowOrigin = splitAndTrim(strings.Join(cfg.CORSAllowOrigin, ","))
	if strings.TrimSpace(cfg.LLMVisionModel) == "" {
		cfg.LLMVisionModel = cfg.LLMModel
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = 50
	}

	store, err := normalizeDocumentStore(cfg.DocumentStore, cfg.MongoURL, cfg.DatabaseURL)
	if err != nil {
		return Config{}, err
	}
	cfg.DocumentStore = store

	if cfg.Env == "production" {
		if cfg.DocumentStore == StoreMemory {
			return Config{}, fmt.Errorf("MONGO_URL or DATABASE_URL is required in production")
		}
		if cfg.LLMProvider == "openai" && strings.TrimSpace(cfg.LLMAPIKey) == "" {
			return Config{}, fmt.Errorf("LLM_API_KEY is required in production")
		}
	}
	return cfg, nil
}

// IsDevLike reports whether in-memory fallbacks are acceptable.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeDocumentStore(raw, mongoURL, databaseURL string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "mongo", "mongodb":
		if strings.TrimSpace(mongoURL) == "" {
			return "", fmt.Errorf("DOCUMENT_STORE=mongo requires MONGO_URL")
		}
		return StoreMongo, nil
	case "postgres", "pg":
		if strings.TrimSpace(databaseURL) == "" {
			return "", fmt.Errorf("DOCUMENT_STORE=postgres requires DATABASE_URL")
		}
		return StorePostgres, nil
	case "memory":
		return StoreMemory, nil
	case "":
	default:
		return "", fmt.Errorf("unknown DOCUMENT_STORE %q", raw)
	}

	switch {
	case strings.TrimSpace(mongoURL) != "":
		return StoreMongo, nil
	case strings.TrimSpace(databaseURL) != "":
		return StorePostgres, nil
	default:
		return StoreMemory, nil
	}
}
