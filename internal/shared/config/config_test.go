package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"ENV", "MONGO_URL", "DATABASE_URL", "DOCUMENT_STORE", "LLM_API_KEY", "CORS_ORIGINS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.DocumentStore != StoreMemory {
		t.Fatalf("expected memory store, got %q", cfg.DocumentStore)
	}
	if cfg.MaxUploadBytes != 100<<20 {
		t.Fatalf("expected 100MiB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.LLMTimeout != 120*time.Second {
		t.Fatalf("expected 120s timeout, got %s", cfg.LLMTimeout)
	}
	if cfg.LLMVisionModel != cfg.LLMModel {
		t.Fatalf("expected vision model to default to %q, got %q", cfg.LLMModel, cfg.LLMVisionModel)
	}
	if len(cfg.CORSAllowOrigin) != 1 || cfg.CORSAllowOrigin[0] != "*" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowOrigin)
	}
}

func TestLoadInfersMongoStore(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCUMENT_STORE", "")
	os.Unsetenv("DOCUMENT_STORE")
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")
	t.Setenv("DATABASE_URL", "postgres://localhost/docbrains")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DocumentStore != StoreMongo {
		t.Fatalf("expected mongo store, got %q", cfg.DocumentStore)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "http://b.test" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowOrigin)
	}
}

func TestNormalizeRejectsProductionWithoutStore(t *testing.T) {
	_, err := Normalize(Config{Env: "prod", LLMProvider: "openai", LLMAPIKey: "k"})
	if err == nil {
		t.Fatal("expected error for production without a document store")
	}
}

func TestNormalizeRejectsProductionWithoutAPIKey(t *testing.T) {
	_, err := Normalize(Config{Env: "production", DatabaseURL: "postgres://x", LLMProvider: "openai"})
	if err == nil {
		t.Fatal("expected error for production without LLM_API_KEY")
	}
}

func TestNormalizeExplicitStoreNeedsURL(t *testing.T) {
	if _, err := Normalize(Config{DocumentStore: "postgres"}); err == nil {
		t.Fatal("expected error for postgres without DATABASE_URL")
	}
	if _, err := Normalize(Config{DocumentStore: "cassandra"}); err == nil {
		t.Fatal("expected error for unknown store")
	}
}
