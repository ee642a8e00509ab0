package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %s", cfg.Port)
	}
	if cfg.EmbeddingCacheSize != 4096 {
		t.Errorf("EmbeddingCacheSize = %d", cfg.EmbeddingCacheSize)
	}
	if cfg.MaxConcurrent != 5 {
		t.Errorf("MaxConcurrent = %d", cfg.MaxConcurrent)
	}
	if cfg.MinCasesPerBucket != 3 {
		t.Errorf("MinCasesPerBucket = %d", cfg.MinCasesPerBucket)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_CONCURRENT", "10")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %s", cfg.Port)
	}
	if cfg.MaxConcurrent != 10 {
		t.Errorf("MaxConcurrent = %d", cfg.MaxConcurrent)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}

func TestLoadInvalidInt(t *testing.T) {
	t.Setenv("MAX_CONCURRENT", "lots")

	if _, err := Load(); err == nil {
		t.Error("expected error for non-integer MAX_CONCURRENT")
	}
}

func TestLoadNonPositiveInt(t *testing.T) {
	t.Setenv("EMBEDDING_CACHE_SIZE", "0")

	if _, err := Load(); err == nil {
		t.Error("expected error for zero EMBEDDING_CACHE_SIZE")
	}
}
