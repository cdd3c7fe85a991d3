package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ahmadov/tabris-markdown/internal/transducer"
)

type Config struct {
	Port string

	// Auth; empty disables it.
	APIKey string

	// Upload limits
	MaxUploadBytes int64

	// Rendering
	HeadingBreak transducer.HeadingBreak

	// Render latency window
	StatsWindow time.Duration

	// PDF
	PDFFallbackPdftotext bool

	LogLevel slog.Level
}

func Load() (Config, error) {
	cfg := Config{
		Port:   envOr("PORT", "8090"),
		APIKey: os.Getenv("MARKDOWN_API_KEY"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10<<20), // 10MB

		StatsWindow: envDuration("STATS_WINDOW", time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	hb, err := transducer.ParseHeadingBreak(os.Getenv("HEADING_BREAK"))
	if err != nil {
		return cfg, fmt.Errorf("HEADING_BREAK: %w", err)
	}
	cfg.HeadingBreak = hb

	if err := cfg.LogLevel.UnmarshalText([]byte(envOr("LOG_LEVEL", "info"))); err != nil {
		return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = time.Hour
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if _, err := strconv.Atoi(strings.TrimPrefix(c.Port, ":")); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
