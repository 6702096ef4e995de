package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Backends in priority order.
	Backends []string

	// pdftotext
	PdftotextPath    string
	PdftotextTimeout time.Duration

	// HTTP surface (serve)
	Port           string
	APIKey         string
	MaxUploadBytes int64

	// Logging
	LogLevel  slog.Level
	LogFormat string
}

func Load() Config {
	cfg := Config{
		Backends: envList("PDFEXTRACT_BACKENDS"),

		PdftotextPath:    envOr("PDFTOTEXT_PATH", "pdftotext"),
		PdftotextTimeout: envDuration("PDFTOTEXT_TIMEOUT", 60*time.Second),

		Port:           envOr("PORT", "8090"),
		APIKey:         os.Getenv("PDFEXTRACT_API_KEY"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		LogLevel:  envLevel("LOG_LEVEL", slog.LevelInfo),
		LogFormat: strings.ToLower(envOr("LOG_FORMAT", "json")),
	}

	if cfg.PdftotextTimeout <= 0 {
		cfg.PdftotextTimeout = 60 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	return nil
}

// Logger builds the process logger. Logs go to stderr so stdout carries only
// extracted text.
func (c Config) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
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

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}
