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
	Port string

	// Auth
	APIKey string

	LogLevel string

	// Upload limits
	MaxUploadBytes int64

	// View registry
	ViewTTL  time.Duration
	MaxViews int

	// Navigation
	DiscoveryInterval time.Duration
	DiscoveryAttempts int
	SettleInterval    time.Duration
	Sweep             bool
	SweepStepSettle   time.Duration
	ScrollMargin      float64
	PickOccurrence    string
	ReloadOnSelfMatch bool

	// Viewer
	ViewportHeight float64
	Overscan       float64
	PageCache      int
	Encapsulate    bool
	AttachDelay    time.Duration

	// Layout
	LineWidth    int
	LinesPerPage int

	// Stats
	StatsWindow time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCNAV_API_KEY"),

		LogLevel: envOr("LOG_LEVEL", "info"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		ViewTTL:  envDuration("VIEW_TTL", 1*time.Hour),
		MaxViews: envInt("MAX_VIEWS", 64),

		DiscoveryInterval: envDuration("DISCOVERY_INTERVAL", 100*time.Millisecond),
		DiscoveryAttempts: envInt("DISCOVERY_ATTEMPTS", 30),
		SettleInterval:    envDuration("SETTLE_INTERVAL", 300*time.Millisecond),
		Sweep:             envBool("SWEEP", true),
		SweepStepSettle:   envDuration("SWEEP_STEP_SETTLE", 20*time.Millisecond),
		ScrollMargin:      envFloat("SCROLL_MARGIN", 20),
		PickOccurrence:    envOr("PICK_OCCURRENCE", "second"),
		ReloadOnSelfMatch: envBool("RELOAD_ON_SELF_MATCH", true),

		ViewportHeight: envFloat("VIEWPORT_HEIGHT", 900),
		Overscan:       envFloat("OVERSCAN", 200),
		PageCache:      envInt("PAGE_CACHE", 4),
		Encapsulate:    envBool("ENCAPSULATE", true),
		AttachDelay:    envDuration("ATTACH_DELAY", 50*time.Millisecond),

		LineWidth:    envInt("LINE_WIDTH", 72),
		LinesPerPage: envInt("LINES_PER_PAGE", 40),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.ViewTTL <= 0 {
		cfg.ViewTTL = 1 * time.Hour
	}
	if cfg.MaxViews <= 0 {
		cfg.MaxViews = 64
	}
	if cfg.DiscoveryInterval <= 0 {
		cfg.DiscoveryInterval = 100 * time.Millisecond
	}
	if cfg.DiscoveryAttempts <= 0 {
		cfg.DiscoveryAttempts = 30
	}
	if cfg.SettleInterval < 0 {
		cfg.SettleInterval = 300 * time.Millisecond
	}
	if cfg.SweepStepSettle < 0 {
		cfg.SweepStepSettle = 20 * time.Millisecond
	}
	if cfg.ScrollMargin < 0 {
		cfg.ScrollMargin = 20
	}
	if cfg.ViewportHeight <= 0 {
		cfg.ViewportHeight = 900
	}
	if cfg.Overscan < 0 {
		cfg.Overscan = 200
	}
	if cfg.PageCache < 0 {
		cfg.PageCache = 4
	}
	if cfg.AttachDelay < 0 {
		cfg.AttachDelay = 50 * time.Millisecond
	}
	if cfg.LineWidth < 20 {
		cfg.LineWidth = 72
	}
	if cfg.LinesPerPage < 4 {
		cfg.LinesPerPage = 40
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCNAV_API_KEY is required")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.PickOccurrence) {
	case "first", "second", "last":
	default:
		return fmt.Errorf("PICK_OCCURRENCE must be first, second or last, got %q", c.PickOccurrence)
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
