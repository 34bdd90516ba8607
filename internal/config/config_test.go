package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DOCNAV_API_KEY", "k")
	cfg := Load()

	if cfg.Port != "8090" || cfg.ViewTTL != time.Hour || cfg.MaxViews != 64 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.DiscoveryInterval != 100*time.Millisecond || cfg.DiscoveryAttempts != 30 {
		t.Errorf("unexpected discovery defaults: %v x %d", cfg.DiscoveryInterval, cfg.DiscoveryAttempts)
	}
	if cfg.SettleInterval != 300*time.Millisecond || !cfg.Sweep || cfg.ScrollMargin != 20 {
		t.Errorf("unexpected navigation defaults: %+v", cfg)
	}
	if cfg.PickOccurrence != "second" || !cfg.ReloadOnSelfMatch {
		t.Errorf("unexpected resolution defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_ClampsInvalidValues(t *testing.T) {
	t.Setenv("MAX_VIEWS", "-3")
	t.Setenv("VIEWPORT_HEIGHT", "0")
	t.Setenv("DISCOVERY_INTERVAL", "not-a-duration")
	t.Setenv("SCROLL_MARGIN", "-1")
	cfg := Load()

	if cfg.MaxViews != 64 {
		t.Errorf("expected MaxViews clamped to 64, got %d", cfg.MaxViews)
	}
	if cfg.ViewportHeight != 900 {
		t.Errorf("expected ViewportHeight clamped to 900, got %v", cfg.ViewportHeight)
	}
	if cfg.DiscoveryInterval != 100*time.Millisecond {
		t.Errorf("expected fallback interval, got %v", cfg.DiscoveryInterval)
	}
	if cfg.ScrollMargin != 20 {
		t.Errorf("expected margin clamped to 20, got %v", cfg.ScrollMargin)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SWEEP", "false")
	t.Setenv("PICK_OCCURRENCE", "last")
	t.Setenv("SCROLL_MARGIN", "12.5")
	t.Setenv("LOG_LEVEL", "debug")
	cfg := Load()

	if cfg.Sweep || cfg.PickOccurrence != "last" || cfg.ScrollMargin != 12.5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	lvl, err := cfg.SlogLevel()
	if err != nil || lvl != slog.LevelDebug {
		t.Errorf("expected debug level, got %v (%v)", lvl, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"missing key", Config{LogLevel: "info", PickOccurrence: "second"}, false},
		{"bad level", Config{APIKey: "k", LogLevel: "loud", PickOccurrence: "second"}, false},
		{"bad pick", Config{APIKey: "k", LogLevel: "info", PickOccurrence: "middle"}, false},
		{"ok", Config{APIKey: "k", LogLevel: "warn", PickOccurrence: "First"}, true},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("%s: Validate() = %v", tt.name, err)
		}
	}
}
