package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	t.Setenv("TZ", "UTC")

	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.FeedURL != DefaultFeedURL {
		t.Errorf("Expected feed URL '%s', got '%s'", DefaultFeedURL, cfg.FeedURL)
	}
	if cfg.OptionsFile != "./options.yml" {
		t.Errorf("Expected options file './options.yml', got '%s'", cfg.OptionsFile)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("Expected worker count 4, got %d", cfg.WorkerCount)
	}
	if cfg.RetryBackoffDuration() != 20*time.Minute {
		t.Errorf("Expected retry backoff 20m, got %v", cfg.RetryBackoffDuration())
	}
	if cfg.FetchTimeoutDuration() != 30*time.Second {
		t.Errorf("Expected fetch timeout 30s, got %v", cfg.FetchTimeoutDuration())
	}
	if cfg.Location != time.UTC {
		t.Errorf("Expected UTC location, got %v", cfg.Location)
	}
}

func TestLoadArgsOverrides(t *testing.T) {
	cfg, err := LoadArgs([]string{
		"--feed-url", "http://localhost/feed.xml",
		"--worker-count", "0",
		"--retry-backoff", "5",
		"--timezone", "America/New_York",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.FeedURL != "http://localhost/feed.xml" {
		t.Errorf("Expected overridden feed URL, got '%s'", cfg.FeedURL)
	}
	if cfg.WorkerCount != 1 {
		t.Errorf("Expected worker count clamped to 1, got %d", cfg.WorkerCount)
	}
	if cfg.RetryBackoffDuration() != 5*time.Minute {
		t.Errorf("Expected retry backoff 5m, got %v", cfg.RetryBackoffDuration())
	}
	if cfg.Location.String() != "America/New_York" {
		t.Errorf("Expected America/New_York, got %s", cfg.Location)
	}
}

func TestLoadArgsInvalidTimezoneFallsBackToUTC(t *testing.T) {
	cfg, err := LoadArgs([]string{"--timezone", "Mars/Olympus"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Location != time.UTC {
		t.Errorf("Expected UTC fallback, got %v", cfg.Location)
	}
}

func TestLoadArgsRejectsNonPositiveTimeout(t *testing.T) {
	if _, err := LoadArgs([]string{"--fetch-timeout", "0"}); err == nil {
		t.Error("Expected error for zero fetch timeout")
	}
}

func TestLoadArgsExtraTags(t *testing.T) {
	cfg, err := LoadArgs([]string{"--tag", "StarCraft II", "--tag", "League of Legends"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(cfg.ExtraTags) != 2 || cfg.ExtraTags[0] != "StarCraft II" || cfg.ExtraTags[1] != "League of Legends" {
		t.Errorf("Expected two extra tags, got %v", cfg.ExtraTags)
	}
}
