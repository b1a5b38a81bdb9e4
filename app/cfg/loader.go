package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

// DefaultFeedURL is the Collegiate Starleague news feed.
const DefaultFeedURL = "https://cstarleague.com/feeds/news.rss"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath      string `long:"db-path" env:"DB_PATH" default:"./data/csl-import.db" description:"SQLite database file"`
	OptionsFile string `long:"options-file" env:"OPTIONS_FILE" default:"./options.yml" description:"Import options file (interval, author, post_status, default_media)"`

	// Feed source
	FeedURL      string   `long:"feed-url" env:"FEED_URL" description:"Feed URL override (defaults to the Collegiate Starleague feed)"`
	FetchTimeout int      `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Feed fetch timeout in seconds"`
	UserAgent    string   `long:"user-agent" env:"USER_AGENT" default:"CSL Import/1.0" description:"User agent string for HTTP requests"`
	ExtraTags    []string `long:"tag" env:"EXTRA_TAGS" env-delim:"," description:"Additional tag attached to every imported item (repeatable)"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of workers ingesting feed items"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"How often the scheduler checks for a due run, in seconds"`
	RetryBackoff      int    `long:"retry-backoff" env:"RETRY_BACKOFF" default:"20" description:"Delay before retrying a failed import, in minutes"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Site timezone for publish dates (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load reads the process arguments and environment.
func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments (os.Args when nil) together with the
// environment. It returns nil, nil when help was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		OptionsFile:       raw.OptionsFile,
		FeedURL:           cmp.Or(raw.FeedURL, DefaultFeedURL),
		FetchTimeout:      raw.FetchTimeout,
		UserAgent:         raw.UserAgent,
		ExtraTags:         raw.ExtraTags,
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		WorkerCount:       max(raw.WorkerCount, 1),
		SchedulerInterval: raw.SchedulerInterval,
		RetryBackoff:      raw.RetryBackoff,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if cfg.FetchTimeout <= 0 {
		return nil, fmt.Errorf("fetch timeout must be positive, got %d", cfg.FetchTimeout)
	}
	if cfg.SchedulerInterval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %d", cfg.SchedulerInterval)
	}
	if cfg.RetryBackoff <= 0 {
		return nil, fmt.Errorf("retry backoff must be positive, got %d", cfg.RetryBackoff)
	}

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		slog.Warn("Invalid timezone, using UTC", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
	}
	cfg.Location = loc

	return cfg, nil
}

func loadLocation(timezone string) (*time.Location, error) {
	if timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(timezone)
}
