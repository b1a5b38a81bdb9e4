package options

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader reads the options file on every call so changes made between runs
// are picked up without a restart.
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

func (l *Loader) Load() (Options, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("Options file not found, using defaults", "path", l.path)
		return Defaults(), nil
	}
	if err != nil {
		return Options{}, fmt.Errorf("failed to read options file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML key/value bag. Recognized keys are interval, author,
// post_status and default_media; anything else is ignored.
func Parse(data []byte) (Options, error) {
	bag := map[string]any{}
	if err := yaml.Unmarshal(data, &bag); err != nil {
		return Options{}, fmt.Errorf("failed to parse options YAML: %w", err)
	}

	opts := Defaults()

	if raw, ok := lookup(bag, "interval"); ok {
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil || !ValidIntervalHours(hours) {
			slog.Warn("Ignoring invalid interval option", "value", raw)
		} else {
			opts.IntervalHours = hours
		}
	}

	if raw, ok := lookup(bag, "author"); ok {
		opts.DefaultAuthorID = parseID("author", raw)
	}

	if raw, ok := lookup(bag, "post_status"); ok {
		status := strings.ToLower(raw)
		if KnownStatuses[status] {
			opts.PostStatus = &status
		} else {
			slog.Warn("Ignoring unknown post_status option", "value", raw)
		}
	}

	if raw, ok := lookup(bag, "default_media"); ok {
		opts.DefaultMediaID = parseID("default_media", raw)
	}

	return opts, nil
}

func lookup(bag map[string]any, key string) (string, bool) {
	v, ok := bag[key]
	if !ok || v == nil {
		return "", false
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return "", false
	}
	return s, true
}

// parseID accepts positive integer identifiers only; zero counts as unset.
func parseID(key, raw string) *int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		slog.Warn("Ignoring invalid identifier option", "option", key, "value", raw)
		return nil
	}
	if id == 0 {
		return nil
	}
	return &id
}
