package options

import (
	"math"
	"time"
)

const (
	StatusPublished = "published"
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusPrivate   = "private"
	StatusFuture    = "future"
)

// KnownStatuses is the set of content statuses the store accepts.
var KnownStatuses = map[string]bool{
	StatusPublished: true,
	StatusDraft:     true,
	StatusPending:   true,
	StatusPrivate:   true,
	StatusFuture:    true,
}

const DefaultIntervalHours = 1.0

// MaxIntervalHours is the longest interval a time.Duration can hold.
const MaxIntervalHours = float64(math.MaxInt64 / int64(time.Hour))

// Options is the read-only import configuration for one pipeline run.
// Nil pointers mean the option was not set (or was set to an invalid value).
type Options struct {
	IntervalHours   float64
	DefaultAuthorID *int64
	PostStatus      *string
	DefaultMediaID  *int64
}

func Defaults() Options {
	return Options{IntervalHours: DefaultIntervalHours}
}

// Interval falls back to the default when IntervalHours is out of range.
func (o Options) Interval() time.Duration {
	hours := o.IntervalHours
	if !ValidIntervalHours(hours) {
		hours = DefaultIntervalHours
	}
	return time.Duration(hours * float64(time.Hour))
}

// ValidIntervalHours reports whether hours is a finite positive interval
// that fits in a time.Duration.
func ValidIntervalHours(hours float64) bool {
	return !math.IsNaN(hours) && hours > 0 && hours < MaxIntervalHours
}
