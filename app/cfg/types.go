package cfg

import "time"

type Cfg struct {
	// Storage configuration
	DBPath      string
	OptionsFile string

	// Feed source
	FeedURL      string
	FetchTimeout int // seconds
	UserAgent    string
	ExtraTags    []string

	// Application configuration
	Port              string
	APIAccessKey      string
	WorkerCount       int
	SchedulerInterval int // seconds
	RetryBackoff      int // minutes

	// Application metadata
	Timezone string
	Location *time.Location
	Debug    bool
	Version  string
}

func (c *Cfg) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

func (c *Cfg) SchedulerIntervalDuration() time.Duration {
	return time.Duration(c.SchedulerInterval) * time.Second
}

func (c *Cfg) RetryBackoffDuration() time.Duration {
	return time.Duration(c.RetryBackoff) * time.Minute
}
