package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultHTTPTimeout     = 10 * time.Second
	DefaultLongPollTimeout = 12 * time.Second
	DefaultWSTimeout       = 12 * time.Second
	DefaultChangeWait      = 5 * time.Second
	DefaultParallel        = 1
	DefaultBrowserTimeout  = 30 * time.Second
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 4
	DefaultMinConns        = 0
)

func (c *Config) applyDefaults() {
	// Suite defaults
	if c.Defaults.HTTPTimeout == 0 {
		c.Defaults.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.Defaults.LongPollTimeout == 0 {
		c.Defaults.LongPollTimeout = DefaultLongPollTimeout
	}
	if c.Defaults.WSTimeout == 0 {
		c.Defaults.WSTimeout = DefaultWSTimeout
	}
	if c.Defaults.ChangeWait == 0 {
		c.Defaults.ChangeWait = DefaultChangeWait
	}
	if c.Defaults.Parallel == 0 {
		c.Defaults.Parallel = DefaultParallel
	}

	// Browser defaults
	if c.Browser.Headless == nil {
		headless := true
		c.Browser.Headless = &headless
	}
	if c.Browser.Timeout == 0 {
		c.Browser.Timeout = DefaultBrowserTimeout
	}

	// Results database defaults
	applyDBDefaults(&c.Results)
}

func applyDBDefaults(db *ResultsConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
