package fixture

import (
	"log/slog"
	"time"
)

// Config holds fixture settings.
type Config struct {
	TickInterval time.Duration // Ticker period (default: 1s)
	StartPrice   float64       // Initial ticker price (default: 100.0)
	StartVolume  int64         // Initial ticker volume (default: 300000)

	// Timer session: a programmatic timer fires this long after it is set,
	// an automatic one on every interval since start.
	ProgrammaticTimeout time.Duration // default: 8s
	AutomaticTimeout    time.Duration // default: 30s

	Logger *slog.Logger
}

// DefaultConfig returns the settings of the demo applications.
func DefaultConfig() Config {
	return Config{
		TickInterval: time.Second,
		StartPrice:   100.0,
		StartVolume:  300000,

		ProgrammaticTimeout: 8 * time.Second,
		AutomaticTimeout:    30 * time.Second,
	}
}

// Option configures a Server.
type Option func(*Config)

// WithTickInterval sets the ticker period.
func WithTickInterval(d time.Duration) Option {
	return func(c *Config) {
		c.TickInterval = d
	}
}

// WithTimers sets the programmatic delay and automatic interval of the
// timer session.
func WithTimers(programmatic, automatic time.Duration) Option {
	return func(c *Config) {
		c.ProgrammaticTimeout = programmatic
		c.AutomaticTimeout = automatic
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// Quote is one ticker sample.
type Quote struct {
	Price  float64
	Volume int64
}

// String renders the quote the way the ticker sends it.
func (q Quote) String() string {
	return formatQuote(q)
}
