package browser

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Errors
var (
	ErrNotConfigured = errors.New("browser not configured")
	ErrClosed        = errors.New("browser closed")
)

// Page is the subset of page interactions smoke suites need.
type Page interface {
	// Goto navigates to url and waits for the load event.
	Goto(url string) error

	// Content returns the serialized DOM of the current page.
	Content() (string, error)

	// FillByTitle types value into the element whose title attribute
	// matches title.
	FillByTitle(title, value string) error

	// FillByLabel types value into the form control labeled label.
	FillByLabel(label, value string) error

	// InputValue returns the current value of the control labeled label.
	InputValue(label string) (string, error)

	// ClickButton clicks the button with the given accessible name and
	// waits for the navigation it triggers.
	ClickButton(name string) error

	// ClickLink clicks the first link whose text contains name.
	ClickLink(name string) error

	// GoBack returns to the previous page in the session history.
	GoBack() error

	Close() error
}

// Launcher opens pages. Each suite run gets its own page.
type Launcher interface {
	NewPage(ctx context.Context) (Page, error)
}

// Config holds browser settings.
type Config struct {
	Headless bool
	Timeout  time.Duration // Navigation and action timeout
	Logger   *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Headless: true,
		Timeout:  30 * time.Second,
	}
}

// Option configures a Playwright launcher.
type Option func(*Config)

// WithHeadless toggles headless mode.
func WithHeadless(headless bool) Option {
	return func(c *Config) {
		c.Headless = headless
	}
}

// WithTimeout sets the navigation and action timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// Unavailable is a Launcher whose pages always fail with err. It stands in
// when no browser was configured for the run.
type Unavailable struct {
	Err error
}

// NewPage implements Launcher.
func (u Unavailable) NewPage(ctx context.Context) (Page, error) {
	if u.Err != nil {
		return nil, u.Err
	}
	return nil, ErrNotConfigured
}
