package suite

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/rickgao/smokebench/internal/browser"
	"github.com/rickgao/smokebench/internal/check"
	"github.com/rickgao/smokebench/internal/probe"
)

// Suite is the ordered set of smoke checks for one target application.
type Suite interface {
	// Name is the registry key, e.g. "dukeetf2".
	Name() string

	// Description is a one-line summary shown by `smoke list`.
	Description() string

	// EnvVar names the environment variable holding the base URL.
	EnvVar() string

	// DefaultBase is used when no base URL is configured.
	DefaultBase() string

	// Run executes the checks. A nil error means every fatal check passed;
	// a *check.Failure carries the exit code for the failing step.
	Run(ctx context.Context, env *Env) error
}

// Env carries everything a suite needs for one run.
type Env struct {
	Base     string
	HTTP     *probe.Client
	Report   *check.Reporter
	Browser  browser.Launcher
	Logger   *slog.Logger
	Timeouts Timeouts

	// Getenv reads suite-specific settings such as SMOKE_NAME. Defaults to
	// os.Getenv.
	Getenv func(string) string
}

// Timeouts bounds the blocking steps of a suite.
type Timeouts struct {
	HTTP       time.Duration // Ordinary requests
	LongPoll   time.Duration // Long-poll requests
	WS         time.Duration // WebSocket connect and receive
	ChangeWait time.Duration // Pause between two samples that must differ
}

// DefaultTimeouts returns the timeouts used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		HTTP:       10 * time.Second,
		LongPoll:   12 * time.Second,
		WS:         12 * time.Second,
		ChangeWait: 5 * time.Second,
	}
}

// Env returns the value of key via Getenv.
func (e *Env) Env(key string) string {
	if e.Getenv != nil {
		return e.Getenv(key)
	}
	return os.Getenv(key)
}

// EnvOr returns the value of key, or def when it is unset or empty.
func (e *Env) EnvOr(key, def string) string {
	if v := e.Env(key); v != "" {
		return v
	}
	return def
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
