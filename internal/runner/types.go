package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/smokebench/internal/browser"
	"github.com/rickgao/smokebench/internal/check"
	"github.com/rickgao/smokebench/internal/results"
)

// Result is the outcome of one suite run.
type Result struct {
	RunID    uuid.UUID
	Suite    string
	BaseURL  string
	ExitCode int
	Err      error // Nil on pass
	Warnings int
	Started  time.Time
	Duration time.Duration
}

// Passed reports whether the suite exited 0.
func (r Result) Passed() bool {
	return r.ExitCode == check.ExitOK
}

// Run converts r to a run-history row.
func (r Result) Run() results.Run {
	var msg string
	if r.Err != nil {
		msg = r.Err.Error()
	}
	return results.Run{
		RunID:     r.RunID,
		Suite:     r.Suite,
		BaseURL:   r.BaseURL,
		ExitCode:  r.ExitCode,
		Warnings:  r.Warnings,
		Message:   msg,
		StartedAt: r.Started,
		Duration:  r.Duration,
	}
}

// Recorder persists run results. *results.Store implements it.
type Recorder interface {
	Record(ctx context.Context, runs []results.Run) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithBase overrides the base URL of every suite.
func WithBase(base string) Option {
	return func(r *Runner) {
		r.base = base
	}
}

// WithReporter sets the reporter suites write check lines to.
func WithReporter(rep *check.Reporter) Option {
	return func(r *Runner) {
		r.report = rep
	}
}

// WithBrowser sets the launcher used by browser-driven suites.
func WithBrowser(l browser.Launcher) Option {
	return func(r *Runner) {
		r.browser = l
	}
}

// WithRecorder enables run-history recording.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithGetenv replaces os.Getenv for suite variables and base URL lookup.
func WithGetenv(getenv func(string) string) Option {
	return func(r *Runner) {
		r.getenv = getenv
	}
}
