package runner

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/smokebench/internal/browser"
	"github.com/rickgao/smokebench/internal/check"
	"github.com/rickgao/smokebench/internal/config"
	"github.com/rickgao/smokebench/internal/probe"
	"github.com/rickgao/smokebench/internal/results"
	"github.com/rickgao/smokebench/internal/suite"
	"github.com/rickgao/smokebench/internal/version"
)

// Runner executes suites from a registry.
type Runner struct {
	registry *suite.Registry
	cfg      *config.Config
	base     string
	report   *check.Reporter
	browser  browser.Launcher
	recorder Recorder
	logger   *slog.Logger
	getenv   func(string) string
}

// New creates a Runner. A nil cfg uses config.Default().
func New(registry *suite.Registry, cfg *config.Config, opts ...Option) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	r := &Runner{
		registry: registry,
		cfg:      cfg,
		getenv:   os.Getenv,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.report == nil {
		r.report = check.NewStdReporter()
	}
	if r.browser == nil {
		r.browser = browser.Unavailable{Err: browser.ErrNotConfigured}
	}
	return r
}

// Timeouts maps the configured defaults onto suite timeouts.
func Timeouts(d config.DefaultsConfig) suite.Timeouts {
	t := suite.DefaultTimeouts()
	if d.HTTPTimeout > 0 {
		t.HTTP = d.HTTPTimeout
	}
	if d.LongPollTimeout > 0 {
		t.LongPoll = d.LongPollTimeout
	}
	if d.WSTimeout > 0 {
		t.WS = d.WSTimeout
	}
	if d.ChangeWait > 0 {
		t.ChangeWait = d.ChangeWait
	}
	return t
}

// ResolveBase returns the base URL for s: the runner override, then the
// suite's environment variable, then the config target entry, then the
// suite default.
func (r *Runner) ResolveBase(s suite.Suite) string {
	if r.base != "" {
		return r.base
	}
	if v := r.getenv(s.EnvVar()); v != "" {
		return v
	}
	if t := r.cfg.Target(s.Name()); t.BaseURL != "" {
		return t.BaseURL
	}
	return s.DefaultBase()
}

// Run executes the named suites and returns one Result per suite, sorted by
// suite name. The error is non-nil only when a name is unknown.
func (r *Runner) Run(ctx context.Context, names []string) ([]Result, error) {
	suites, err := r.registry.Lookup(names)
	if err != nil {
		return nil, err
	}

	runID := uuid.New()
	named := len(suites) > 1
	out := make([]Result, len(suites))

	parallel := r.cfg.Defaults.Parallel
	if parallel < 1 {
		parallel = 1
	}

	r.logger.Info("starting smoke run",
		"run_id", runID,
		"suites", len(suites),
		"parallel", parallel,
	)

	// Suite failures are reported through Result, never through the group.
	var g errgroup.Group
	g.SetLimit(parallel)
	for i, s := range suites {
		g.Go(func() error {
			out[i] = r.runOne(ctx, runID, s, named)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(out, func(i, j int) bool { return out[i].Suite < out[j].Suite })

	r.record(ctx, out)
	return out, nil
}

func (r *Runner) runOne(ctx context.Context, runID uuid.UUID, s suite.Suite, named bool) Result {
	base := r.ResolveBase(s)
	timeouts := Timeouts(r.cfg.Defaults)
	logger := r.logger.With("suite", s.Name())

	// Child reporters keep per-suite warning counts.
	prefix := ""
	if named {
		prefix = s.Name()
	}
	report := r.report.Named(prefix)

	env := &suite.Env{
		Base:     base,
		HTTP:     r.newClient(logger),
		Report:   report,
		Browser:  r.browser,
		Logger:   logger,
		Timeouts: timeouts,
		Getenv:   r.suiteGetenv(s.Name()),
	}

	started := time.Now()
	logger.Debug("suite starting", "base", base)

	if wait := r.cfg.Defaults.WaitReady; wait > 0 {
		if err := WaitReady(ctx, env.HTTP, base, wait); err != nil {
			report.Warnf("Target not ready after %s: %v", wait, err)
		}
	}

	err := s.Run(ctx, env)
	report.Report(err)

	res := Result{
		RunID:    runID,
		Suite:    s.Name(),
		BaseURL:  base,
		ExitCode: check.ExitCode(err),
		Err:      err,
		Warnings: report.Warnings(),
		Started:  started,
		Duration: time.Since(started),
	}

	logger.Debug("suite finished",
		"exit_code", res.ExitCode,
		"warnings", res.Warnings,
		"duration", res.Duration,
	)
	return res
}

func (r *Runner) newClient(logger *slog.Logger) *probe.Client {
	return probe.NewClient(
		probe.WithTimeout(Timeouts(r.cfg.Defaults).HTTP),
		probe.WithLogger(logger),
		probe.WithUserAgent(version.UserAgent()),
	)
}

// suiteGetenv looks up the config target's env map before the process
// environment.
func (r *Runner) suiteGetenv(name string) func(string) string {
	vars := r.cfg.Target(name).Env
	return func(key string) string {
		if v, ok := vars[key]; ok {
			return v
		}
		return r.getenv(key)
	}
}

func (r *Runner) record(ctx context.Context, res []Result) {
	if r.recorder == nil || len(res) == 0 {
		return
	}
	runs := make([]results.Run, len(res))
	for i, x := range res {
		runs[i] = x.Run()
	}
	if err := r.recorder.Record(ctx, runs); err != nil {
		r.logger.Error("record run history failed", "error", err, "count", len(runs))
		return
	}
	r.logger.Debug("recorded run history", "count", len(runs))
}

// ExitCode folds results into a process exit code: the code of a single
// suite, or the first non-zero code in suite-name order.
func ExitCode(res []Result) int {
	sorted := make([]Result, len(res))
	copy(sorted, res)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Suite < sorted[j].Suite })

	for _, x := range sorted {
		if x.ExitCode != check.ExitOK {
			return x.ExitCode
		}
	}
	return check.ExitOK
}

// Failed counts results with a non-zero exit code.
func Failed(res []Result) int {
	n := 0
	for _, x := range res {
		if !x.Passed() {
			n++
		}
	}
	return n
}
