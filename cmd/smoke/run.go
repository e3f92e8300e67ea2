package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rickgao/smokebench/internal/browser"
	"github.com/rickgao/smokebench/internal/check"
	"github.com/rickgao/smokebench/internal/config"
	"github.com/rickgao/smokebench/internal/results"
	"github.com/rickgao/smokebench/internal/runner"
	"github.com/rickgao/smokebench/internal/targets"
	"github.com/rickgao/smokebench/internal/version"
)

var errNoSuites = errors.New("no suites selected: name suites or pass --all")

func newRunCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [suite...]",
		Short: "Run smoke suites against running targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, args)
		},
	}

	runFlags(cmd.Flags())
	_ = c.v.BindPFlags(cmd.Flags())

	return cmd
}

// runFlags defines the run flags. Each is also read from SMOKE_<FLAG>.
func runFlags(f *pflag.FlagSet) {
	f.Bool("all", false, "run every registered suite")
	f.String("base", "", "base URL for every selected suite (overrides env and config)")
	f.String("config", "", "path to YAML config file")
	f.Int("parallel", config.DefaultParallel, "number of suites to run concurrently")
	f.Duration("wait-ready", 0, "wait up to this long for each target to answer HTTP")
	f.Duration("http-timeout", config.DefaultHTTPTimeout, "HTTP request timeout")
	f.Duration("ws-timeout", config.DefaultWSTimeout, "WebSocket connect and receive timeout")
	f.Duration("change-wait", config.DefaultChangeWait, "pause between samples that must differ")
	f.String("results-dsn", "", "Postgres DSN for run history")
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := c.logger()
	reg := targets.NewRegistry()

	names := args
	if c.v.GetBool("all") {
		names = reg.Names()
	}
	if len(names) == 0 {
		return errNoSuites
	}

	cfg, err := c.loadConfig(logger)
	if err != nil {
		return err
	}

	logger.Info("starting smoke",
		"version", version.Version,
		"commit", version.Commit,
		"suites", names,
	)

	pw := browser.NewPlaywright(
		browser.WithHeadless(*cfg.Browser.Headless),
		browser.WithTimeout(cfg.Browser.Timeout),
		browser.WithLogger(logger),
	)
	defer func() {
		if err := pw.Close(); err != nil {
			logger.Warn("close browser", "error", err)
		}
	}()

	opts := []runner.Option{
		runner.WithBase(c.v.GetString("base")),
		runner.WithReporter(check.NewReporter(c.stdout, c.stderr, check.WithVerbose(c.verbose()))),
		runner.WithBrowser(pw),
		runner.WithLogger(logger),
	}

	if cfg.Results.Enabled() {
		store, err := results.Open(ctx, cfg.Results, logger)
		if err != nil {
			// Run history is optional; the checks still run.
			logger.Warn("results database unavailable", "error", err)
		} else {
			defer store.Close()
			opts = append(opts, runner.WithRecorder(store))
		}
	}

	res, err := runner.New(reg, cfg, opts...).Run(ctx, names)
	if err != nil {
		return err
	}

	if len(res) > 1 {
		fmt.Fprintln(c.stdout)
		if err := runner.WriteSummary(c.stdout, res); err != nil {
			return err
		}
	}

	if code := runner.ExitCode(res); code != check.ExitOK {
		return &exitError{code: code}
	}
	return nil
}

// loadConfig reads --config when given and applies flag and SMOKE_*
// overrides on top.
func (c *cli) loadConfig(logger *slog.Logger) (*config.Config, error) {
	cfg := config.Default()
	if path := c.v.GetString("config"); path != "" {
		loaded, err := config.LoadAndValidate(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	d := &cfg.Defaults
	if c.v.IsSet("parallel") {
		d.Parallel = c.v.GetInt("parallel")
	}
	if c.v.IsSet("wait-ready") {
		d.WaitReady = c.v.GetDuration("wait-ready")
	}
	if c.v.IsSet("http-timeout") {
		d.HTTPTimeout = c.v.GetDuration("http-timeout")
	}
	if c.v.IsSet("ws-timeout") {
		d.WSTimeout = c.v.GetDuration("ws-timeout")
	}
	if c.v.IsSet("change-wait") {
		d.ChangeWait = c.v.GetDuration("change-wait")
	}
	if dsn := c.v.GetString("results-dsn"); dsn != "" {
		cfg.Results.DSN = dsn
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	logger.Debug("configuration resolved",
		"parallel", d.Parallel,
		"http_timeout", d.HTTPTimeout,
		"ws_timeout", d.WSTimeout,
		"change_wait", d.ChangeWait,
		"results", cfg.Results.Enabled(),
	)
	return cfg, nil
}
