package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli holds state shared by the subcommands.
type cli struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{
		v:      newViper(),
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:           "smoke",
		Short:         "Black-box smoke checks for demo web applications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().BoolP("verbose", "v", false, "print request-level detail and debug logs (env VERBOSE=1)")
	_ = c.v.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	root.AddCommand(
		newRunCmd(c),
		newListCmd(c),
		newFixtureCmd(c),
		newVersionCmd(c),
	)
	return root
}

// newViper binds SMOKE_* variables, e.g. SMOKE_HTTP_TIMEOUT for
// --http-timeout. VERBOSE is honored as well as SMOKE_VERBOSE.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("SMOKE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("verbose", "SMOKE_VERBOSE", "VERBOSE")
	return v
}

func (c *cli) verbose() bool {
	return c.v.GetBool("verbose")
}

// logger writes diagnostics to stderr; debug level when verbose.
func (c *cli) logger() *slog.Logger {
	level := slog.LevelWarn
	if c.verbose() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
