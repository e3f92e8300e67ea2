package check

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
)

var (
	passTag = color.New(color.FgGreen, color.Bold)
	infoTag = color.New(color.FgCyan)
	warnTag = color.New(color.FgYellow, color.Bold)
	failTag = color.New(color.FgRed, color.Bold)
)

// Reporter writes check outcome lines. A Reporter and the children returned
// by Named share their writers and may be used from several goroutines.
type Reporter struct {
	mu      *sync.Mutex
	out     io.Writer
	errOut  io.Writer
	prefix  string
	verbose bool
	color   bool

	warnings atomic.Int64
	passes   atomic.Int64
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithVerbose enables Verbosef output.
func WithVerbose(v bool) Option {
	return func(r *Reporter) {
		r.verbose = v
	}
}

// WithColor turns colored tags off when enabled is false. Tags are only
// ever colored when stdout is a terminal and NO_COLOR is unset.
func WithColor(enabled bool) Option {
	return func(r *Reporter) {
		r.color = enabled
	}
}

// NewReporter creates a Reporter writing PASS/INFO lines to out and
// WARN/FAIL lines to errOut.
func NewReporter(out, errOut io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		mu:     &sync.Mutex{},
		out:    out,
		errOut: errOut,
		color:  !color.NoColor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewStdReporter creates a Reporter on os.Stdout and os.Stderr.
func NewStdReporter(opts ...Option) *Reporter {
	return NewReporter(os.Stdout, os.Stderr, opts...)
}

// Named returns a child reporter that prefixes every line with name. The
// child has its own counters.
func (r *Reporter) Named(name string) *Reporter {
	return &Reporter{
		mu:      r.mu,
		out:     r.out,
		errOut:  r.errOut,
		prefix:  name,
		verbose: r.verbose,
		color:   r.color,
	}
}

// Verbose reports whether Verbosef output is enabled.
func (r *Reporter) Verbose() bool {
	return r.verbose
}

// Passf prints a [PASS] line.
func (r *Reporter) Passf(format string, args ...any) {
	r.passes.Add(1)
	r.line(r.out, passTag, "[PASS]", format, args...)
}

// Infof prints an [INFO] line.
func (r *Reporter) Infof(format string, args ...any) {
	r.line(r.out, infoTag, "[INFO]", format, args...)
}

// Warnf prints a [WARN] line and counts it.
func (r *Reporter) Warnf(format string, args ...any) {
	r.warnings.Add(1)
	r.line(r.errOut, warnTag, "[WARN]", format, args...)
}

// Failf prints a [FAIL] line without aborting.
func (r *Reporter) Failf(format string, args ...any) {
	r.line(r.errOut, failTag, "[FAIL]", format, args...)
}

// Verbosef prints an untagged line when verbose output is enabled.
func (r *Reporter) Verbosef(format string, args ...any) {
	if !r.verbose {
		return
	}
	r.line(r.out, nil, "", format, args...)
}

// Soft records a non-fatal check: a [PASS] line when ok, otherwise a
// [WARN] line. It returns ok.
func (r *Reporter) Soft(ok bool, passMsg, warnMsg string) bool {
	if ok {
		r.Passf("%s", passMsg)
	} else {
		r.Warnf("%s", warnMsg)
	}
	return ok
}

// Report prints the [FAIL] line for a suite error. Nil errors print nothing.
func (r *Reporter) Report(err error) {
	if err == nil {
		return
	}
	r.Failf("%v", err)
}

// Warnings returns the number of [WARN] lines printed.
func (r *Reporter) Warnings() int {
	return int(r.warnings.Load())
}

// Passes returns the number of [PASS] lines printed.
func (r *Reporter) Passes() int {
	return int(r.passes.Load())
}

func (r *Reporter) line(w io.Writer, c *color.Color, tag, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	if tag != "" && r.color && c != nil {
		tag = c.Sprint(tag)
	}

	var text string
	switch {
	case r.prefix != "" && tag != "":
		text = fmt.Sprintf("%s %s: %s\n", tag, r.prefix, msg)
	case r.prefix != "":
		text = fmt.Sprintf("%s: %s\n", r.prefix, msg)
	case tag != "":
		text = fmt.Sprintf("%s %s\n", tag, msg)
	default:
		text = msg + "\n"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	io.WriteString(w, text)
}
