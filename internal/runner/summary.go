package runner

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// WriteSummary prints one row per result and a totals line.
func WriteSummary(w io.Writer, res []Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SUITE\tRESULT\tEXIT\tWARN\tDURATION\tBASE")
	for _, x := range res {
		outcome := "PASS"
		if !x.Passed() {
			outcome = "FAIL"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			x.Suite, outcome, x.ExitCode, x.Warnings, x.Duration.Round(time.Millisecond), x.BaseURL)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d suites, %d passed, %d failed\n", len(res), len(res)-Failed(res), Failed(res))
	return err
}
