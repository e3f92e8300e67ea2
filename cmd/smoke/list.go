package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rickgao/smokebench/internal/targets"
)

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered suites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := targets.NewRegistry()
			tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SUITE\tENV\tDEFAULT BASE\tDESCRIPTION")
			for _, name := range reg.Names() {
				s, _ := reg.Get(name)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name(), s.EnvVar(), s.DefaultBase(), s.Description())
			}
			return tw.Flush()
		},
	}
}
