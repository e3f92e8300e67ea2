package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rickgao/smokebench/internal/version"
)

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(c.stdout, "smoke", version.String())
		},
	}
}
