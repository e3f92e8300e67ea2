package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/smokebench/internal/fixture"
)

func newFixtureCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Serve in-process stand-ins for the demo targets",
		Long: `Serve every demo endpoint the suites check (pages, cart API, SOAP,
long-poll and WebSocket ticker, echo and chat bot) on one address, for
dry runs such as:

  smoke run mood dukeetf2 websocketbot echo --base http://localhost:8080

The SOAP endpoint lives at /helloservice/HelloServiceBean and the cart API
under /cart/api/cart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := c.logger()
			srv := fixture.New(
				fixture.WithTickInterval(c.v.GetDuration("tick")),
				fixture.WithLogger(logger),
			)
			return srv.ListenAndServe(cmd.Context(), c.v.GetString("addr"))
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Duration("tick", time.Second, "ticker update interval")
	_ = c.v.BindPFlags(cmd.Flags())
	return cmd
}
