package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the signal HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closer, err := bootstrap(opts, os.Stdout)
			if err != nil {
				return err
			}
			defer closer()

			ctx, cancel := signalContext()
			defer cancel()
			return a.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&opts.httpAddr, "addr", "", "override app.http_addr")
	return cmd
}
