package serve

import (
	"fmt"
	"net"

	"github.com/lemon-mint/vorleser/cmd/vorleser/internal"
	"github.com/lemon-mint/vorleser/server"
	"github.com/spf13/cobra"
)

func NewServeCommand(flags *internal.GlobalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Serve POST /v1/speech over HTTP",
		Example:      `vorleser serve --addr :8080`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.LoadConfig()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			log := internal.NewLogger(cfg.Log, cmd.ErrOrStderr())

			p, closeFn, err := internal.NewPublisher(cmd.Context(), cfg, &log)
			if err != nil {
				return err
			}
			defer closeFn()

			l, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}

			return server.New(p, &log).Serve(cmd.Context(), l)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}
