package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lemon-mint/vorleser/cmd/vorleser/internal"
	"github.com/lemon-mint/vorleser/cmd/vorleser/internal/publish"
	"github.com/lemon-mint/vorleser/cmd/vorleser/internal/serve"
	"github.com/lemon-mint/vorleser/cmd/vorleser/internal/version"
	"github.com/lemon-mint/vorleser/cmd/vorleser/internal/voices"
	"github.com/spf13/cobra"
)

func NewVorleserCommand() *cobra.Command {
	flags := &internal.GlobalFlags{}

	cmd := &cobra.Command{
		Use:           "vorleser",
		Short:         "Turn text into speech stored on S3 and share it with a presigned URL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "vorleser.yaml", "YAML config file (skipped when missing)")
	cmd.PersistentFlags().StringVar(&flags.EnvFile, "env-file", ".env", "dotenv file (skipped when missing)")

	cmd.AddCommand(
		publish.NewPublishCommand(flags),
		voices.NewVoicesCommand(flags),
		serve.NewServeCommand(flags),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewVorleserCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
