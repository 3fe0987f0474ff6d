package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lemon-mint/vorleser/cmd/vorleser/internal"
	"github.com/lemon-mint/vorleser/publish"
	"github.com/spf13/cobra"
)

var ErrEmptyScript = errors.New("script is empty")

// Publisher is the part of publish.Publisher the command uses.
type Publisher interface {
	Publish(ctx context.Context, script string, voice string) (*publish.Result, error)
}

// Factory builds a Publisher and a function releasing its clients.
type Factory func(cmd *cobra.Command) (Publisher, func() error, error)

type options struct {
	voice  string
	file   string
	asJSON bool
}

func NewPublishCommand(flags *internal.GlobalFlags) *cobra.Command {
	return newPublishCommand(func(cmd *cobra.Command) (Publisher, func() error, error) {
		cfg, err := flags.LoadConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("error loading config: %w", err)
		}
		log := internal.NewLogger(cfg.Log, cmd.ErrOrStderr())
		return internal.NewPublisher(cmd.Context(), cfg, &log)
	})
}

func newPublishCommand(factory Factory) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "publish [script...]",
		Short:        "Synthesize a script and print a presigned download URL",
		SilenceUsage: true,
		Example: `vorleser publish "Hello world"
vorleser publish --voice Matthew --file episode.txt
echo "Hello" | vorleser publish --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := readScript(cmd.InOrStdin(), args, opts.file)
			if err != nil {
				return err
			}

			p, closeFn, err := factory(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := p.Publish(cmd.Context(), script, opts.voice)
			if err != nil {
				return err
			}

			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), publish.Message(res, nil))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.voice, "voice", "v", "", "voice id (defaults to the configured voice)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read the script from a file, - for stdin")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the full result as JSON")

	return cmd
}

// readScript takes the script from args, then the file flag, then stdin.
func readScript(stdin io.Reader, args []string, file string) (string, error) {
	var script string

	switch {
	case len(args) > 0:
		script = strings.Join(args, " ")
	case file != "" && file != "-":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		script = string(data)
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		script = string(data)
	}

	if strings.TrimSpace(script) == "" {
		return "", ErrEmptyScript
	}
	return script, nil
}
