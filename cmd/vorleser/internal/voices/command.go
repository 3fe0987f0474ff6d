package voices

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/lemon-mint/vorleser/cmd/vorleser/internal"
	"github.com/lemon-mint/vorleser/tts"
	"github.com/spf13/cobra"
)

// Factory returns the voice lister of the configured provider and a function
// releasing it.
type Factory func(cmd *cobra.Command) (tts.VoiceLister, func() error, error)

func NewVoicesCommand(flags *internal.GlobalFlags) *cobra.Command {
	return newVoicesCommand(func(cmd *cobra.Command) (tts.VoiceLister, func() error, error) {
		cfg, err := flags.LoadSpeechConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("error loading config: %w", err)
		}

		client, err := internal.NewTTSClient(cmd.Context(), cfg)
		if err != nil {
			return nil, nil, err
		}

		lister, ok := client.(tts.VoiceLister)
		if !ok {
			client.Close()
			return nil, nil, fmt.Errorf("provider %q cannot list voices", cfg.TTS.Provider)
		}
		return lister, client.Close, nil
	})
}

func newVoicesCommand(factory Factory) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:          "voices",
		Short:        "List the voices of the configured speech provider",
		Example:      `vorleser voices --language en-US`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lister, closeFn, err := factory(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			voices, err := lister.Voices(cmd.Context(), language)
			if err != nil {
				return err
			}

			return printVoices(cmd.OutOrStdout(), voices)
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "only list voices for this language code")

	return cmd
}

func printVoices(w io.Writer, voices []tts.Voice) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLANGUAGE\tGENDER\tENGINES")
	for _, v := range voices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.ID, v.Name, v.Language, v.Gender, strings.Join(v.Engines, ","))
	}
	return tw.Flush()
}
