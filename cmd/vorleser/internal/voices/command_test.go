package voices

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lemon-mint/vorleser/tts"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	language string
	err      error
}

func (f *fakeLister) Voices(_ context.Context, language string) ([]tts.Voice, error) {
	f.language = language
	if f.err != nil {
		return nil, f.err
	}
	return []tts.Voice{
		{ID: "Joanna", Name: "Joanna", Language: "en-US", Gender: "Female", Engines: []string{"neural", "standard"}},
		{ID: "Matthew", Name: "Matthew", Language: "en-US", Gender: "Male", Engines: []string{"neural"}},
	}, nil
}

func run(t *testing.T, lister *fakeLister, args ...string) (string, error) {
	t.Helper()

	cmd := newVoicesCommand(func(*cobra.Command) (tts.VoiceLister, func() error, error) {
		return lister, func() error { return nil }, nil
	})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())

	err := cmd.Execute()
	return out.String(), err
}

func TestNewVoicesCommand(t *testing.T) {
	cmd := NewVoicesCommand(nil)

	require.NotNil(t, cmd)
	assert.Equal(t, "voices", cmd.Use)
	assert.True(t, cmd.HasExample())
	assert.NotNil(t, cmd.Flags().Lookup("language"))
	assert.False(t, cmd.HasSubCommands())
	assert.True(t, cmd.SilenceUsage)
}

func TestVoices(t *testing.T) {
	lister := &fakeLister{}

	out, err := run(t, lister, "--language", "en-US")
	require.NoError(t, err)
	assert.Equal(t, "en-US", lister.language)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Joanna")
	assert.Contains(t, lines[1], "neural,standard")
	assert.Contains(t, lines[2], "Matthew")
}

func TestVoicesError(t *testing.T) {
	out, err := run(t, &fakeLister{err: errors.New("AccessDeniedException")})
	assert.ErrorContains(t, err, "AccessDeniedException")
	assert.Empty(t, out)
}
