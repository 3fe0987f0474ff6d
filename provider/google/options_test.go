package google

import (
	"testing"

	"github.com/lemon-mint/vorleser/pconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestClientOptions(t *testing.T) {
	g, err := pconf.Collect()
	require.NoError(t, err)
	assert.Empty(t, clientOptions(&g))

	g, err = pconf.Collect(pconf.WithLocation("global"))
	require.NoError(t, err)
	assert.Empty(t, clientOptions(&g))

	g, err = pconf.Collect(
		pconf.WithLocation("europe-west3"),
		pconf.WithProjectID("my-project"),
		pconf.WithGoogleClientOptions(option.WithEndpoint("localhost:9999")),
	)
	require.NoError(t, err)

	assert.Equal(t, []option.ClientOption{
		option.WithEndpoint("europe-west3-texttospeech.googleapis.com:443"),
		option.WithQuotaProject("my-project"),
		option.WithEndpoint("localhost:9999"),
	}, clientOptions(&g))
}
