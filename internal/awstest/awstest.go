// Package awstest keeps tests that build AWS clients independent of the
// developer's shell and ~/.aws files.
package awstest

import (
	"os"
	"path/filepath"
	"testing"
)

var isolatedVars = []string{
	"AWS_CA_BUNDLE",
	"AWS_PROFILE",
	"AWS_DEFAULT_PROFILE",
	"AWS_ENDPOINT_URL",
	"AWS_ENDPOINT_URL_S3",
	"AWS_ENDPOINT_URL_POLLY",
	"AWS_USE_FIPS_ENDPOINT",
	"AWS_USE_DUALSTACK_ENDPOINT",
}

// Isolate points the shared config and credentials files at an empty file
// and clears the variables that change how clients resolve endpoints or TLS.
// Like t.Setenv it cannot be used in parallel tests.
func Isolate(t testing.TB) {
	t.Helper()

	empty := filepath.Join(t.TempDir(), "aws-empty")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatalf("awstest: %v", err)
	}
	t.Setenv("AWS_CONFIG_FILE", empty)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", empty)

	for _, name := range isolatedVars {
		t.Setenv(name, "")
	}
}
