// Package awsconf resolves an aws.Config from pconf options.
package awsconf

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/lemon-mint/vorleser/pconf"
)

// Load returns g.AWSConfig when set. Otherwise it loads the default chain
// (environment, shared files, instance roles) and layers the region, static
// credentials and HTTP client from g on top of it. An explicit HTTP client is
// used as given; AWS_CA_BUNDLE only applies to the SDK's own client.
func Load(ctx context.Context, g *pconf.GeneralConfig) (aws.Config, error) {
	if g.AWSConfig != nil {
		return g.AWSConfig.Copy(), nil
	}

	var opts []func(*config.LoadOptions) error
	if g.Region != "" {
		opts = append(opts, config.WithRegion(g.Region))
	}
	if g.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(g.AccessKeyID, g.SecretAccessKey, g.SessionToken),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}
	if g.HTTPClient != nil {
		cfg.HTTPClient = g.HTTPClient
	}
	return cfg, nil
}

// BaseEndpoint returns the endpoint override, or nil when unset.
func BaseEndpoint(g *pconf.GeneralConfig) *string {
	if g.BaseURL == "" {
		return nil
	}
	return aws.String(g.BaseURL)
}
