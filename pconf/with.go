package pconf

import (
	"errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"google.golang.org/api/option"
)

var _ Config = (*fnConf)(nil)

var ErrIncompleteCredentials = errors.New("both access key id and secret access key are required")

type fnConf struct {
	Fn func(g *GeneralConfig) error
}

func (a *fnConf) Apply(g *GeneralConfig) error {
	return a.Fn(g)
}

func WithAPIKey(key string) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			g.APIKey = key
			return nil
		},
	}
}

// WithBaseURL overrides the service endpoint. For AWS services this is the
// base endpoint (e.g. a MinIO or LocalStack address).
func WithBaseURL(url string) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			g.BaseURL = url
			return nil
		},
	}
}

func WithProjectID(id string) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			g.ProjectID = id
			return nil
		},
	}
}

func WithLocation(location string) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			g.Location = location
			return nil
		},
	}
}

func WithRegion(region string) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			g.Region = region
			return nil
		},
	}
}

// WithStaticCredentials sets an AWS access key pair. The session token may be empty.
func WithStaticCredentials(accessKeyID, secretAccessKey, sessionToken string) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			if (accessKeyID == "") != (secretAccessKey == "") {
				return ErrIncompleteCredentials
			}
			g.AccessKeyID = accessKeyID
			g.SecretAccessKey = secretAccessKey
			g.SessionToken = sessionToken
			return nil
		},
	}
}

func WithUsePathStyle(usePathStyle bool) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			g.UsePathStyle = usePathStyle
			return nil
		},
	}
}

// WithAWSConfig supplies a fully resolved aws.Config. Region, credentials and
// HTTP client options are ignored when it is set.
func WithAWSConfig(cfg aws.Config) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			g.AWSConfig = &cfg
			return nil
		},
	}
}

func WithHTTPClient(client *http.Client) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			g.HTTPClient = client
			return nil
		},
	}
}

func WithGoogleClientOptions(options ...option.ClientOption) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			g.GoogleClientOptions = append(g.GoogleClientOptions, options...)
			return nil
		},
	}
}

func WithGoogleCredentialsFile(path string) Config {
	return WithGoogleClientOptions(option.WithCredentialsFile(path))
}
