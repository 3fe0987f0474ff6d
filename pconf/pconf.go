package pconf

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"google.golang.org/api/option"
)

type GeneralConfig struct {
	APIKey  string
	BaseURL string

	ProjectID string
	Location  string

	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	UsePathStyle    bool
	AWSConfig       *aws.Config

	HTTPClient *http.Client

	GoogleClientOptions []option.ClientOption
}

func (GeneralConfig) String() string {
	return "<GeneralConfig [REDACTED]>"
}

type Config interface {
	Apply(g *GeneralConfig) error
}

// Collect applies configs in order and returns the resulting GeneralConfig.
func Collect(configs ...Config) (GeneralConfig, error) {
	var g GeneralConfig
	for i := range configs {
		if configs[i] == nil {
			continue
		}
		if err := configs[i].Apply(&g); err != nil {
			return g, err
		}
	}
	return g, nil
}
