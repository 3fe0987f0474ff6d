package openai

import (
	"errors"

	"github.com/lemon-mint/vorleser/pconf"
	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
}

func (*Client) Close() error {
	return nil
}

var (
	ErrAPIKeyRequired error = errors.New("api key is required")
)

type openaiConfig func(*Client) error

func (openaiConfig) Apply(*pconf.GeneralConfig) error {
	return nil
}

func WithAzureConfig(apiKey, baseURL string) pconf.Config {
	return WithOpenAIConfig(openai.DefaultAzureConfig(apiKey, baseURL))
}

func WithOpenAIConfig(config openai.ClientConfig) pconf.Config {
	return WithOpenAIClient(openai.NewClientWithConfig(config))
}

func WithOpenAIClient(client *openai.Client) pconf.Config {
	return openaiConfig(func(c *Client) error {
		c.client = client
		return nil
	})
}

func newClient(configs ...pconf.Config) (*Client, error) {
	client_config := pconf.GeneralConfig{}
	var openai_client Client
	for i := range configs {
		switch v := configs[i].(type) {
		case nil:
		case openaiConfig:
			if err := v(&openai_client); err != nil {
				return nil, err
			}
		default:
			if err := configs[i].Apply(&client_config); err != nil {
				return nil, err
			}
		}
	}

	if openai_client.client != nil {
		return &openai_client, nil
	}

	if client_config.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}

	openai_config := openai.DefaultConfig(client_config.APIKey)
	if client_config.BaseURL != "" {
		openai_config.BaseURL = client_config.BaseURL
	}
	if client_config.HTTPClient != nil {
		openai_config.HTTPClient = client_config.HTTPClient
	}

	openai_client.client = openai.NewClientWithConfig(openai_config)
	return &openai_client, nil
}
