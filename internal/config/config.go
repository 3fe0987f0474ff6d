// Package config loads the application settings for the vorleser command:
// defaults, then an optional YAML file, then a .env file, then the process
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	yaml "github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/lemon-mint/vorleser/tts"
	"github.com/rs/zerolog"
)

var (
	ErrBucketRequired = errors.New("S3_BUCKET_NAME is required")
	ErrRegionRequired = errors.New("AWS_REGION is required")
	ErrInvalidExpiry  = errors.New("url expiry must be between 1s and 168h")
	ErrInvalidLogFmt  = errors.New("log format must be console or json")
)

type AWSConfig struct {
	AccessKeyID     string `yaml:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	SessionToken    string `yaml:"session_token" env:"AWS_SESSION_TOKEN"`
	Region          string `yaml:"region" env:"AWS_REGION"`
}

type S3Config struct {
	Bucket       string `yaml:"bucket" env:"S3_BUCKET_NAME"`
	Endpoint     string `yaml:"endpoint" env:"S3_ENDPOINT"`
	UsePathStyle bool   `yaml:"use_path_style" env:"S3_USE_PATH_STYLE"`
}

type TTSConfig struct {
	Provider string `yaml:"provider" env:"VORLESER_TTS_PROVIDER"`
	// Voice and Engine fall back to the provider's defaults when empty.
	Voice  string `yaml:"voice" env:"VORLESER_VOICE"`
	Engine string `yaml:"engine" env:"VORLESER_ENGINE"`
	Format string `yaml:"format" env:"VORLESER_FORMAT"`

	OpenAIAPIKey      string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	ElevenlabsAPIKey  string `yaml:"elevenlabs_api_key" env:"ELEVENLABS_API_KEY"`
	GoogleCredentials string `yaml:"google_credentials" env:"GOOGLE_APPLICATION_CREDENTIALS"`
	GoogleProject     string `yaml:"google_project" env:"GOOGLE_CLOUD_PROJECT"`
	// GoogleLocation selects a regional endpoint such as "europe-west3".
	GoogleLocation string `yaml:"google_location" env:"VORLESER_GOOGLE_LOCATION"`
}

type PublishConfig struct {
	KeyPrefix           string        `yaml:"key_prefix" env:"VORLESER_KEY_PREFIX"`
	URLExpiry           time.Duration `yaml:"url_expiry" env:"VORLESER_URL_EXPIRY"`
	TempDir             string        `yaml:"temp_dir" env:"VORLESER_TEMP_DIR"`
	DeleteOnSignFailure bool          `yaml:"delete_on_sign_failure" env:"VORLESER_DELETE_ON_SIGN_FAILURE"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

type Config struct {
	AWS     AWSConfig     `yaml:"aws"`
	S3      S3Config      `yaml:"s3"`
	TTS     TTSConfig     `yaml:"tts"`
	Publish PublishConfig `yaml:"publish"`
	Log     LogConfig     `yaml:"log"`
}

func Default() *Config {
	return &Config{
		TTS: TTSConfig{
			Provider: "polly",
			Format:   "mp3",
		},
		Publish: PublishConfig{
			KeyPrefix: "polly-audio",
			URLExpiry: time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path, the dotenv file
// at envFile and the environment, in that order. Missing files are skipped;
// an empty path or envFile disables that layer.
func Load(path string, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks everything publishing needs: the bucket, the region, the
// URL expiry and the speech settings.
func (c *Config) Validate() error {
	if c.S3.Bucket == "" {
		return ErrBucketRequired
	}
	if c.AWS.Region == "" {
		return ErrRegionRequired
	}
	if c.Publish.URLExpiry < time.Second || c.Publish.URLExpiry > 7*24*time.Hour {
		return ErrInvalidExpiry
	}
	return c.ValidateSpeech()
}

// ValidateSpeech checks only what talking to the speech provider needs.
// Commands that never touch S3, like listing voices, use it instead of
// Validate.
func (c *Config) ValidateSpeech() error {
	if c.TTS.Provider == "polly" && c.AWS.Region == "" {
		return ErrRegionRequired
	}
	if _, err := tts.ParseFormat(c.TTS.Format); err != nil {
		return fmt.Errorf("config: format %q: %w", c.TTS.Format, err)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return ErrInvalidLogFmt
	}
	return nil
}

// AudioFormat returns the parsed output format. Call Validate first.
func (c *Config) AudioFormat() tts.Format {
	f, _ := tts.ParseFormat(c.TTS.Format)
	return f
}
