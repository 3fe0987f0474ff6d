package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/lemon-mint/vorleser"
	"github.com/lemon-mint/vorleser/internal/config"
	"github.com/lemon-mint/vorleser/pconf"
	"github.com/lemon-mint/vorleser/provider"
	"github.com/lemon-mint/vorleser/provider/elevenlabs"
	"github.com/lemon-mint/vorleser/provider/google"
	"github.com/lemon-mint/vorleser/provider/openai"
	"github.com/lemon-mint/vorleser/provider/polly"
	s3storage "github.com/lemon-mint/vorleser/provider/s3"
	"github.com/lemon-mint/vorleser/publish"
	"github.com/lemon-mint/vorleser/tts"
	"github.com/rs/zerolog"
)

var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

// FormatVersion returns the version string with optional git commit
func FormatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

// FormatBuildInfo returns build time and go version info
func FormatBuildInfo() (string, string) {
	build := buildTime
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	return build, goVer
}

// GlobalFlags are the persistent flags of the root command.
type GlobalFlags struct {
	ConfigPath string
	EnvFile    string
}

// LoadConfig loads and validates the configuration for publishing.
func (f *GlobalFlags) LoadConfig() (*config.Config, error) {
	return f.load((*config.Config).Validate)
}

// LoadSpeechConfig is LoadConfig for commands that only use the speech
// provider. S3 settings are not required.
func (f *GlobalFlags) LoadSpeechConfig() (*config.Config, error) {
	return f.load((*config.Config).ValidateSpeech)
}

func (f *GlobalFlags) load(validate func(*config.Config) error) (*config.Config, error) {
	cfg, err := config.Load(f.ConfigPath, f.EnvFile)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func NewLogger(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "json" {
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
}

type voiceDefaults struct {
	voice  string
	engine string
}

var providerDefaults = map[string]voiceDefaults{
	polly.ProviderName:      {voice: polly.DefaultVoice, engine: polly.DefaultEngine},
	openai.ProviderName:     {voice: openai.DefaultVoice, engine: openai.DefaultModel},
	elevenlabs.ProviderName: {engine: elevenlabs.DefaultModel},
	google.ProviderName:     {voice: google.DefaultVoice},
}

// VoiceAndEngine resolves the configured voice and engine, falling back to
// the defaults of the selected provider. Providers without a default voice
// need one configured.
func VoiceAndEngine(cfg *config.Config) (string, string, error) {
	d := providerDefaults[cfg.TTS.Provider]
	voice, engine := cfg.TTS.Voice, cfg.TTS.Engine
	if voice == "" {
		voice = d.voice
	}
	if engine == "" {
		engine = d.engine
	}
	if voice == "" {
		return "", "", fmt.Errorf("VORLESER_VOICE for %s: %w", cfg.TTS.Provider, tts.ErrVoiceRequired)
	}
	return voice, engine, nil
}

func awsConfigs(cfg *config.Config) []pconf.Config {
	return []pconf.Config{
		pconf.WithRegion(cfg.AWS.Region),
		pconf.WithStaticCredentials(cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, cfg.AWS.SessionToken),
	}
}

// TTSConfigs returns the client options for the configured speech provider.
func TTSConfigs(cfg *config.Config) []pconf.Config {
	switch cfg.TTS.Provider {
	case polly.ProviderName:
		return awsConfigs(cfg)
	case openai.ProviderName:
		return []pconf.Config{pconf.WithAPIKey(cfg.TTS.OpenAIAPIKey)}
	case elevenlabs.ProviderName:
		return []pconf.Config{pconf.WithAPIKey(cfg.TTS.ElevenlabsAPIKey)}
	case google.ProviderName:
		var configs []pconf.Config
		if cfg.TTS.GoogleProject != "" {
			configs = append(configs, pconf.WithProjectID(cfg.TTS.GoogleProject))
		}
		if cfg.TTS.GoogleLocation != "" {
			configs = append(configs, pconf.WithLocation(cfg.TTS.GoogleLocation))
		}
		if cfg.TTS.GoogleCredentials != "" {
			configs = append(configs, pconf.WithGoogleCredentialsFile(cfg.TTS.GoogleCredentials))
		}
		return configs
	}
	return nil
}

func StorageConfigs(cfg *config.Config) []pconf.Config {
	configs := awsConfigs(cfg)
	if cfg.S3.Endpoint != "" {
		configs = append(configs, pconf.WithBaseURL(cfg.S3.Endpoint))
	}
	return append(configs, pconf.WithUsePathStyle(cfg.S3.UsePathStyle))
}

func NewTTSClient(ctx context.Context, cfg *config.Config) (provider.TTSClient, error) {
	client, err := vorleser.NewTTSClient(ctx, cfg.TTS.Provider, TTSConfigs(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("tts provider %q: %w", cfg.TTS.Provider, err)
	}
	return client, nil
}

// NewPublisher wires the configured speech provider and S3 bucket into a
// publish.Publisher. The returned close function releases both clients.
func NewPublisher(ctx context.Context, cfg *config.Config, log *zerolog.Logger) (*publish.Publisher, func() error, error) {
	voice, engine, err := VoiceAndEngine(cfg)
	if err != nil {
		return nil, nil, err
	}

	speech, err := NewTTSClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	storageClient, err := vorleser.NewStorageClient(ctx, s3storage.ProviderName, StorageConfigs(cfg)...)
	if err != nil {
		speech.Close()
		return nil, nil, err
	}

	closeAll := func() error {
		return errors.Join(speech.Close(), storageClient.Close())
	}

	bucket, err := storageClient.Bucket(cfg.S3.Bucket)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	p := publish.New(speech, bucket, &publish.Options{
		Voice:               voice,
		Engine:              engine,
		Format:              cfg.AudioFormat(),
		KeyPrefix:           cfg.Publish.KeyPrefix,
		URLExpiry:           cfg.Publish.URLExpiry,
		TempDir:             cfg.Publish.TempDir,
		DeleteOnSignFailure: cfg.Publish.DeleteOnSignFailure,
		Logger:              log,
	})

	return p, closeAll, nil
}
