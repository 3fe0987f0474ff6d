package polly

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"
	"github.com/lemon-mint/vorleser"
	"github.com/lemon-mint/vorleser/internal/awsconf"
	"github.com/lemon-mint/vorleser/pconf"
	"github.com/lemon-mint/vorleser/provider"
	"github.com/lemon-mint/vorleser/tts"
)

const (
	DefaultVoice  = "Joanna"
	DefaultEngine = "neural"
)

// =================== Model ===================

var _ tts.Model = (*pollyModel)(nil)

type pollyModel struct {
	client *polly.Client

	engine   types.Engine
	voice    types.VoiceId
	language types.LanguageCode

	sampleRate int
	fmt        tts.Format
}

func (g *pollyModel) GenerateSpeech(ctx context.Context, text string) (*tts.AudioStream, error) {
	var format types.OutputFormat

	switch g.fmt {
	case tts.FormatMP3:
		format = types.OutputFormatMp3
	case tts.FormatOGG:
		format = types.OutputFormatOggVorbis
	case tts.FormatLINEAR16:
		format = types.OutputFormatPcm
	default:
		return nil, tts.ErrUnsupportedFileFormat
	}

	input := &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		OutputFormat: format,
		VoiceId:      g.voice,
		Engine:       g.engine,
		LanguageCode: g.language,
		TextType:     types.TextTypeText,
	}

	if strings.HasPrefix(strings.TrimSpace(text), "<speak>") {
		input.TextType = types.TextTypeSsml
	}

	if g.sampleRate > 0 {
		input.SampleRate = aws.String(fmt.Sprint(g.sampleRate))
	}

	resp, err := g.client.SynthesizeSpeech(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}

	if resp.AudioStream == nil {
		return nil, tts.ErrNoAudioStream
	}

	return &tts.AudioStream{
		Format: g.fmt,
		Body:   resp.AudioStream,
	}, nil
}

func mapError(err error) error {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		switch ae.ErrorCode() {
		case "TextLengthExceededException", "InvalidSsmlException",
			"SsmlMarksNotSupportedForTextTypeException", "MarksNotSupportedForFormatException":
			return fmt.Errorf("%w: %w", tts.ErrUnprocessableContent, err)
		}
	}
	return err
}

// =================== Client ===================

var defaultPollyConfig = &tts.Config{
	VoiceID: DefaultVoice,
	Engine:  DefaultEngine,
	Format:  tts.FormatMP3,
}

var (
	_ provider.TTSClient = (*Client)(nil)
	_ tts.VoiceLister    = (*Client)(nil)
)

type Client struct {
	client *polly.Client
}

// NewTTS returns a model bound to one voice. model selects the Polly engine
// ("neural", "standard", "long-form", "generative") and overrides config.Engine.
func (g *Client) NewTTS(model string, config *tts.Config) (tts.Model, error) {
	if config == nil {
		config = defaultPollyConfig
	}

	_m := &pollyModel{
		client:     g.client,
		engine:     types.Engine(config.Engine),
		voice:      types.VoiceId(config.VoiceID),
		language:   types.LanguageCode(config.Language),
		sampleRate: config.SampleRate,
		fmt:        config.Format,
	}

	if model != "" {
		_m.engine = types.Engine(model)
	}
	if _m.engine == "" {
		_m.engine = DefaultEngine
	}
	if _m.voice == "" {
		_m.voice = DefaultVoice
	}
	if _m.fmt == "" {
		_m.fmt = tts.FormatMP3
	}

	return _m, nil
}

// Voices lists the Polly voices, optionally filtered by language code.
func (g *Client) Voices(ctx context.Context, language string) ([]tts.Voice, error) {
	input := &polly.DescribeVoicesInput{
		LanguageCode: types.LanguageCode(language),
	}

	var voices []tts.Voice
	for {
		resp, err := g.client.DescribeVoices(ctx, input)
		if err != nil {
			return nil, err
		}

		for _, v := range resp.Voices {
			voice := tts.Voice{
				ID:       string(v.Id),
				Name:     aws.ToString(v.Name),
				Language: string(v.LanguageCode),
				Gender:   string(v.Gender),
			}
			for _, e := range v.SupportedEngines {
				voice.Engines = append(voice.Engines, string(e))
			}
			voices = append(voices, voice)
		}

		if aws.ToString(resp.NextToken) == "" {
			return voices, nil
		}
		input.NextToken = resp.NextToken
	}
}

func (*Client) Close() error {
	return nil
}

// =================== Provider ===================

var _ provider.TTSProvider = Provider

type PollyProvider struct{}

func (PollyProvider) NewTTSClient(ctx context.Context, configs ...pconf.Config) (provider.TTSClient, error) {
	client_config, err := pconf.Collect(configs...)
	if err != nil {
		return nil, err
	}

	cfg, err := awsconf.Load(ctx, &client_config)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: polly.NewFromConfig(cfg, func(o *polly.Options) {
			if ep := awsconf.BaseEndpoint(&client_config); ep != nil {
				o.BaseEndpoint = ep
			}
		}),
	}, nil
}

// ===================== Init =====================

const ProviderName = "polly"

var Provider PollyProvider

func init() {
	var exists bool
	for _, n := range vorleser.TTSProviders() {
		if n == ProviderName {
			exists = true
			break
		}
	}
	if !exists {
		vorleser.RegisterTTSProvider(ProviderName, Provider)
	}
}
