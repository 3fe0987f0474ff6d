package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/lemon-mint/vorleser"
	"github.com/lemon-mint/vorleser/pconf"
	"github.com/lemon-mint/vorleser/provider"
	"github.com/lemon-mint/vorleser/tts"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultModel = string(openai.TTSModel1)
	DefaultVoice = string(openai.VoiceNova)
)

type openAITTS struct {
	client *openai.Client

	model openai.SpeechModel
	voice openai.SpeechVoice
	speed float64

	fmt tts.Format
}

var _ tts.Model = (*openAITTS)(nil)

func (g *openAITTS) GenerateSpeech(ctx context.Context, text string) (*tts.AudioStream, error) {
	var encoding openai.SpeechResponseFormat

	switch g.fmt {
	case tts.FormatMP3:
		encoding = openai.SpeechResponseFormatMp3
	case tts.FormatOGG:
		encoding = openai.SpeechResponseFormatOpus
	case tts.FormatAAC:
		encoding = openai.SpeechResponseFormatAac
	case tts.FormatFLAC:
		encoding = openai.SpeechResponseFormatFlac
	case tts.FormatWAV:
		encoding = openai.SpeechResponseFormatWav
	case tts.FormatLINEAR16:
		encoding = openai.SpeechResponseFormatPcm
	default:
		return nil, tts.ErrUnsupportedFileFormat
	}

	resp, err := g.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          g.model,
		Voice:          g.voice,
		Speed:          g.speed,
		ResponseFormat: encoding,
		Input:          text,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &tts.AudioStream{
		Format: g.fmt,
		Body:   resp,
	}, nil
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusBadRequest {
		return errors.Join(tts.ErrUnprocessableContent, err)
	}
	return err
}

var defaultOpenAITTSConfig = tts.Config{
	VoiceID:      DefaultVoice,
	SpeakingRate: 1.0,
	Format:       tts.FormatMP3,
}

var _ provider.TTSClient = (*Client)(nil)

// NewTTS takes the model name ("tts-1", "tts-1-hd") and reads the voice from
// config.VoiceID, falling back to config.Model.
func (g *Client) NewTTS(model string, config *tts.Config) (tts.Model, error) {
	if config == nil {
		c := defaultOpenAITTSConfig
		config = &c
	}

	_m := &openAITTS{
		client: g.client,
		model:  openai.SpeechModel(model),
		voice:  openai.SpeechVoice(config.VoiceID),
		speed:  config.SpeakingRate,
		fmt:    config.Format,
	}

	if _m.model == "" {
		_m.model = openai.SpeechModel(DefaultModel)
	}
	if _m.voice == "" {
		_m.voice = openai.SpeechVoice(config.Model)
	}
	if _m.voice == "" {
		_m.voice = openai.SpeechVoice(DefaultVoice)
	}
	if _m.speed == 0 {
		_m.speed = 1.0
	}
	if _m.fmt == "" {
		_m.fmt = tts.FormatMP3
	}

	return _m, nil
}

// =================== Provider ===================

var _ provider.TTSProvider = Provider

type OpenAIProvider struct{}

func (OpenAIProvider) NewTTSClient(ctx context.Context, configs ...pconf.Config) (provider.TTSClient, error) {
	return newClient(configs...)
}

// ===================== Init =====================

const ProviderName = "openai"

var Provider OpenAIProvider

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
