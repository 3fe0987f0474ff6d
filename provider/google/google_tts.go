package google

import (
	"bytes"
	"context"
	"io"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/lemon-mint/vorleser"
	"github.com/lemon-mint/vorleser/pconf"
	"github.com/lemon-mint/vorleser/provider"
	"github.com/lemon-mint/vorleser/tts"
	"google.golang.org/api/option"
)

// DefaultVoice is used when the config names no voice.
const DefaultVoice = "en-US-Journey-F"

// =================== Model ===================

type textToSpeechModel struct {
	client *texttospeech.Client

	fmt tts.Format

	language string
	name     string

	speaking_rate float64
	pitch         float64

	sample_rate int32
}

var _ tts.Model = (*textToSpeechModel)(nil)

func (g *textToSpeechModel) GenerateSpeech(ctx context.Context, text string) (*tts.AudioStream, error) {
	var encoding texttospeechpb.AudioEncoding

	switch g.fmt {
	case tts.FormatLINEAR16:
		encoding = texttospeechpb.AudioEncoding_LINEAR16
	case tts.FormatMP3:
		encoding = texttospeechpb.AudioEncoding_MP3
	case tts.FormatOGG:
		encoding = texttospeechpb.AudioEncoding_OGG_OPUS
	case tts.FormatALAW:
		encoding = texttospeechpb.AudioEncoding_ALAW
	case tts.FormatMULAW:
		encoding = texttospeechpb.AudioEncoding_MULAW
	default:
		return nil, tts.ErrUnsupportedFileFormat
	}

	input := &texttospeechpb.SynthesisInput{
		InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
	}
	if strings.HasPrefix(strings.TrimSpace(text), "<speak>") {
		input.InputSource = &texttospeechpb.SynthesisInput_Ssml{Ssml: text}
	}

	resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: input,
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.language,
			Name:         g.name,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   encoding,
			SpeakingRate:    g.speaking_rate,
			Pitch:           g.pitch,
			SampleRateHertz: g.sample_rate,
		},
	})
	if err != nil {
		return nil, err
	}

	if len(resp.GetAudioContent()) == 0 {
		return nil, tts.ErrNoAudioStream
	}

	return &tts.AudioStream{
		Format: g.fmt,
		Body:   io.NopCloser(bytes.NewReader(resp.GetAudioContent())),
	}, nil
}

// languageOf extracts the language code from a voice name like "en-US-Journey-F".
func languageOf(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[0] + "-" + parts[1]
}

// =================== Client ===================

var defaultTextToSpeechConfig = tts.Config{
	Model:        DefaultVoice,
	SpeakingRate: 1.0,
	Pitch:        0,
	Format:       tts.FormatMP3,
}

var _ provider.TTSClient = (*Client)(nil)
var _ tts.VoiceLister = (*Client)(nil)

type Client struct {
	client *texttospeech.Client
}

// NewTTS selects the voice from config.VoiceID, falling back to config.Model.
// The model argument is not used; the voice name determines the model.
func (g *Client) NewTTS(model string, config *tts.Config) (tts.Model, error) {
	if config == nil {
		c := defaultTextToSpeechConfig
		config = &c
	}

	_m := &textToSpeechModel{
		client:        g.client,
		language:      config.Language,
		name:          config.VoiceID,
		speaking_rate: config.SpeakingRate,
		pitch:         config.Pitch,
		sample_rate:   int32(config.SampleRate),
		fmt:           config.Format,
	}

	if _m.name == "" {
		_m.name = config.Model
	}
	if _m.name == "" {
		_m.name = DefaultVoice
	}
	if _m.language == "" {
		_m.language = languageOf(_m.name)
	}
	if _m.fmt == "" {
		_m.fmt = tts.FormatMP3
	}

	return _m, nil
}

func (g *Client) Voices(ctx context.Context, language string) ([]tts.Voice, error) {
	resp, err := g.client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{
		LanguageCode: language,
	})
	if err != nil {
		return nil, err
	}

	voices := make([]tts.Voice, 0, len(resp.GetVoices()))
	for _, v := range resp.GetVoices() {
		voice := tts.Voice{
			ID:     v.GetName(),
			Name:   v.GetName(),
			Gender: strings.ToLower(v.GetSsmlGender().String()),
		}
		if codes := v.GetLanguageCodes(); len(codes) > 0 {
			voice.Language = codes[0]
		}
		voices = append(voices, voice)
	}

	return voices, nil
}

func (g *Client) Close() error {
	return g.client.Close()
}

// =================== Provider ===================

var _ provider.TTSProvider = Provider

type GoogleProvider struct{}

func (GoogleProvider) NewTTSClient(ctx context.Context, configs ...pconf.Config) (provider.TTSClient, error) {
	client_config, err := pconf.Collect(configs...)
	if err != nil {
		return nil, err
	}

	client, err := texttospeech.NewClient(ctx, clientOptions(&client_config)...)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: client,
	}, nil
}

// clientOptions maps Location to the regional endpoint and ProjectID to the
// quota project. Explicit GoogleClientOptions come last and win.
func clientOptions(g *pconf.GeneralConfig) []option.ClientOption {
	var opts []option.ClientOption
	if g.Location != "" && g.Location != "global" {
		opts = append(opts, option.WithEndpoint(g.Location+"-texttospeech.googleapis.com:443"))
	}
	if g.ProjectID != "" {
		opts = append(opts, option.WithQuotaProject(g.ProjectID))
	}
	return append(opts, g.GoogleClientOptions...)
}

// ===================== Init =====================

const ProviderName = "google"

var Provider GoogleProvider

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
