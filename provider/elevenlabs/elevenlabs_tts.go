package elevenlabs

import (
	"context"
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/lemon-mint/vorleser"
	"github.com/lemon-mint/vorleser/internal/randpool"
	"github.com/lemon-mint/vorleser/pconf"
	"github.com/lemon-mint/vorleser/provider"
	"github.com/lemon-mint/vorleser/tts"
)

const DefaultModel = "eleven_multilingual_v2"

// =================== Config ==================

var defaultElevenlabsConfig = tts.Config{
	Stability:       0.5,
	SimilarityBoost: 0.75,
	Style:           0,
	UseSpeakerBoost: true,
	Format:          tts.FormatMP3,
}

func outputFormat(f tts.Format, sampleRate int) (string, error) {
	switch f {
	case tts.FormatMP3:
		return "mp3_44100_128", nil
	case tts.FormatLINEAR16:
		if sampleRate == 0 {
			sampleRate = 24000
		}
		return "pcm_" + strconv.Itoa(sampleRate), nil
	case tts.FormatMULAW:
		return "ulaw_8000", nil
	}
	return "", tts.ErrUnsupportedFileFormat
}

// =================== Client ===================

var _ provider.TTSClient = (*ElevenlabsClient)(nil)
var _ tts.VoiceLister = (*ElevenlabsClient)(nil)

type ElevenlabsClient struct {
	client *elevenlabsAPIClient
}

func (g *ElevenlabsClient) NewTTS(model string, config *tts.Config) (tts.Model, error) {
	if config == nil || config.VoiceID == "" {
		return nil, tts.ErrVoiceRequired
	}

	c := *config
	c.Model = model
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Format == "" {
		c.Format = defaultElevenlabsConfig.Format
	}
	if c.Stability == 0 {
		c.Stability = defaultElevenlabsConfig.Stability
	}
	if c.SimilarityBoost == 0 {
		c.SimilarityBoost = defaultElevenlabsConfig.SimilarityBoost
	}

	_vm := &elevenlabsModel{
		client: g.client,
		config: &c,
	}

	return _vm, nil
}

func (*ElevenlabsClient) Close() error {
	return nil
}

func (*ElevenlabsClient) Name() string {
	return ProviderName
}

// Voices lists the voices on the account. ElevenLabs voices are
// multilingual, so language only filters voices labelled with a language.
func (g *ElevenlabsClient) Voices(ctx context.Context, language string) ([]tts.Voice, error) {
	resp, err := g.client.RequestVoiceList(ctx)
	if err != nil {
		return nil, err
	}

	voices := make([]tts.Voice, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		if language != "" && v.Labels.Language != "" &&
			!strings.HasPrefix(strings.ToLower(language), strings.ToLower(v.Labels.Language)) {
			continue
		}
		voices = append(voices, tts.Voice{
			ID:       v.VoiceID,
			Name:     v.Name,
			Language: v.Labels.Language,
			Gender:   v.Labels.Gender,
			Engines:  v.HighQualityBaseModelIds,
		})
	}

	return voices, nil
}

// =================== Model ===================

var _ tts.Model = (*elevenlabsModel)(nil)

type elevenlabsModel struct {
	client *elevenlabsAPIClient
	config *tts.Config
}

func (g *elevenlabsModel) GenerateSpeech(ctx context.Context, text string) (*tts.AudioStream, error) {
	if text == "" {
		return nil, ErrTextRequired
	}

	format, err := outputFormat(g.config.Format, g.config.SampleRate)
	if err != nil {
		return nil, err
	}

	reqData := ttsRequest{
		ModelID:      g.config.Model,
		Text:         text,
		LanguageCode: g.config.Language,
		Seed:         uint32(g.config.Seed),
		VoiceSettings: TtsVoiceSettings{
			Stability:       g.config.Stability,
			SimilarityBoost: g.config.SimilarityBoost,
			Style:           g.config.Style,
			UseSpeakerBoost: g.config.UseSpeakerBoost,
		},
	}

	if reqData.Seed == 0 {
		var b [4]byte
		randpool.Read(b[:])
		reqData.Seed = binary.LittleEndian.Uint32(b[:])
	}

	body, err := g.client.RequestTTS(ctx, g.config.VoiceID, format, reqData)
	if err != nil {
		return nil, err
	}

	return &tts.AudioStream{
		Format: g.config.Format,
		Body:   body,
	}, nil
}

// =================== Provider ===================

var _ provider.TTSProvider = Provider

type ElevenlabsProvider struct{}

func (ElevenlabsProvider) NewTTSClient(ctx context.Context, configs ...pconf.Config) (provider.TTSClient, error) {
	client_config, err := pconf.Collect(configs...)
	if err != nil {
		return nil, err
	}

	if client_config.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}

	return &ElevenlabsClient{
		client: newClient(client_config.APIKey, client_config.BaseURL, client_config.HTTPClient),
	}, nil
}

// ===================== Init =====================

const ProviderName = "elevenlabs"

var Provider ElevenlabsProvider

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
