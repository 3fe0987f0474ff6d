package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type ttsRequest struct {
	Text                            string                               `json:"text"`
	ModelID                         string                               `json:"model_id"`
	LanguageCode                    string                               `json:"language_code,omitempty"`
	VoiceSettings                   TtsVoiceSettings                     `json:"voice_settings"`
	PronunciationDictionaryLocators []TtsPronunciationDictionaryLocators `json:"pronunciation_dictionary_locators,omitempty"`
	Seed                            uint32                               `json:"seed,omitempty"`
	PreviousText                    string                               `json:"previous_text,omitempty"`
	NextText                        string                               `json:"next_text,omitempty"`
}

type TtsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           int     `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type TtsPronunciationDictionaryLocators struct {
	PronunciationDictionaryID string `json:"pronunciation_dictionary_id"`
	VersionID                 string `json:"version_id"`
}

type voiceListResponse struct {
	Voices []struct {
		VoiceID  string `json:"voice_id"`
		Name     string `json:"name"`
		Category string `json:"category"`
		Labels   struct {
			Description string `json:"description"`
			UseCase     string `json:"use case"`
			Accent      string `json:"accent"`
			Gender      string `json:"gender"`
			Age         string `json:"age"`
			Language    string `json:"language"`
		} `json:"labels"`
		PreviewURL              string   `json:"preview_url"`
		HighQualityBaseModelIds []string `json:"high_quality_base_model_ids"`
	} `json:"voices"`
}

// =================== API Client ===================

type elevenlabsAPIClient struct {
	baseURL     string
	authHandler func(r *http.Request) error

	httpClient *http.Client
}

const elevenlabsBaseURL = "https://api.elevenlabs.io/v1"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// RequestTTS returns the audio body of a successful response. The caller closes it.
func (c *elevenlabsAPIClient) RequestTTS(ctx context.Context, voiceid string, outputFormat string, req ttsRequest) (io.ReadCloser, error) {
	u, err := url.JoinPath(c.baseURL, "text-to-speech", voiceid)
	if err != nil {
		return nil, err
	}
	if outputFormat != "" {
		u += "?" + url.Values{"output_format": {outputFormat}}.Encode()
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	r.Header.Set("Accept", "audio/*")

	if err := c.authHandler(r); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(r)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, getErrorByStatus(resp.StatusCode, body)
	}

	return resp.Body, nil
}

func (c *elevenlabsAPIClient) RequestVoiceList(ctx context.Context) (*voiceListResponse, error) {
	u, err := url.JoinPath(c.baseURL, "voices")
	if err != nil {
		return nil, err
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	if err := c.authHandler(r); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, getErrorByStatus(resp.StatusCode, body)
	}

	var voiceList voiceListResponse
	if err := json.NewDecoder(resp.Body).Decode(&voiceList); err != nil {
		return nil, err
	}

	return &voiceList, nil
}

// ================================================

var elevenlabsHTTPClient *http.Client = &http.Client{
	Transport: &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		MaxIdleConns:    16,
		IdleConnTimeout: 30 * time.Second,
	},
}

func newClient(apikey string, baseURL string, httpClient *http.Client) *elevenlabsAPIClient {
	apikey = strings.TrimSpace(apikey)
	if baseURL == "" {
		baseURL = elevenlabsBaseURL
	}
	if httpClient == nil {
		httpClient = elevenlabsHTTPClient
	}
	return &elevenlabsAPIClient{
		baseURL: baseURL,
		authHandler: func(r *http.Request) error {
			r.Header.Set("Content-Type", "application/json")
			r.Header.Set("Xi-Api-Key", apikey)
			return nil
		},
		httpClient: httpClient,
	}
}
