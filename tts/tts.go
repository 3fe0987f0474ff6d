package tts

import (
	"context"
	"errors"
	"io"
)

type Format string

const (
	FormatLINEAR16 Format = "audio/l16"
	FormatMP3      Format = "audio/mpeg"
	FormatOGG      Format = "audio/ogg"
	FormatALAW     Format = "audio/alaw"
	FormatMULAW    Format = "audio/mulaw"
	FormatAAC      Format = "audio/aac"
	FormatFLAC     Format = "audio/flac"
	FormatWAV      Format = "audio/wav"
)

var extensions = map[Format]string{
	FormatLINEAR16: "pcm",
	FormatMP3:      "mp3",
	FormatOGG:      "ogg",
	FormatALAW:     "alaw",
	FormatMULAW:    "ulaw",
	FormatAAC:      "aac",
	FormatFLAC:     "flac",
	FormatWAV:      "wav",
}

// Extension returns the file extension (without the dot) used for the format.
// Unknown formats map to "bin".
func (f Format) Extension() string {
	if ext, ok := extensions[f]; ok {
		return ext
	}
	return "bin"
}

// ParseFormat accepts either a MIME type or a file extension ("mp3", "ogg", ...).
func ParseFormat(s string) (Format, error) {
	if _, ok := extensions[Format(s)]; ok {
		return Format(s), nil
	}
	for f, ext := range extensions {
		if ext == s {
			return f, nil
		}
	}
	return "", ErrUnsupportedFileFormat
}

var (
	ErrUnsupportedFileFormat = errors.New("unsupported file format")
	ErrUnprocessableContent  = errors.New("unprocessable content")
	ErrNoAudioStream         = errors.New("no audio stream returned")
	ErrVoiceRequired         = errors.New("voice id is required")
)

// AudioStream is synthesized audio that has not been read yet.
// The consumer owns Body and must close it.
type AudioStream struct {
	Format Format
	Body   io.ReadCloser
}

type AudioFile struct {
	Format Format `json:"mime"`
	Data   []byte `json:"data"`
}

// ReadAll drains the stream into memory and closes it.
func ReadAll(s *AudioStream) (*AudioFile, error) {
	if s == nil || s.Body == nil {
		return nil, ErrNoAudioStream
	}
	defer s.Body.Close()

	data, err := io.ReadAll(s.Body)
	if err != nil {
		return nil, err
	}

	return &AudioFile{
		Format: s.Format,
		Data:   data,
	}, nil
}

type Config struct {
	Language string
	Model    string
	Engine   string

	SpeakingRate float64
	Pitch        float64
	SampleRate   int

	Format Format

	VoiceID         string
	Stability       float64
	SimilarityBoost float64
	Style           int
	UseSpeakerBoost bool
	Seed            int
}

type Model interface {
	GenerateSpeech(ctx context.Context, text string) (*AudioStream, error)
}

type Voice struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Language string   `json:"language,omitempty"`
	Gender   string   `json:"gender,omitempty"`
	Engines  []string `json:"engines,omitempty"`
}

// VoiceLister is implemented by clients that can enumerate their voices.
// An empty language lists every voice.
type VoiceLister interface {
	Voices(ctx context.Context, language string) ([]Voice, error)
}
