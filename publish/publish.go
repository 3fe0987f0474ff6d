// Package publish turns a script into a stored audio object and a
// time-limited download link.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lemon-mint/vorleser/internal/randpool"
	"github.com/lemon-mint/vorleser/provider"
	"github.com/lemon-mint/vorleser/storage"
	"github.com/lemon-mint/vorleser/tts"
	"github.com/rs/zerolog"
)

const (
	DefaultVoice     = "Joanna"
	DefaultEngine    = "neural"
	DefaultKeyPrefix = "polly-audio"
	DefaultURLExpiry = 3600 * time.Second
)

type Options struct {
	// Voice is used when Publish is called with an empty voice.
	Voice string
	// Engine is passed to the speech client as the model name.
	Engine string
	Format tts.Format
	// Language is an optional language code for bilingual voices.
	Language string

	KeyPrefix string
	URLExpiry time.Duration

	// TempDir holds the audio between synthesis and upload; empty means os.TempDir().
	TempDir string

	// DeleteOnSignFailure removes the uploaded object when no URL can be issued.
	// When false the object is left for the bucket's lifecycle rules.
	DeleteOnSignFailure bool

	Logger *zerolog.Logger
}

func (o *Options) withDefaults() Options {
	opts := Options{}
	if o != nil {
		opts = *o
	}
	if opts.Voice == "" {
		opts.Voice = DefaultVoice
	}
	if opts.Engine == "" {
		opts.Engine = DefaultEngine
	}
	if opts.Format == "" {
		opts.Format = tts.FormatMP3
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultKeyPrefix
	}
	if opts.URLExpiry <= 0 {
		opts.URLExpiry = DefaultURLExpiry
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	return opts
}

type Result struct {
	URL       string     `json:"url"`
	Bucket    string     `json:"bucket"`
	Key       string     `json:"key"`
	Voice     string     `json:"voice"`
	Format    tts.Format `json:"format"`
	Size      int64      `json:"size"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Publisher synthesizes speech, uploads it and signs a download URL.
// It holds no per-call state and is safe for concurrent use.
type Publisher struct {
	speech provider.TTSClient
	bucket storage.Bucket
	opts   Options
}

func New(speech provider.TTSClient, bucket storage.Bucket, opts *Options) *Publisher {
	return &Publisher{
		speech: speech,
		bucket: bucket,
		opts:   opts.withDefaults(),
	}
}

// Publish converts script to audio with the given voice (Options.Voice when
// empty) and returns a presigned URL for the stored object. Every failure is
// an *Error.
func (p *Publisher) Publish(ctx context.Context, script string, voice string) (*Result, error) {
	if voice == "" {
		voice = p.opts.Voice
	}

	log := p.opts.Logger.With().
		Str("request_id", uuid.NewString()).
		Str("voice", voice).
		Logger()

	model, err := p.speech.NewTTS(p.opts.Engine, &tts.Config{
		VoiceID:  voice,
		Engine:   p.opts.Engine,
		Language: p.opts.Language,
		Format:   p.opts.Format,
	})
	if err != nil {
		return nil, p.fail(&log, KindSynthesis, err)
	}

	stream, err := model.GenerateSpeech(ctx, script)
	switch {
	case errors.Is(err, tts.ErrNoAudioStream):
		return nil, p.fail(&log, KindEmptyAudio, err)
	case err != nil:
		return nil, p.fail(&log, KindSynthesis, err)
	case stream == nil || stream.Body == nil:
		return nil, p.fail(&log, KindEmptyAudio, nil)
	}

	format := stream.Format
	if format == "" {
		format = p.opts.Format
	}
	key := p.opts.KeyPrefix + "/" + randpool.Hex(16) + "." + format.Extension()
	log = log.With().Str("key", key).Logger()

	size, perr := p.store(ctx, &log, stream, key, format)
	if perr != nil {
		return nil, p.report(&log, perr)
	}

	issued := time.Now()
	url, err := p.bucket.PresignGet(ctx, key, p.opts.URLExpiry)
	if err != nil {
		if p.opts.DeleteOnSignFailure {
			if derr := p.bucket.Delete(ctx, key); derr != nil {
				log.Warn().Err(derr).Msg("orphaned object could not be deleted")
			}
		}
		return nil, p.fail(&log, KindSign, err)
	}

	log.Info().Int64("size", size).Msg("speech published")

	return &Result{
		URL:       url,
		Bucket:    p.bucket.Name(),
		Key:       key,
		Voice:     voice,
		Format:    format,
		Size:      size,
		ExpiresAt: issued.Add(p.opts.URLExpiry),
	}, nil
}

// store buffers the stream to a temp file and uploads it. The stream is
// closed and the temp file removed before store returns.
func (p *Publisher) store(ctx context.Context, log *zerolog.Logger, stream *tts.AudioStream, key string, format tts.Format) (int64, *Error) {
	defer stream.Body.Close()

	f, err := os.CreateTemp(p.opts.TempDir, "vorleser-*."+format.Extension())
	if err != nil {
		return 0, &Error{Kind: KindBuffer, Err: err}
	}
	defer os.Remove(f.Name())
	defer f.Close()

	size, err := io.Copy(f, stream.Body)
	if err != nil {
		return 0, &Error{Kind: KindBuffer, Err: err}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, &Error{Kind: KindBuffer, Err: err}
	}

	log.Debug().Str("path", f.Name()).Int64("size", size).Msg("audio buffered")

	if err := p.bucket.Upload(ctx, key, f, string(format)); err != nil {
		return 0, &Error{Kind: KindUpload, Err: err}
	}

	return size, nil
}

func (p *Publisher) fail(log *zerolog.Logger, kind Kind, err error) error {
	return p.report(log, &Error{Kind: kind, Err: err})
}

func (p *Publisher) report(log *zerolog.Logger, pe *Error) error {
	log.Error().Err(pe.Err).Str("kind", pe.Kind.String()).Msg("publish failed")
	return pe
}

// Message renders the outcome of Publish as a single string: the URL on
// success, the error text otherwise.
func Message(res *Result, err error) string {
	if err != nil {
		return err.Error()
	}
	if res == nil {
		return (&Error{Kind: KindEmptyAudio}).Error()
	}
	return res.URL
}

func (r *Result) String() string {
	return fmt.Sprintf("%s (s3://%s/%s, expires %s)", r.URL, r.Bucket, r.Key, r.ExpiresAt.Format(time.RFC3339))
}
