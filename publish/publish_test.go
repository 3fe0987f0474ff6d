package publish_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lemon-mint/vorleser/publish"
	"github.com/lemon-mint/vorleser/storage"
	"github.com/lemon-mint/vorleser/tts"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keyPattern = regexp.MustCompile(`^polly-audio/[0-9a-f]{32}\.mp3$`)

// =================== Fakes ===================

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

type fakeSpeech struct {
	mu sync.Mutex

	audio   string
	err     error
	noAudio bool
	readErr error

	models []string
	cfgs   []tts.Config
	texts  []string
	bodies []*trackedBody
}

func (c *fakeSpeech) NewTTS(model string, config *tts.Config) (tts.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = append(c.models, model)
	c.cfgs = append(c.cfgs, *config)
	return &fakeModel{client: c}, nil
}

func (*fakeSpeech) Close() error { return nil }

type fakeModel struct {
	client *fakeSpeech
}

func (m *fakeModel) GenerateSpeech(ctx context.Context, text string) (*tts.AudioStream, error) {
	c := m.client
	c.mu.Lock()
	defer c.mu.Unlock()

	c.texts = append(c.texts, text)
	if c.err != nil {
		return nil, c.err
	}
	if c.noAudio {
		return &tts.AudioStream{Format: tts.FormatMP3}, nil
	}

	var r io.Reader = strings.NewReader(c.audio)
	if c.readErr != nil {
		r = io.MultiReader(strings.NewReader("ID3"), errReader{c.readErr})
	}
	body := &trackedBody{Reader: r}
	c.bodies = append(c.bodies, body)
	return &tts.AudioStream{Format: tts.FormatMP3, Body: body}, nil
}

type fakeBucket struct {
	mu sync.Mutex

	uploadErr  error
	presignErr error

	objects      map[string][]byte
	contentTypes map[string]string
	tempPaths    []string
	uploads      int
	deletes      []string
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

var _ storage.Bucket = (*fakeBucket)(nil)

func (b *fakeBucket) Name() string { return "test-bucket" }

func (b *fakeBucket) Upload(_ context.Context, key string, body io.Reader, contentType string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.uploads++
	if f, ok := body.(*os.File); ok {
		b.tempPaths = append(b.tempPaths, f.Name())
	}
	if b.uploadErr != nil {
		return b.uploadErr
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.objects[key] = data
	b.contentTypes[key] = contentType
	return nil
}

func (b *fakeBucket) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	if b.presignErr != nil {
		return "", b.presignErr
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?X-Amz-Expires=%d", key, int(ttl.Seconds())), nil
}

func (b *fakeBucket) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, key)
	delete(b.objects, key)
	return nil
}

func newPublisher(t *testing.T, speech *fakeSpeech, bucket *fakeBucket, opts publish.Options) (*publish.Publisher, string) {
	t.Helper()
	dir := t.TempDir()
	opts.TempDir = dir
	return publish.New(speech, bucket, &opts), dir
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files left behind")
}

// =================== Tests ===================

func TestPublish(t *testing.T) {
	speech := &fakeSpeech{audio: "ID3 hello world"}
	bucket := newFakeBucket()
	p, dir := newPublisher(t, speech, bucket, publish.Options{})

	before := time.Now()
	res, err := p.Publish(context.Background(), "Hello world", "Joanna")
	require.NoError(t, err)

	assert.Regexp(t, keyPattern, res.Key)
	assert.Equal(t, "test-bucket", res.Bucket)
	assert.Equal(t, "Joanna", res.Voice)
	assert.Equal(t, tts.FormatMP3, res.Format)
	assert.Equal(t, int64(len("ID3 hello world")), res.Size)
	assert.WithinDuration(t, before.Add(time.Hour), res.ExpiresAt, 5*time.Second)

	u, err := url.Parse(res.URL)
	require.NoError(t, err)
	assert.Equal(t, "/"+res.Key, u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.Equal(t, res.URL, publish.Message(res, nil))

	assert.Equal(t, "ID3 hello world", string(bucket.objects[res.Key]))
	assert.Equal(t, "audio/mpeg", bucket.contentTypes[res.Key])

	require.Len(t, speech.cfgs, 1)
	assert.Equal(t, "neural", speech.models[0])
	assert.Equal(t, "Joanna", speech.cfgs[0].VoiceID)
	assert.Equal(t, tts.FormatMP3, speech.cfgs[0].Format)
	assert.Equal(t, []string{"Hello world"}, speech.texts)

	require.Len(t, speech.bodies, 1)
	assert.True(t, speech.bodies[0].closed)

	require.Len(t, bucket.tempPaths, 1)
	assert.True(t, strings.HasSuffix(bucket.tempPaths[0], ".mp3"))
	assertEmptyDir(t, dir)
}

func TestPublishDefaultVoice(t *testing.T) {
	speech := &fakeSpeech{audio: "ID3"}
	p, _ := newPublisher(t, speech, newFakeBucket(), publish.Options{})

	res, err := p.Publish(context.Background(), "Hi", "")
	require.NoError(t, err)

	assert.Equal(t, publish.DefaultVoice, res.Voice)
	assert.Equal(t, publish.DefaultVoice, speech.cfgs[0].VoiceID)
}

func TestPublishCustomOptions(t *testing.T) {
	speech := &fakeSpeech{audio: "ID3"}
	p, _ := newPublisher(t, speech, newFakeBucket(), publish.Options{
		Voice:     "Vicki",
		Engine:    "standard",
		Language:  "de-DE",
		KeyPrefix: "tts/de",
		URLExpiry: 10 * time.Minute,
	})

	res, err := p.Publish(context.Background(), "Guten Tag", "")
	require.NoError(t, err)

	assert.Regexp(t, `^tts/de/[0-9a-f]{32}\.mp3$`, res.Key)
	assert.Contains(t, res.URL, "X-Amz-Expires=600")
	assert.Equal(t, "standard", speech.models[0])
	assert.Equal(t, "de-DE", speech.cfgs[0].Language)
	assert.Equal(t, "Vicki", speech.cfgs[0].VoiceID)
}

func TestPublishSynthesisFailure(t *testing.T) {
	speech := &fakeSpeech{err: errors.New("InvalidParameterValueException: voice Nobody not found")}
	bucket := newFakeBucket()
	p, dir := newPublisher(t, speech, bucket, publish.Options{})

	res, err := p.Publish(context.Background(), "Hello", "Nobody")
	require.Error(t, err)
	assert.Nil(t, res)

	assert.True(t, strings.HasPrefix(err.Error(), "Error generating speech:"))
	assert.Contains(t, err.Error(), "voice Nobody not found")
	assert.Equal(t, publish.KindSynthesis, publish.KindOf(err))
	assert.ErrorIs(t, err, speech.err)

	assert.Zero(t, bucket.uploads)
	assertEmptyDir(t, dir)
}

func TestPublishNoAudioStream(t *testing.T) {
	for _, tc := range []struct {
		name   string
		speech *fakeSpeech
	}{
		{"nil body", &fakeSpeech{noAudio: true}},
		{"sentinel error", &fakeSpeech{err: fmt.Errorf("polly: %w", tts.ErrNoAudioStream)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bucket := newFakeBucket()
			p, dir := newPublisher(t, tc.speech, bucket, publish.Options{})

			_, err := p.Publish(context.Background(), "Hello", "Joanna")
			require.Error(t, err)

			assert.Equal(t, "Error: No audio stream returned.", err.Error())
			assert.Equal(t, publish.KindEmptyAudio, publish.KindOf(err))
			assert.Zero(t, bucket.uploads)
			assertEmptyDir(t, dir)
		})
	}
}

func TestPublishBufferFailure(t *testing.T) {
	speech := &fakeSpeech{readErr: errors.New("connection reset by peer")}
	bucket := newFakeBucket()
	p, dir := newPublisher(t, speech, bucket, publish.Options{})

	_, err := p.Publish(context.Background(), "Hello", "Joanna")
	require.Error(t, err)

	assert.Equal(t, publish.KindBuffer, publish.KindOf(err))
	assert.True(t, strings.HasPrefix(err.Error(), "Error writing audio file:"))
	assert.Zero(t, bucket.uploads)
	assert.True(t, speech.bodies[0].closed)
	assertEmptyDir(t, dir)
}

func TestPublishUploadFailure(t *testing.T) {
	speech := &fakeSpeech{audio: "ID3"}
	bucket := newFakeBucket()
	bucket.uploadErr = errors.New("AccessDenied: Access Denied")
	p, dir := newPublisher(t, speech, bucket, publish.Options{})

	_, err := p.Publish(context.Background(), "Hello", "Joanna")
	require.Error(t, err)

	assert.True(t, strings.HasPrefix(err.Error(), "Error uploading audio file:"))
	assert.Contains(t, err.Error(), "AccessDenied")
	assert.Equal(t, publish.KindUpload, publish.KindOf(err))

	require.Len(t, bucket.tempPaths, 1)
	_, statErr := os.Stat(bucket.tempPaths[0])
	assert.True(t, os.IsNotExist(statErr), "temp file %s still exists", bucket.tempPaths[0])
	assert.True(t, speech.bodies[0].closed)
	assertEmptyDir(t, dir)
}

func TestPublishSignFailureLeavesObject(t *testing.T) {
	speech := &fakeSpeech{audio: "ID3"}
	bucket := newFakeBucket()
	bucket.presignErr = errors.New("credentials expired")
	p, dir := newPublisher(t, speech, bucket, publish.Options{})

	_, err := p.Publish(context.Background(), "Hello", "Joanna")
	require.Error(t, err)

	assert.True(t, strings.HasPrefix(err.Error(), "Error generating URL:"))
	assert.Equal(t, publish.KindSign, publish.KindOf(err))

	// the uploaded object is not rolled back
	require.Len(t, bucket.objects, 1)
	for key := range bucket.objects {
		assert.Regexp(t, keyPattern, key)
	}
	assert.Empty(t, bucket.deletes)
	assertEmptyDir(t, dir)
}

func TestPublishSignFailureDeletesWhenConfigured(t *testing.T) {
	speech := &fakeSpeech{audio: "ID3"}
	bucket := newFakeBucket()
	bucket.presignErr = errors.New("credentials expired")
	p, _ := newPublisher(t, speech, bucket, publish.Options{DeleteOnSignFailure: true})

	_, err := p.Publish(context.Background(), "Hello", "Joanna")
	require.Error(t, err)

	assert.Equal(t, publish.KindSign, publish.KindOf(err))
	assert.Len(t, bucket.deletes, 1)
	assert.Empty(t, bucket.objects)
}

func TestPublishUniqueKeys(t *testing.T) {
	speech := &fakeSpeech{audio: "ID3"}
	bucket := newFakeBucket()
	p, _ := newPublisher(t, speech, bucket, publish.Options{})

	first, err := p.Publish(context.Background(), "Hello world", "Joanna")
	require.NoError(t, err)
	second, err := p.Publish(context.Background(), "Hello world", "Joanna")
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
	assert.NotEqual(t, first.URL, second.URL)
	assert.Len(t, bucket.objects, 2)
}

func TestPublishConcurrent(t *testing.T) {
	speech := &fakeSpeech{audio: "ID3"}
	bucket := newFakeBucket()
	p, dir := newPublisher(t, speech, bucket, publish.Options{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Publish(context.Background(), "Hello", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, bucket.objects, 16)
	assertEmptyDir(t, dir)
}

func TestPublishLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	speech := &fakeSpeech{audio: "ID3"}
	p, _ := newPublisher(t, speech, newFakeBucket(), publish.Options{Logger: &logger})

	res, err := p.Publish(context.Background(), "Hello", "Joanna")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"speech published"`)
	assert.Contains(t, out, `"key":"`+res.Key+`"`)
	assert.Contains(t, out, `"request_id":"`)
	assert.NotContains(t, out, "Hello", "script text must not be logged")
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "https://example.com/x", publish.Message(&publish.Result{URL: "https://example.com/x"}, nil))
	assert.Equal(t, "Error uploading audio file: boom",
		publish.Message(nil, &publish.Error{Kind: publish.KindUpload, Err: errors.New("boom")}))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, publish.KindUnknown, publish.KindOf(errors.New("other")))
	assert.Equal(t, publish.KindUnknown, publish.KindOf(nil))

	wrapped := fmt.Errorf("job 7: %w", &publish.Error{Kind: publish.KindSign})
	assert.Equal(t, publish.KindSign, publish.KindOf(wrapped))
	assert.Equal(t, "sign", publish.KindSign.String())
}
