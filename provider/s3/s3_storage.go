package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lemon-mint/vorleser"
	"github.com/lemon-mint/vorleser/internal/awsconf"
	"github.com/lemon-mint/vorleser/pconf"
	"github.com/lemon-mint/vorleser/provider"
	"github.com/lemon-mint/vorleser/storage"
)

// MaxPresignExpiry is the longest lifetime SigV4 allows for a presigned URL.
const MaxPresignExpiry = 7 * 24 * time.Hour

var ErrInvalidExpiry = errors.New("presign expiry must be between 1s and 7 days")

// =================== Bucket ===================

var _ storage.Bucket = (*Bucket)(nil)

type Bucket struct {
	name string

	client    *s3.Client
	uploader  *manager.Uploader
	presigner *s3.PresignClient
}

func (b *Bucket) Name() string {
	return b.name
}

// Upload streams body to the bucket. Large bodies are sent as multipart uploads.
func (b *Bucket) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	if key == "" {
		return storage.ErrKeyRequired
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := b.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("s3: upload s3://%s/%s: %w", b.name, key, err)
	}
	return nil
}

func (b *Bucket) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", storage.ErrKeyRequired
	}
	if ttl < time.Second || ttl > MaxPresignExpiry {
		return "", ErrInvalidExpiry
	}

	req, err := b.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("s3: presign s3://%s/%s: %w", b.name, key, err)
	}

	return req.URL, nil
}

func (b *Bucket) Delete(ctx context.Context, key string) error {
	if key == "" {
		return storage.ErrKeyRequired
	}

	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3: delete s3://%s/%s: %w", b.name, key, err)
	}
	return nil
}

// =================== Client ===================

var _ provider.StorageClient = (*Client)(nil)

type Client struct {
	client    *s3.Client
	uploader  *manager.Uploader
	presigner *s3.PresignClient
}

func (c *Client) Bucket(name string) (storage.Bucket, error) {
	if name == "" {
		return nil, storage.ErrBucketRequired
	}

	return &Bucket{
		name:      name,
		client:    c.client,
		uploader:  c.uploader,
		presigner: c.presigner,
	}, nil
}

func (*Client) Close() error {
	return nil
}

// =================== Provider ===================

var _ provider.StorageProvider = Provider

type S3Provider struct{}

func (S3Provider) NewStorageClient(ctx context.Context, configs ...pconf.Config) (provider.StorageClient, error) {
	client_config, err := pconf.Collect(configs...)
	if err != nil {
		return nil, err
	}

	cfg, err := awsconf.Load(ctx, &client_config)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if ep := awsconf.BaseEndpoint(&client_config); ep != nil {
			o.BaseEndpoint = ep
		}
		o.UsePathStyle = client_config.UsePathStyle
	})

	return &Client{
		client:    client,
		uploader:  manager.NewUploader(client),
		presigner: s3.NewPresignClient(client),
	}, nil
}

// ===================== Init =====================

const ProviderName = "s3"

var Provider S3Provider

func init() {
	var exists bool
	for _, n := range vorleser.StorageProviders() {
		if n == ProviderName {
			exists = true
			break
		}
	}
	if !exists {
		vorleser.RegisterStorageProvider(ProviderName, Provider)
	}
}
