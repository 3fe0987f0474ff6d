package provider

import (
	"context"

	"github.com/lemon-mint/vorleser/pconf"
	"github.com/lemon-mint/vorleser/storage"
	"github.com/lemon-mint/vorleser/tts"
)

type TTSClient interface {
	NewTTS(model string, config *tts.Config) (tts.Model, error)
	Close() error
}

type TTSProvider interface {
	NewTTSClient(ctx context.Context, configs ...pconf.Config) (TTSClient, error)
}

type StorageClient interface {
	Bucket(name string) (storage.Bucket, error)
	Close() error
}

type StorageProvider interface {
	NewStorageClient(ctx context.Context, configs ...pconf.Config) (StorageClient, error)
}
