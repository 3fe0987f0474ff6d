package vorleser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lemon-mint/vorleser/pconf"
	"github.com/lemon-mint/vorleser/provider"
)

var ErrProviderNotFound = errors.New("provider not found")

var (
	ttsProvidersMu sync.RWMutex
	ttsProviders   = make(map[string]provider.TTSProvider)

	storageProvidersMu sync.RWMutex
	storageProviders   = make(map[string]provider.StorageProvider)
)

// TTSProviders returns the names of the registered tts providers.
func TTSProviders() []string {
	ttsProvidersMu.RLock()
	defer ttsProvidersMu.RUnlock()
	list := make([]string, 0, len(ttsProviders))
	for name := range ttsProviders {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// RegisterTTSProvider registers a tts provider.
func RegisterTTSProvider(name string, p provider.TTSProvider) {
	ttsProvidersMu.Lock()
	defer ttsProvidersMu.Unlock()
	ttsProviders[name] = p
}

// NewTTSClient creates a client of the named tts provider.
func NewTTSClient(ctx context.Context, name string, configs ...pconf.Config) (provider.TTSClient, error) {
	ttsProvidersMu.RLock()
	p, ok := ttsProviders[name]
	ttsProvidersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tts %q: %w", name, ErrProviderNotFound)
	}
	return p.NewTTSClient(ctx, configs...)
}

// StorageProviders returns the names of the registered storage providers.
func StorageProviders() []string {
	storageProvidersMu.RLock()
	defer storageProvidersMu.RUnlock()
	list := make([]string, 0, len(storageProviders))
	for name := range storageProviders {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// RegisterStorageProvider registers a storage provider.
func RegisterStorageProvider(name string, p provider.StorageProvider) {
	storageProvidersMu.Lock()
	defer storageProvidersMu.Unlock()
	storageProviders[name] = p
}

// NewStorageClient creates a client of the named storage provider.
func NewStorageClient(ctx context.Context, name string, configs ...pconf.Config) (provider.StorageClient, error) {
	storageProvidersMu.RLock()
	p, ok := storageProviders[name]
	storageProvidersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage %q: %w", name, ErrProviderNotFound)
	}
	return p.NewStorageClient(ctx, configs...)
}
