package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Ensure MemoryObjectStore implements ObjectStore
var _ ObjectStore = (*MemoryObjectStore)(nil)

// MemoryObjectStore keeps objects in a map. It backs tests and local
// development when no S3-compatible backend is running.
type MemoryObjectStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

// NewMemoryObjectStore creates an empty in-memory store
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{
		objects: make(map[string][]byte),
		baseURL: "https://storage.invalid/product-images",
	}
}

// Upload stores data under key
func (m *MemoryObjectStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[key] = buf
	return nil
}

// Exists checks whether an object was uploaded
func (m *MemoryObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("storage key is required")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

// Delete removes an object
func (m *MemoryObjectStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// PublicURL returns a stable fake URL for the object
func (m *MemoryObjectStore) PublicURL(key string) string {
	return m.baseURL + "/" + key
}

// PresignDownload returns the public URL; expiry is not modeled in memory
func (m *MemoryObjectStore) PresignDownload(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[key]; !ok {
		return "", errors.New("object not found")
	}
	return m.PublicURL(key), nil
}
