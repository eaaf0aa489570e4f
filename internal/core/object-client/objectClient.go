package objectclient

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/markdave123-py/layoutchunker/internal/core"
)

// MemoryStore is an in-process BlobStore. It backs local runs without S3 and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string][]byte
	types   map[string]string
}

func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{
		bucket:  bucket,
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, core.Upstream("memory get", fmt.Errorf("object %q not found", key))
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	m.types[key] = contentType
	return nil
}

func (m *MemoryStore) Move(_ context.Context, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[from]
	if !ok {
		return core.Upstream("memory move", fmt.Errorf("object %q not found", from))
	}
	m.objects[to], m.types[to] = data, m.types[from]
	delete(m.objects, from)
	delete(m.types, from)
	return nil
}

func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *MemoryStore) URI(key string) string {
	return fmt.Sprintf("mem://%s/%s", m.bucket, key)
}

// ContentType reports the content type an object was stored with.
func (m *MemoryStore) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.types[key]
}

// Keys lists stored keys in lexical order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ core.BlobStore = (*MemoryStore)(nil)
