package storage

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MemoryObjectStore keeps objects in process memory. Links point at the API
// route that serves them.
type MemoryObjectStore struct {
	mu      sync.RWMutex
	objects map[string]Object
	baseURL string
	now     func() time.Time
}

// NewMemoryObjectStore creates an empty store linking under baseURL
func NewMemoryObjectStore(baseURL string) *MemoryObjectStore {
	return &MemoryObjectStore{
		objects: make(map[string]Object),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
	}
}

func (m *MemoryObjectStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	if err := requireKey(key); err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{Key: key, ContentType: contentType, Data: buf}
	return nil
}

func (m *MemoryObjectStore) Get(_ context.Context, key string) (*Object, error) {
	if err := requireKey(key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return &obj, nil
}

func (m *MemoryObjectStore) Exists(_ context.Context, key string) (bool, error) {
	if err := requireKey(key); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

// DownloadURL links to the download route. The expiry is advisory.
func (m *MemoryObjectStore) DownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if err := requireKey(key); err != nil {
		return "", time.Time{}, err
	}
	expiresAt := m.now().Add(expiresIn)
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return m.baseURL + "/" + strings.Join(segments, "/"), expiresAt, nil
}

// Len returns the number of stored objects
func (m *MemoryObjectStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
