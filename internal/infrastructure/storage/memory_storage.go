package storage

import (
	"context"
	"net/url"
	"sync"
	"time"

	chatterapp "github.com/erp/procurement/internal/application/chatter"
)

var _ chatterapp.ObjectStorage = (*MemoryObjectStorage)(nil)

// MemoryObjectStorage is used when object storage is disabled and in tests.
// Presigned URLs point at BaseURL and an upload is recorded as soon as its
// URL is issued, so the attachment flow works end to end without S3.
type MemoryObjectStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]string
	now     func() time.Time
}

// NewMemoryObjectStorage creates an in-memory object store
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:9000/attachments"
	}
	return &MemoryObjectStorage{
		BaseURL: baseURL,
		objects: make(map[string]string),
		now:     time.Now,
	}
}

func (s *MemoryObjectStorage) presign(op, storageKey string, expiresIn time.Duration) (string, time.Time) {
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	expiresAt := s.now().Add(expiresIn)
	q := url.Values{}
	q.Set("op", op)
	q.Set("expires", expiresAt.UTC().Format(time.RFC3339))
	return s.BaseURL + "/" + storageKey + "?" + q.Encode(), expiresAt
}

// GenerateUploadURL issues a fake PUT URL and records the object
func (s *MemoryObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	s.mu.Lock()
	s.objects[storageKey] = contentType
	s.mu.Unlock()

	u, exp := s.presign("put", storageKey, expiresIn)
	return u, exp, nil
}

// GenerateDownloadURL issues a fake GET URL
func (s *MemoryObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	u, exp := s.presign("get", storageKey, expiresIn)
	return u, exp, nil
}

// DeleteObject forgets the object
func (s *MemoryObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errEmptyKey
	}
	s.mu.Lock()
	delete(s.objects, storageKey)
	s.mu.Unlock()
	return nil
}

// ObjectExists reports whether an upload URL was issued for the key
func (s *MemoryObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errEmptyKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[storageKey]
	return ok, nil
}
