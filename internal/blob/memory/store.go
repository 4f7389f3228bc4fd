// Package memory is the in-process blob store backing the tests.
package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"annotation-service/internal/blob"
	apperrors "annotation-service/pkg/errors"
)

const errBlobNotFound = "blob not found"

type entry struct {
	data        []byte
	contentType string
}

type Store struct {
	mu    sync.RWMutex
	blobs map[string]entry
}

var _ blob.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{blobs: make(map[string]entry)}
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, apperrors.Storage("failed to read blob content", err)
	}

	s.mu.Lock()
	s.blobs[key] = entry{data: data, contentType: contentType}
	s.mu.Unlock()

	return int64(len(data)), nil
}

func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, *blob.Info, error) {
	s.mu.RLock()
	e, ok := s.blobs[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, apperrors.NotFound(errBlobNotFound)
	}

	info := &blob.Info{ContentType: e.contentType, Size: int64(len(e.data))}
	return io.NopCloser(bytes.NewReader(e.data)), info, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) UploadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "memory://upload/" + key, nil
}

// Contains reports whether a key currently holds content.
func (s *Store) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[key]
	return ok
}

// Len reports the number of stored blobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
