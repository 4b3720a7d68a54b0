package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
)

// ErrObjectNotFound is returned by backends when a key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage is implemented by each document backend.
type ObjectStorage interface {
	// EnsureBucket prepares the bucket, directory or table holding objects.
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get returns ErrObjectNotFound when the key does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete returns ErrObjectNotFound when the key does not exist.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Bucket() string
}

// Storage fronts a backend, giving every error the bucket and key it concerns
// and listing keys in a deterministic order.
type Storage struct {
	backend ObjectStorage
}

func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

func (s *Storage) EnsureBucket(ctx context.Context) error {
	if err := s.backend.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("prepare %s: %w", s.backend.Bucket(), err)
	}
	return nil
}

func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return s.wrap("put", key, s.backend.Put(ctx, key, r, size, contentType))
}

func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	body, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, s.wrap("get", key, err)
	}
	return body, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.wrap("delete", key, s.backend.Delete(ctx, key))
}

// List returns the keys under prefix in lexical order, so the same bucket
// contents always enumerate the same way.
func (s *Storage) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.backend.List(ctx, prefix)
	if err != nil {
		return nil, s.wrap("list", prefix+"*", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}

func (s *Storage) wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s %s/%s: %w", op, s.backend.Bucket(), key, err)
}
