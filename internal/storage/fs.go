package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FSClient stores objects as files below a root directory.
// Keys use forward slashes and map onto relative paths.
type FSClient struct {
	root string
}

// NewFSClient constructs a filesystem backend rooted at dir.
func NewFSClient(dir string) (*FSClient, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage directory is required")
	}
	return &FSClient{root: filepath.Clean(dir)}, nil
}

// EnsureBucket creates the root directory if it is missing.
func (f *FSClient) EnsureBucket(ctx context.Context) error {
	return os.MkdirAll(f.root, 0o755)
}

// Put writes the object to a temporary file and renames it into place, so a
// reader never observes a partially written document.
func (f *FSClient) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	dst, err := f.path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, dst)
}

// Get opens the file backing key.
func (f *FSClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return file, nil
}

// Delete removes the file backing key.
func (f *FSClient) Delete(ctx context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return err
	}
	return nil
}

// List walks the root directory and returns keys starting with prefix.
// Hidden files, including in-flight temporary files, are skipped.
func (f *FSClient) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && p != f.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Bucket returns the root directory.
func (f *FSClient) Bucket() string {
	return f.root
}

func (f *FSClient) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, `\`) {
		return "", errors.New("invalid object key")
	}
	return filepath.Join(f.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
