package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidKey is returned for keys that would escape the storage root
var ErrInvalidKey = errors.New("invalid storage key")

// Store persists uploaded files and maps them to public URLs
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// LocalStore keeps files on the local disk under dir and serves them from baseURL
type LocalStore struct {
	dir     string
	baseURL string
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore creates a disk store, creating dir when missing
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the storage root
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if key == "" || clean == "/" || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}

// Put writes r under key and returns the public URL
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	dest, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(dest)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.baseURL + "/" + strings.TrimLeft(key, "/"), nil
}

// Delete removes key. Deleting a missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	dest, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// KeyFromURL reverses Put's URL mapping for files this store owns
func (s *LocalStore) KeyFromURL(url string) (string, bool) {
	prefix := s.baseURL + "/"
	if url == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if _, err := s.path(key); err != nil {
		return "", false
	}
	return key, true
}
