package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// FileStore keeps the token in a single file, readable only by the owner.
type FileStore struct{ path string }

func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

func (f *FileStore) Load(ctx context.Context) (string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (f *FileStore) Save(ctx context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path, []byte(token), 0o600)
}

func (f *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

const tokenKey = "yisu_token"

// MemoryStore keeps the token for the life of the process.
type MemoryStore struct{ c *cache.Cache }

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: cache.New(cache.NoExpiration, 10*time.Minute)}
}

func (m *MemoryStore) Load(ctx context.Context) (string, error) {
	if v, ok := m.c.Get(tokenKey); ok {
		return v.(string), nil
	}
	return "", nil
}

func (m *MemoryStore) Save(ctx context.Context, token string) error {
	ttl := cache.NoExpiration
	if exp, ok := expiry(token); ok {
		if ttl = time.Until(exp); ttl <= 0 {
			m.c.Delete(tokenKey)
			return nil
		}
	}
	m.c.Set(tokenKey, token, ttl)
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.c.Delete(tokenKey)
	return nil
}
