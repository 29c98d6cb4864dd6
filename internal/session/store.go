package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v2"
)

// TokenKey is the fixed key the bearer token is persisted under
const TokenKey = "token"

//go:generate mockgen -source=store.go -destination=mock_store.go -package=session

// TokenStore persists the bearer token of the signed-in user.
// An absent token reads as "".
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// MemoryTokenStore keeps the token for the life of the process
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStore creates an empty in-process store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryTokenStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) ClearToken(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// FileTokenStore keeps the token in a small YAML document so it survives restarts
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

type tokenFile struct {
	Token string `yaml:"token"`
}

// NewFileTokenStore creates a store backed by path. The file is created on first SetToken.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Token(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("token file %s: %w", s.path, err)
	}

	var doc tokenFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("token file %s: %w", s.path, err)
	}
	return doc.Token, nil
}

func (s *FileTokenStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(tokenFile{Token: token})
	if err != nil {
		return fmt.Errorf("token file %s: %w", s.path, err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("token file %s: %w", s.path, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("token file %s: %w", s.path, err)
	}
	return nil
}

func (s *FileTokenStore) ClearToken(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("token file %s: %w", s.path, err)
	}
	return nil
}
