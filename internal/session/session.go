// Package session holds the bearer token and user profile that every
// backend call is made with.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/unclebandit/campaign-admin/internal/model"
)

// Store is the token holder shared by the API client and its callers.
type Store interface {
	Token() string
	User() *model.User
	Save(token string, user *model.User) error
	Clear() error
}

// MemoryStore keeps the session in process memory only.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	user  *model.User
}

func NewMemoryStore(token string, user *model.User) *MemoryStore {
	return &MemoryStore{token: token, user: user}
}

func (s *MemoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryStore) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *MemoryStore) Save(token string, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return nil
}

// fileData mirrors the two local storage keys of the web client.
type fileData struct {
	Token string      `json:"token"`
	User  *model.User `json:"user,omitempty"`
}

// FileStore persists the session as a small JSON file, for the CLI.
type FileStore struct {
	mu   sync.Mutex
	path string
	data fileData
}

// OpenFileStore loads path if it exists. A missing file is an empty session.
func OpenFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if err := json.Unmarshal(raw, &fs.data); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return fs, nil
}

func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Token
}

func (s *FileStore) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.User
}

func (s *FileStore) Save(token string, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = fileData{Token: token, User: user}
	return s.flush()
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = fileData{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (s *FileStore) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
)
