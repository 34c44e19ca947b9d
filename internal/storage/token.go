// Package storage keeps the auth token between runs.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// TokenKey is the key the auth token is stored under.
const TokenKey = "conduit_token"

// MemoryTokenStore keeps the token in memory only.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
	ok    bool
}

// NewMemoryTokenStore returns a store holding token, if not empty.
func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token, ok: token != ""}
}

func (s *MemoryTokenStore) Read() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token, s.ok
}

func (s *MemoryTokenStore) Write(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.ok = token, true

	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.ok = "", false

	return nil
}

// errCorrupt marks a token file that is not valid JSON. Writes replace it.
var errCorrupt = errors.New("corrupt token file")

// FileTokenStore is a small per-user JSON file (0600) of keyed values.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

type tokenFile struct {
	Keys map[string]string `json:"keys"`
}

// NewFileTokenStore stores the token in the file at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultTokenPath is the token file under the user config directory.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "user config dir")
	}

	return filepath.Join(dir, "conduit", "session.json"), nil
}

// Read returns the stored token. A missing or unreadable file reads as no
// token.
func (s *FileTokenStore) Read() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tf, err := s.load()
	if err != nil {
		return "", false
	}
	token, ok := tf.Keys[TokenKey]

	return token, ok
}

func (s *FileTokenStore) Write(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tf, err := s.load()
	if err != nil && !errors.Is(err, errCorrupt) {
		return err
	}
	if tf.Keys == nil {
		tf.Keys = map[string]string{}
	}
	tf.Keys[TokenKey] = token

	return s.save(tf)
}

func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tf, err := s.load()
	switch {
	case errors.Is(err, errCorrupt):
	case err != nil:
		return err
	default:
		if _, ok := tf.Keys[TokenKey]; !ok {
			return nil
		}
	}
	delete(tf.Keys, TokenKey)

	return s.save(tf)
}

func (s *FileTokenStore) load() (tokenFile, error) {
	var tf tokenFile
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return tokenFile{}, nil
		}

		return tf, errors.Wrapf(err, "read %s", s.path)
	}
	if err := json.Unmarshal(data, &tf); err != nil {
		return tokenFile{}, errors.Wrapf(errCorrupt, "decode %s: %v", s.path, err)
	}

	return tf, nil
}

func (s *FileTokenStore) save(tf tokenFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "mkdir token dir")
	}
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode token file")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrapf(err, "write %s", tmp)
	}

	return errors.Wrap(os.Rename(tmp, s.path), "replace token file")
}
