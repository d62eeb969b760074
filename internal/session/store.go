package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// The store keeps the token and the profile under two separate entries,
// written together by convention but not atomically. Readers must treat
// a half-written pair as logged out.
const (
	tokenFile = "token"
	userFile  = "user.json"
)

// Store is the durable session store. It survives process restarts and
// is the single source of truth for auth state; every other component
// only reads and writes through it.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Get returns the persisted session. It never errors for "not found":
// ok is false when the session is absent, and also when only one of the
// two entries exists or the profile blob does not parse. A partial
// session never counts as logged in.
func (s *Store) Get() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		return Session{}, false
	}
	tok := strings.TrimSpace(string(token))
	if tok == "" {
		return Session{}, false
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, userFile))
	if err != nil {
		return Session{}, false
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Session{}, false
	}
	return Session{Token: tok, Profile: p}, true
}

// Token returns the persisted token alone, without requiring a valid
// profile. The gateway attaches it even when the profile half of the
// session is damaged; the backend decides whether it still works.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(token))
}

// Set persists the session. The profile is written before the token so
// that a crash in between leaves a token-less pair, which readers treat
// as logged out. Last write wins between concurrent callers.
func (s *Store) Set(sess Session) error {
	raw, err := json.Marshal(sess.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(filepath.Join(s.dir, userFile), raw, 0o600); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(sess.Token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Clear removes both entries. The token goes first for the same
// fail-closed reason Set writes it last. Missing entries are not errors.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}
