package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Config is the full persisted state of the CLI: the OAuth app credentials
// entered once via `config`, the OBS profile directory, and the current
// token triple written by the token exchanger.
type Config struct {
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	ProfilePath  string `json:"profile_path,omitempty"`
	AccessToken  string `json:"token,omitempty"`
	RefreshToken string `json:"refresh,omitempty"`
	ExpiresAt    int64  `json:"expires,omitempty"`
}

// HasClient reports whether the OAuth app credentials have been configured.
func (c *Config) HasClient() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// StoreError wraps a credential store read/write failure. Correct operation
// is impossible without the store, so callers treat it as fatal.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("credential store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store persists Config as a JSON file. Writes are merged into the existing
// state and land on disk via a temp-file rename, so a reader never observes
// a partially written token triple.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by the JSON file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the persisted config. A missing file yields an empty config,
// matching first-run behavior. Environment overrides are applied on top of
// the result only; they never reach the write paths, which merge into the
// raw file contents, so an override can't end up persisted.
func (s *Store) Load() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, &StoreError{Op: "env", Err: err}
	}
	return cfg, nil
}

// load reads the raw file contents, without env overrides.
func (s *Store) load() (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// first run, nothing persisted yet
	case err != nil:
		return nil, &StoreError{Op: "read", Err: err}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return nil, &StoreError{Op: "parse", Err: err}
		}
	}
	return &cfg, nil
}

// SetClient persists the OAuth app credentials and profile directory,
// keeping any stored token triple intact.
func (s *Store) SetClient(clientID, clientSecret, profilePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}
	cfg.ClientID = clientID
	cfg.ClientSecret = clientSecret
	cfg.ProfilePath = profilePath
	return s.save(cfg)
}

// SetTokens replaces the whole token triple at once. The triple is never
// split across writes: either all three fields come from the same token
// response or none do.
func (s *Store) SetTokens(accessToken, refreshToken string, expiresAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}
	cfg.AccessToken = accessToken
	cfg.RefreshToken = refreshToken
	cfg.ExpiresAt = expiresAt
	return s.save(cfg)
}

func (s *Store) save(cfg *Config) error {
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return &StoreError{Op: "marshal", Err: err}
	}
	if err := EnsureParentDir(s.path); err != nil {
		return &StoreError{Op: "mkdir", Err: err}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0600); err != nil {
		return &StoreError{Op: "write", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &StoreError{Op: "rename", Err: err}
	}
	return nil
}

// EnsureParentDir creates the directory containing path if needed.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
