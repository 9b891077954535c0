// Package auth persists the authentication state of the CLI: the current
// token pair, the GitHub access token and remembered usernames. The file
// on disk is the single source of truth; the in-memory copy is a cache.
package auth

import (
	"fmt"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/docforge/docforge/internal/filesystem"
	"github.com/docforge/docforge/internal/models"
)

const credentialsFileName = "credentials.yaml"

// credentialsFile is the on-disk shape of the store.
type credentialsFile struct {
	Session     *models.AuthSession `yaml:"session,omitempty"`
	GitHubToken string              `yaml:"github_token,omitempty"`
	Usernames   map[string]string   `yaml:"usernames,omitempty"`
}

// Observer is notified whenever the session changes. A nil session means
// the user was logged out (explicitly or by a failed token refresh).
type Observer func(session *models.AuthSession)

// Store holds the persisted credentials. It satisfies the session
// contract of the API client, which is the only writer of token pairs.
type Store struct {
	fs   filesystem.FileSystem
	path string

	mu        sync.Mutex
	state     credentialsFile
	observers []Observer
}

// NewStore loads (or initializes) the credentials file under configDir.
func NewStore(fs filesystem.FileSystem, configDir string) (*Store, error) {
	s := &Store{
		fs:   fs,
		path: filepath.Join(configDir, credentialsFileName),
	}

	if !fs.Exists(s.path) {
		return s, nil
	}

	data, err := fs.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	return s, nil
}

// Subscribe registers an observer for session changes.
func (s *Store) Subscribe(observer Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// Current returns a copy of the stored session, or nil when logged out.
func (s *Store) Current() *models.AuthSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Session == nil {
		return nil
	}
	copied := *s.state.Session
	return &copied
}

// Set replaces the session and persists it.
func (s *Store) Set(session *models.AuthSession) error {
	s.mu.Lock()
	s.state.Session = session
	err := s.persist()
	observers := s.observers
	s.mu.Unlock()

	if err != nil {
		return err
	}
	notify(observers, session)
	return nil
}

// Clear destroys the session and the GitHub token together; a dead
// session must not leave a usable GitHub token behind. Remembered
// usernames survive, they are a login convenience, not a credential.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.state.Session = nil
	s.state.GitHubToken = ""
	err := s.persist()
	observers := s.observers
	s.mu.Unlock()

	if err != nil {
		return err
	}
	notify(observers, nil)
	return nil
}

// GitHubToken returns the stored GitHub access token, if any.
func (s *Store) GitHubToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GitHubToken
}

// SetGitHubToken persists the GitHub access token.
func (s *Store) SetGitHubToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.GitHubToken = token
	return s.persist()
}

// RememberUsername records the username that belongs to an email address
// so the login form can be prefilled next time.
func (s *Store) RememberUsername(email, username string) error {
	if email == "" || username == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Usernames == nil {
		s.state.Usernames = make(map[string]string)
	}
	s.state.Usernames[email] = username
	return s.persist()
}

// UsernameFor returns the remembered username for an email address.
func (s *Store) UsernameFor(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Usernames[email]
}

// persist writes the state to disk. Callers hold the lock.
func (s *Store) persist() error {
	data, err := yaml.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := s.fs.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

func notify(observers []Observer, session *models.AuthSession) {
	for _, observer := range observers {
		observer(session)
	}
}
