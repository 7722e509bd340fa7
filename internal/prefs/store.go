package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mitchellh/go-homedir"
)

const fileName = "preferences.json"

// Preferences is the client-side state that survives between sessions
type Preferences struct {
	PreferredLanguage string `json:"preferred_language,omitempty"`
}

// Store manages preference persistence at ~/.glasspanel/preferences.json
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore creates a store rooted at ~/.glasspanel
func NewStore() (*Store, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewStoreAt(filepath.Join(home, ".glasspanel"))
}

// NewStoreAt creates a store rooted at dir, creating it if needed
func NewStoreAt(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create preferences directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Load reads the stored preferences. A missing file yields zero preferences.
func (s *Store) Load() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Preferences, error) {
	var p Preferences

	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, fmt.Errorf("failed to read preferences file: %w", err)
	}

	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}

	return p, nil
}

// Save persists p, replacing whatever was stored
func (s *Store) Save(p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(p)
}

func (s *Store) save(p Preferences) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	// Write to a temp file and rename so a crash never leaves half a file
	tmpPath := s.Path() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize preferences file: %w", err)
	}

	return nil
}

// PreferredLanguage returns the stored language code, or "" if none
func (s *Store) PreferredLanguage() string {
	p, err := s.Load()
	if err != nil {
		return ""
	}
	return p.PreferredLanguage
}

// SetPreferredLanguage stores code as the language for the next session
func (s *Store) SetPreferredLanguage(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load()
	if err != nil {
		// A corrupt file is replaced rather than blocking the language switch
		p = Preferences{}
	}
	p.PreferredLanguage = code
	return s.save(p)
}

// Path returns the preferences file location
func (s *Store) Path() string {
	return filepath.Join(s.dir, fileName)
}
