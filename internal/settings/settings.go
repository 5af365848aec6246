// Package settings persists the user-facing ring-light parameters in a
// small YAML file and notifies subscribers when it changes.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/1broseidon/ringlight/internal/light"
	"github.com/1broseidon/ringlight/internal/notify"
	"github.com/1broseidon/ringlight/internal/platform"
	"gopkg.in/yaml.v3"
)

// Values are the persisted parameters. They are stored as entered;
// light.Build clamps them before use.
type Values struct {
	Enabled         bool               `json:"enabled" yaml:"enabled"`
	light.Params    `yaml:",inline"`
	SelectedDisplay platform.DisplayID `json:"selected_display" yaml:"selected_display"`
}

// Defaults returns the values used when no file exists.
func Defaults() Values {
	return Values{
		Enabled:         false,
		Params:          light.DefaultParams(),
		SelectedDisplay: platform.AllDisplays,
	}
}

// Configuration clamps the stored parameters.
func (v Values) Configuration() light.Configuration {
	return light.Build(v.Params)
}

// DefaultPath returns ~/.config/ringlight/settings.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "ringlight", "settings.yaml"), nil
}

// Store is the settings file plus an in-memory copy of its last known
// contents. It is safe for concurrent use.
type Store struct {
	path string

	mu     sync.Mutex
	values Values

	subscribers notify.Registry[Values]
}

// Open reads path, falling back to defaults when the file does not exist.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: Defaults()}
	values, err := Read(path)
	if err != nil {
		return nil, err
	}
	s.values = values
	return s, nil
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Values returns the last loaded or saved values.
func (s *Store) Values() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values
}

// Save writes v atomically. Subscribers are not notified of their own
// writes; the watcher sees the file unchanged relative to memory.
func (s *Store) Save(v Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := Write(s.path, v); err != nil {
		return err
	}
	s.values = v
	return nil
}

// Reload re-reads the file and notifies subscribers when the values
// changed. A missing file leaves the in-memory values untouched.
func (s *Store) Reload() (Values, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return s.Values(), nil
	}
	values, err := Read(s.path)
	if err != nil {
		return s.Values(), err
	}

	s.mu.Lock()
	changed := values != s.values
	s.values = values
	s.mu.Unlock()

	if changed {
		s.subscribers.Notify(values)
	}
	return values, nil
}

// Subscribe registers handler for values changed on disk.
func (s *Store) Subscribe(handler func(Values)) notify.Token {
	return s.subscribers.Subscribe(handler)
}

// Unsubscribe removes a subscription.
func (s *Store) Unsubscribe(token notify.Token) {
	s.subscribers.Unsubscribe(token)
}

// Read decodes the settings file at path. Keys absent from the file keep
// their defaults; unknown keys are errors.
func Read(path string) (Values, error) {
	values := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return values, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&values); err != nil && err != io.EOF {
		return Defaults(), fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

// Write stores v at path through a temporary file and rename.
func Write(path string, v Values) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(&v)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}
