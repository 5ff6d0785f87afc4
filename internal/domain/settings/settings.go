// Package settings persists the opened-files settings.
//
// The file format follows the file extension: .toml, .yaml or .yml, and
// JSON for anything else. A missing file yields the defaults.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// ErrInvalidValue is returned for a setting value that cannot be parsed
var ErrInvalidValue = errors.New("invalid setting value")

// Settings holds the persisted settings
type Settings struct {
	// KeepMaxOpenFiles caps the opened-files list; 0 keeps every file until
	// it is closed explicitly.
	KeepMaxOpenFiles int `json:"keep_max_open_files" yaml:"keep_max_open_files" toml:"keep_max_open_files"`
}

// Default returns the default settings
func Default() Settings {
	return Settings{KeepMaxOpenFiles: 0}
}

// Format is a settings file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the encoding for a settings file path
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode serializes settings in the given format
func Encode(s Settings, format Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatTOML:
		data, err = toml.Marshal(s)
	case FormatYAML:
		data, err = yaml.Marshal(s)
	default:
		data, err = sonic.ConfigStd.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s settings: %w", format, err)
	}
	return data, nil
}

// Decode parses settings in the given format. Keys missing from data keep
// their default values.
func Decode(data []byte, format Format) (Settings, error) {
	s := Default()
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &s)
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	default:
		err = sonic.Unmarshal(data, &s)
	}
	if err != nil {
		return Default(), fmt.Errorf("failed to decode %s settings: %w", format, err)
	}
	return s, nil
}

// Store holds the current settings and writes them back on change
type Store struct {
	mu      sync.RWMutex
	path    string
	current Settings
	logger  *zap.Logger
}

// NewMemoryStore returns a store that is never written to disk
func NewMemoryStore(initial Settings) *Store {
	return &Store{current: initial, logger: zap.NewNop()}
}

// Open loads settings from path
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		path:    path,
		current: Default(),
		logger:  logger.Named("settings"),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Info("settings file not found, using defaults", zap.String("path", path))
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	loaded, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, err
	}
	s.current = loaded
	s.logger.Info("loaded settings",
		zap.String("path", path),
		zap.Int("keep_max_open_files", loaded.KeepMaxOpenFiles))
	return s, nil
}

// Path returns the backing file, empty for memory stores
func (s *Store) Path() string {
	return s.path
}

// Get returns the current settings
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// MaxOpen returns the max-open-files limit
func (s *Store) MaxOpen() int {
	return s.Get().KeepMaxOpenFiles
}

// SetMaxOpen updates and saves the max-open-files limit
func (s *Store) SetMaxOpen(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.KeepMaxOpenFiles = n
	return s.saveLocked()
}

// SetMaxOpenText parses text typed by the user. Non-integer text is
// rejected and leaves the setting unchanged.
func (s *Store) SetMaxOpenText(text string) error {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return fmt.Errorf("%w: keep_max_open_files %q", ErrInvalidValue, text)
	}
	return s.SetMaxOpen(n)
}

// saveLocked writes the settings atomically (must hold lock)
func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}

	data, err := Encode(s.current, FormatFor(s.path))
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Debug("saved settings", zap.String("path", s.path))
	return nil
}
