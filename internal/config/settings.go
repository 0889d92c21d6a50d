package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/muurk/rcstore/internal/deviceconfig"
	"github.com/muurk/rcstore/internal/logging"
)

const (
	appName    = "rcstore"
	configFile = "settings.yaml"

	// CurrentVersion is the settings file format version
	CurrentVersion = 1
)

// Mutex for thread-safe file operations
var fileMutex sync.Mutex

// Settings is the host-tool settings file. Command-line flags override
// every value.
type Settings struct {
	Version int          `yaml:"version"`
	Card    CardSettings `yaml:"card"`
	Log     LogSettings  `yaml:"log"`
}

// CardSettings selects the card image the tools operate on
type CardSettings struct {
	Root       string `yaml:"root"`                  // Directory holding the card contents
	Profile    string `yaml:"profile"`               // "main" or "peer"
	CapacityMB uint64 `yaml:"capacity_mb,omitempty"` // Reported card size, 0 = driver default
}

// LogSettings configures the diagnostic logger
type LogSettings struct {
	Level      string `yaml:"level,omitempty"` // Empty = silent
	Encoding   string `yaml:"encoding,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
}

// NewSettings returns settings with default values
func NewSettings() *Settings {
	return &Settings{
		Version: CurrentVersion,
		Card: CardSettings{
			Root:    ".",
			Profile: deviceconfig.KindMain.String(),
		},
	}
}

// Validate checks values that cannot be defaulted
func (s *Settings) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported settings version: %d (expected %d)", s.Version, CurrentVersion)
	}
	if strings.TrimSpace(s.Card.Root) == "" {
		return errors.New("card root cannot be empty")
	}
	if _, err := deviceconfig.ParseKind(s.Card.Profile); err != nil {
		return err
	}
	switch s.Log.Encoding {
	case "", "console", "json":
	default:
		return fmt.Errorf("log encoding must be 'console' or 'json', got '%s'", s.Log.Encoding)
	}
	return nil
}

// Kind returns the configured profile
func (s *Settings) Kind() deviceconfig.Kind {
	k, _ := deviceconfig.ParseKind(s.Card.Profile)
	return k
}

// CapacityBytes returns the configured card size in bytes
func (s *Settings) CapacityBytes() uint64 {
	return s.Card.CapacityMB << 20
}

// LoggingOptions converts the log section for logging.InitializeWithOptions
func (s *Settings) LoggingOptions() logging.Options {
	return logging.Options{
		Level:      s.Log.Level,
		Encoding:   s.Log.Encoding,
		File:       s.Log.File,
		MaxSizeMB:  s.Log.MaxSizeMB,
		MaxBackups: s.Log.MaxBackups,
	}
}

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/rcstore or $HOME/.config/rcstore
//   - macOS: $HOME/.config/rcstore
//   - Windows: %LOCALAPPDATA%\rcstore
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			baseDir = filepath.Join(xdg, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the settings file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load reads the settings file from the default location
func Load() (*Settings, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom reads settings from path. A missing file yields defaults.
// Keys absent from the file keep their default values.
func LoadFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	s := NewSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings to the default location
func (s *Settings) Save() (string, error) {
	path, err := GetConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get config path: %w", err)
	}
	return path, s.SaveTo(path)
}

// SaveTo writes the settings to path.
// Performs an atomic write to prevent corruption on crash.
func (s *Settings) SaveTo(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := s.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	header := []byte("# rcstore settings\n# Command-line flags override these values.\n\n")
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary settings file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save settings file: %w", err)
	}

	return nil
}
