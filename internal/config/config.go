// Package config loads noted's TOML configuration file and applies
// defaults, following the same BurntSushi/toml decode-then-default
// pattern the rest of the stack uses for on-disk manifests.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultCommentIdentifier delimits inline notes in watched files.
const DefaultCommentIdentifier = "@#$"

// DefaultSamplerPeriod is how often the app sampler polls the focused window.
const DefaultSamplerPeriod = time.Second

// DefaultUITickPeriod is the terminal UI's tick cadence: how often it
// refetches the apps and notes panes from the dispatcher. bubbletea's
// event loop reads input directly rather than polling it on a
// cooperative timeout, so this tick drives the periodic refetch instead.
const DefaultUITickPeriod = 16 * time.Millisecond

// FileName is the config file's name inside the data directory.
const FileName = "config.toml"

// Config holds noted's on-disk configuration. Every field is optional;
// zero values are replaced by their documented defaults in Load.
type Config struct {
	DataPath          string
	WatcherPaths      []string
	CommentIdentifier string
	// SamplerPeriod is the app sampler's polling interval, configured by
	// the sleep_duration TOML key.
	SamplerPeriod time.Duration
}

// rawConfig mirrors Config but with a TOML-friendly duration field, since
// encoding/toml (and BurntSushi/toml) doesn't decode time.Duration from a
// plain string without a custom unmarshaler.
type rawConfig struct {
	DataPath          string   `toml:"data_path"`
	WatcherPaths      []string `toml:"watcher_paths"`
	CommentIdentifier string   `toml:"comment_identifier"`
	SleepDuration     string   `toml:"sleep_duration"`
}

// Load reads dataDir/config.toml if present and returns a fully defaulted
// Config. A missing config file is not an error: Load returns the default
// configuration rooted at dataDir.
func Load(dataDir string) (*Config, error) {
	cfg := Default(dataDir)

	path := filepath.Join(dataDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var raw rawConfig
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if raw.DataPath != "" {
		cfg.DataPath = raw.DataPath
	}
	if len(raw.WatcherPaths) > 0 {
		cfg.WatcherPaths = raw.WatcherPaths
	}
	if raw.CommentIdentifier != "" {
		cfg.CommentIdentifier = raw.CommentIdentifier
	}
	if raw.SleepDuration != "" {
		d, err := time.ParseDuration(raw.SleepDuration)
		if err != nil {
			return nil, fmt.Errorf("parsing sleep_duration %q: %w", raw.SleepDuration, err)
		}
		cfg.SamplerPeriod = d
	}

	return cfg, nil
}

// Default returns the zero-config defaults rooted at dataDir.
func Default(dataDir string) *Config {
	return &Config{
		DataPath:          dataDir,
		WatcherPaths:      nil,
		CommentIdentifier: DefaultCommentIdentifier,
		SamplerPeriod:     DefaultSamplerPeriod,
	}
}

// AppsLogPath returns the path of the append-only window-session log.
func (c *Config) AppsLogPath() string { return filepath.Join(c.DataPath, "apps.json") }

// FilesLogPath returns the path of the append-only file-change-event log.
func (c *Config) FilesLogPath() string { return filepath.Join(c.DataPath, "files.json") }

// NotesLogPath returns the path of the append-only note-revision log.
func (c *Config) NotesLogPath() string { return filepath.Join(c.DataPath, "notes.json") }

// LockPath returns the path of the single-instance lock file.
func (c *Config) LockPath() string { return filepath.Join(c.DataPath, "daemon.lock") }

// LogPath returns the path of the daemon's own log file.
func (c *Config) LogPath() string { return filepath.Join(c.DataPath, "noted.log") }

// EnsureDataDir creates the data directory if it does not already exist.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataPath, 0o755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", c.DataPath, err)
	}
	return nil
}
