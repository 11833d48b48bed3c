// Package config reads the YAML configuration file of the console.
//
// A missing file is not an error; every setting has a default. Unknown keys
// are rejected so that typos do not go unnoticed.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/uconsole/uconsole/pkg/store"
	"github.com/uconsole/uconsole/pkg/ui"
)

// Config is the whole configuration.
type Config struct {
	History History `yaml:"history"`
	Editor  Editor  `yaml:"editor"`
	Colors  Colors  `yaml:"colors"`
}

// History configures persistence of the command history.
type History struct {
	// Whether the history is loaded from and saved to File.
	Persist bool `yaml:"persist"`
	File    string `yaml:"file"`
	// Either "text" or "bolt".
	Backend string `yaml:"backend"`
	// Whether the file is flushed after every command.
	AutoFlush bool `yaml:"auto-flush"`
	// Whether commands already in the history are saved again.
	NoDuplicates bool `yaml:"no-duplicates"`
}

// Editor configures the line editor.
type Editor struct {
	// Number of columns added to the indentation of a continuation line for
	// each open bracket.
	IndentSize int `yaml:"indent-size"`
	TabSize    int `yaml:"tab-size"`
}

// Colors configures the colors of the different kinds of output.
type Colors struct {
	Enabled bool     `yaml:"enabled"`
	Prompt  ui.Color `yaml:"prompt"`
	Output  ui.Color `yaml:"output"`
	Error   ui.Color `yaml:"error"`
	Warning ui.Color `yaml:"warning"`
}

// Default returns the default configuration. The history file is not
// resolved; see HistoryPath.
func Default() *Config {
	return &Config{
		History: History{
			Backend:      store.TextBackend,
			AutoFlush:    true,
			NoDuplicates: true,
		},
		Editor: Editor{IndentSize: 4, TabSize: 4},
		Colors: Colors{
			Enabled: true,
			Prompt:  ui.Gray, Output: ui.Green, Error: ui.Red, Warning: ui.Yellow,
		},
	}
}

// Load reads the configuration file at path on top of the defaults. If the
// file does not exist, the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Printf("%s does not exist, using defaults", path)
		return cfg, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.History.File, err = expandHome(cfg.History.File)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.History.Backend {
	case store.TextBackend, store.BoltBackend:
	default:
		return fmt.Errorf("history.backend must be %q or %q, got %q",
			store.TextBackend, store.BoltBackend, cfg.History.Backend)
	}
	if cfg.Editor.IndentSize < 0 {
		return fmt.Errorf("editor.indent-size must not be negative, got %d", cfg.Editor.IndentSize)
	}
	if cfg.Editor.TabSize <= 0 {
		return fmt.Errorf("editor.tab-size must be positive, got %d", cfg.Editor.TabSize)
	}
	return nil
}

// HistoryPath returns the history file to use: the configured one, or
// "history" (or "history.db" for the bolt backend) in the state directory.
func (cfg *Config) HistoryPath() (string, error) {
	if cfg.History.File != "" {
		return cfg.History.File, nil
	}
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	name := "history"
	if cfg.History.Backend == store.BoltBackend {
		name = "history.db"
	}
	return filepath.Join(dir, name), nil
}

// expandHome replaces a leading "~" in p with the home directory.
func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, p[1:]), nil
}
