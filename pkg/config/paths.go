package config

import (
	"os"
	"path/filepath"

	"github.com/uconsole/uconsole/pkg/env"
	"github.com/uconsole/uconsole/pkg/logutil"
)

var logger = logutil.GetLogger("[config] ")

const appName = "uconsole"

// Path returns the default path of the configuration file,
// $XDG_CONFIG_HOME/uconsole/config.yaml or its platform equivalent.
func Path() (string, error) {
	dir, err := xdgHome(env.XDG_CONFIG_HOME, defaultConfigHome)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.yaml"), nil
}

// StateDir returns the directory for the history file,
// $XDG_STATE_HOME/uconsole or its platform equivalent. It is created if it
// does not exist yet.
func StateDir() (string, error) {
	dir, err := xdgHome(env.XDG_STATE_HOME, defaultStateHome)
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, appName)
	return dir, os.MkdirAll(dir, 0700)
}

func xdgHome(name string, fallback func() (string, error)) (string, error) {
	if dir := os.Getenv(name); dir != "" {
		return dir, nil
	}
	return fallback()
}
