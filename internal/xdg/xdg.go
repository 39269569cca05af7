// Package xdg provides XDG Base Directory paths for playerd.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "playerd"

// ConfigDir returns the XDG config directory for playerd.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// DefaultConfigFile returns the path of playerd.yaml inside ConfigDir,
// or the empty string when no such file exists.
func DefaultConfigFile() string {
	path := filepath.Join(ConfigDir(), "playerd.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
