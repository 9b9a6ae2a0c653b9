package credentials

import (
	"os"
	"path/filepath"
)

// DefaultConfigPath returns the XDG location of the config file,
// $XDG_CONFIG_HOME/restream-cli/config.json, falling back to ~/.config.
func DefaultConfigPath() string {
	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		xdgConfigHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(xdgConfigHome, "restream-cli", "config.json")
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
