package config

import (
	"os"
	"path/filepath"
)

// GetObraHome returns OBRA_HOME or ~/.obra default
func GetObraHome() string {
	obraHome := os.Getenv("OBRA_HOME")
	if obraHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".obra"
		}
		return filepath.Join(homeDir, ".obra")
	}
	return ExpandPath(obraHome)
}

// GetDBPath returns $OBRA_HOME/obra.db
func GetDBPath() string {
	return filepath.Join(GetObraHome(), "obra.db")
}

// GetSettingsPath returns $OBRA_HOME/settings.json
func GetSettingsPath() string {
	return filepath.Join(GetObraHome(), "settings.json")
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			if len(path) == 1 {
				return homeDir
			}
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
