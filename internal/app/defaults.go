package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - IQDBTAG_CONFIG_PATH: config file location (default: ~/.config/iqdbtag.toml)
//   - IQDBTAG_HOME: base directory for the cache, thumbnails and logs (default: ~/.local/share/iqdbtag)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

func getConfigPath() (string, error) {
	if path := os.Getenv("IQDBTAG_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "iqdbtag.toml"), nil
}

// getBaseDir returns the data directory, checking IQDBTAG_HOME first,
// then falling back to the XDG default ~/.local/share/iqdbtag.
func getBaseDir() (string, error) {
	if path := os.Getenv("IQDBTAG_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "iqdbtag"), nil
}
