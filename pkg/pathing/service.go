package pathing

import (
	"os"
	"path/filepath"
)

const configDirEnv = "BEMS_CONFIG_DIR"

func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "bems.toml")
}

// GetConfigDir can be moved with BEMS_CONFIG_DIR, which tests rely on.
func GetConfigDir() string {
	if dir := os.Getenv(configDirEnv); dir != "" {
		return dir
	}
	return "/etc/building_energy_monitor"
}

// EnsureConfigDir creates the config directory if it does not exist yet.
func EnsureConfigDir() error {
	dir := GetConfigDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
