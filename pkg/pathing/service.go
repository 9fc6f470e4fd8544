package pathing

import (
	"os"
	"path/filepath"
)

// EnsureDirs creates the directories the probe writes to.
// Must be called manually on startup.
func EnsureDirs() error {
	// Directories that must exist:
	dirs := []string{
		GetConfigDir(),
		GetLogDir(),
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

func GetProbeConfigPath() string {
	return filepath.Join(GetConfigDir(), "meterprobe.toml")
}

func GetLogDir() string {
	return "/var/log/glucometer_serial"
}

func GetConfigDir() string {
	return "/etc/glucometer_serial"
}
