package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/NotCoffee418/glucometer_serial/pkg/pathing"
)

var ActiveProbeConfig *ProbeConfig

// DefaultProbeConfig is written to disk when no config file exists yet.
func DefaultProbeConfig() *ProbeConfig {
	return &ProbeConfig{
		Device:     "", // Empty: use the driver's default cable
		Driver:     "otultraeasy",
		WithKetone: false,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stdout",
			File: LogFileConfig{
				Path:       pathing.GetLogDir(),
				Filename:   "meterprobe.log",
				MaxSize:    10,
				MaxAge:     30,
				MaxBackups: 5,
				Compress:   true,
			},
		},
	}
}

func LoadProbeConfig() error {
	return LoadProbeConfigFrom(pathing.GetProbeConfigPath())
}

// LoadProbeConfigFrom loads the probe config at configPath into ActiveProbeConfig.
// A default config is created if the file does not exist.
func LoadProbeConfigFrom(configPath string) error {
	cfg, err := readOrCreate(configPath)
	if err != nil {
		return err
	}
	ActiveProbeConfig = cfg
	return nil
}

func readOrCreate(configPath string) (*ProbeConfig, error) {
	// Create default if not exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultProbeConfig()
		cfgFile, err := os.Create(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		defer cfgFile.Close()
		if err := toml.NewEncoder(cfgFile).Encode(cfg); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
		return cfg, nil
	}

	// Load existing config, unset keys keep their defaults
	cfg := DefaultProbeConfig()
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	return cfg, nil
}
