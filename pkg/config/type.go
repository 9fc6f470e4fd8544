package config

type ProbeConfig struct {
	// Device path or locator (e.g. /dev/ttyUSB0, hwgrep://067b:2303, socket://host:port).
	// Leave empty to look for the driver's default cable.
	Device     string    `toml:"device"`
	Driver     string    `toml:"driver"`
	WithKetone bool      `toml:"with_ketone"`
	Log        LogConfig `toml:"log"`
}

type LogConfig struct {
	Level  string        `toml:"level"`  // debug, info, warn, error
	Format string        `toml:"format"` // console or json
	Output string        `toml:"output"` // stdout, file or both
	File   LogFileConfig `toml:"file"`
}

type LogFileConfig struct {
	Path       string `toml:"path"`
	Filename   string `toml:"filename"`
	MaxSize    int    `toml:"max_size"` // MB
	MaxAge     int    `toml:"max_age"`  // days
	MaxBackups int    `toml:"max_backups"`
	Compress   bool   `toml:"compress"`
}
