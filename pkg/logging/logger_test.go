package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NotCoffee418/glucometer_serial/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewFileOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	cfg := config.LogConfig{
		Level:  "debug",
		Format: "json",
		Output: "file",
		File: config.LogFileConfig{
			Path:     dir,
			Filename: "probe.log",
			MaxSize:  1,
		},
	}

	l, err := New(cfg)
	require.NoError(t, err)
	l.Debug("Opened serial port")
	_ = l.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "probe.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Opened serial port"`)
	assert.Contains(t, string(data), `"level":"debug"`)
}

func TestNewUnknownOutput(t *testing.T) {
	_, err := New(config.LogConfig{Output: "syslog"})
	assert.Error(t, err)
}

func TestInitAndGet(t *testing.T) {
	require.NoError(t, Init(config.LogConfig{Level: "warn", Output: "stdout"}))

	l := Get()
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}
