//go:build !linux

package transport

import (
	"io"

	"go.uber.org/zap"
)

func applyFlowControl(port io.ReadWriteCloser, settings PortSettings, logger *zap.Logger) error {
	if settings.XonXoff {
		logger.Debug("Software flow control is not configurable on this platform, left to the driver")
	}
	return nil
}
