//go:build linux

package transport

import (
	"io"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// applyFlowControl sets XON/XOFF and RTS/CTS on the tty behind port.
// The serial library only exposes RTS/CTS, so both are written through termios.
func applyFlowControl(port io.ReadWriteCloser, settings PortSettings, logger *zap.Logger) error {
	f, ok := port.(interface{ Fd() uintptr })
	if !ok {
		logger.Debug("Port has no file descriptor, flow control left unchanged")
		return nil
	}
	fd := int(f.Fd())

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}

	if settings.XonXoff {
		t.Iflag |= unix.IXON | unix.IXOFF
	} else {
		t.Iflag &^= unix.IXON | unix.IXOFF
	}
	t.Iflag &^= unix.IXANY

	if settings.RtsCts {
		t.Cflag |= unix.CRTSCTS
	} else {
		t.Cflag &^= unix.CRTSCTS
	}

	// DSR/DTR handshaking has no termios flag on Linux.
	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}
