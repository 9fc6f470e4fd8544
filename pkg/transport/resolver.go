// Package transport resolves device locators into open, configured ports.
//
// Supported locators:
//
//	/dev/ttyUSB0, COM3          device path, opened directly
//	hwgrep://<regexp>           first enumerated port whose name, description
//	                            or hardware id matches (case-insensitive)
//	socket://<host>:<port>      TCP serial bridge
package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"
)

const (
	HwgrepScheme = "hwgrep://"
	SocketScheme = "socket://"
)

var (
	ErrNoMatchingPort    = errors.New("no serial port matches pattern")
	ErrInvalidLocator    = errors.New("invalid device locator")
	ErrUnsupportedScheme = errors.New("unsupported locator scheme")
)

type Resolver struct {
	listPorts  func() ([]*enumerator.PortDetails, error)
	openSerial func(options serial.OpenOptions) (io.ReadWriteCloser, error)
	dial       func(network, address string) (net.Conn, error)
	logger     *zap.Logger
}

func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		listPorts:  enumerator.GetDetailedPortsList,
		openSerial: serial.Open,
		dial:       net.Dial,
		logger:     logger,
	}
}

// Open resolves locator and opens it with settings.
// A single attempt is made, errors from the underlying layer are returned wrapped.
func (r *Resolver) Open(locator string, settings PortSettings) (io.ReadWriteCloser, error) {
	switch {
	case strings.HasPrefix(locator, HwgrepScheme):
		pattern := strings.TrimPrefix(locator, HwgrepScheme)
		path, err := r.findPort(pattern)
		if err != nil {
			return nil, err
		}
		r.logger.Info("Matched serial port",
			zap.String("pattern", pattern),
			zap.String("port", path),
		)
		return r.openDevice(path, settings)

	case strings.HasPrefix(locator, SocketScheme):
		return r.openSocket(strings.TrimPrefix(locator, SocketScheme), settings)

	case strings.Contains(locator, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, locator)

	case locator == "":
		return nil, fmt.Errorf("%w: empty locator", ErrInvalidLocator)
	}

	return r.openDevice(locator, settings)
}

func (r *Resolver) findPort(pattern string) (string, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return "", fmt.Errorf("%w: bad pattern %q: %w", ErrInvalidLocator, pattern, err)
	}

	ports, err := r.ListPorts()
	if err != nil {
		return "", err
	}

	for _, p := range ports {
		if re.MatchString(p.Name) || re.MatchString(p.Description) || re.MatchString(p.HardwareID) {
			return p.Name, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrNoMatchingPort, pattern)
}

// Open the serial device at path.
func (r *Resolver) openDevice(path string, settings PortSettings) (io.ReadWriteCloser, error) {
	options := serial.OpenOptions{
		PortName:          path,
		BaudRate:          settings.BaudRate,
		DataBits:          settings.DataBits,
		StopBits:          settings.StopBits,
		ParityMode:        parityMode(settings.Parity),
		RTSCTSFlowControl: settings.RtsCts,
	}

	if settings.ReadTimeout > 0 {
		options.InterCharacterTimeout = interCharacterTimeout(settings.ReadTimeout)
		options.MinimumReadSize = 0
	} else {
		options.MinimumReadSize = 1
	}

	port, err := r.openSerial(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}

	if err := applyFlowControl(port, settings, r.logger); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set flow control on %s: %w", path, err)
	}

	r.logger.Debug("Opened serial port",
		zap.String("port", path),
		zap.Uint("baudrate", settings.BaudRate),
		zap.Duration("read_timeout", settings.ReadTimeout),
	)
	return port, nil
}

func (r *Resolver) openSocket(address string, settings PortSettings) (io.ReadWriteCloser, error) {
	if _, _, err := net.SplitHostPort(address); err != nil {
		return nil, fmt.Errorf("%w: %s%s: %w", ErrInvalidLocator, SocketScheme, address, err)
	}

	conn, err := r.dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	r.logger.Debug("Connected to serial bridge", zap.String("address", address))
	return &deadlineConn{Conn: conn, readTimeout: settings.ReadTimeout, writeTimeout: settings.WriteTimeout}, nil
}

// Milliseconds rounded to the 100ms granularity of the tty layer.
func interCharacterTimeout(d time.Duration) uint {
	tenths := (d + 50*time.Millisecond) / (100 * time.Millisecond)
	if tenths < 1 {
		tenths = 1
	}
	return uint(tenths) * 100
}

func parityMode(p Parity) serial.ParityMode {
	switch p {
	case ParityOdd:
		return serial.PARITY_ODD
	case ParityEven:
		return serial.PARITY_EVEN
	default:
		return serial.PARITY_NONE
	}
}

// deadlineConn applies the port timeouts to every read and write.
type deadlineConn struct {
	net.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if c.readTimeout > 0 {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Read(p)
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	if c.writeTimeout > 0 {
		if err := c.Conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Write(p)
}
