package transport

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"
)

type fakePort struct {
	closed bool
}

func (p *fakePort) Read(b []byte) (int, error)  { return 0, io.EOF }
func (p *fakePort) Write(b []byte) (int, error) { return len(b), nil }
func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

type fakeSerial struct {
	opened []serial.OpenOptions
	err    error
}

func (f *fakeSerial) open(options serial.OpenOptions) (io.ReadWriteCloser, error) {
	f.opened = append(f.opened, options)
	if f.err != nil {
		return nil, f.err
	}
	return &fakePort{}, nil
}

func newTestResolver(ports []*enumerator.PortDetails, listErr error, fs *fakeSerial) *Resolver {
	return &Resolver{
		listPorts: func() ([]*enumerator.PortDetails, error) {
			return ports, listErr
		},
		openSerial: fs.open,
		dial:       net.Dial,
		logger:     zap.NewNop(),
	}
}

var testPorts = []*enumerator.PortDetails{
	{Name: "/dev/ttyUSB1", IsUSB: true, VID: "10c4", PID: "85a7", SerialNumber: "0001", Product: "CP210x"},
	{Name: "/dev/ttyUSB0", IsUSB: true, VID: "067b", PID: "2303", Product: "USB-Serial Controller"},
	{Name: "/dev/ttyS0"},
}

func TestFramingFor(t *testing.T) {
	s := FramingFor(38400, 500*time.Millisecond)

	assert.Equal(t, uint(38400), s.BaudRate)
	assert.Equal(t, uint(8), s.DataBits)
	assert.Equal(t, ParityNone, s.Parity)
	assert.Equal(t, uint(1), s.StopBits)
	assert.True(t, s.XonXoff)
	assert.False(t, s.RtsCts)
	assert.False(t, s.DsrDtr)
	assert.Equal(t, 500*time.Millisecond, s.ReadTimeout)
	assert.Zero(t, s.WriteTimeout)
}

func TestOpenDevicePath(t *testing.T) {
	fs := &fakeSerial{}
	r := newTestResolver(nil, nil, fs)

	port, err := r.Open("/dev/ttyUSB3", FramingFor(9600, time.Second))
	require.NoError(t, err)
	require.NotNil(t, port)
	require.Len(t, fs.opened, 1)

	opts := fs.opened[0]
	assert.Equal(t, "/dev/ttyUSB3", opts.PortName)
	assert.Equal(t, uint(9600), opts.BaudRate)
	assert.Equal(t, uint(8), opts.DataBits)
	assert.Equal(t, uint(1), opts.StopBits)
	assert.Equal(t, serial.PARITY_NONE, opts.ParityMode)
	assert.False(t, opts.RTSCTSFlowControl)
	assert.Equal(t, uint(1000), opts.InterCharacterTimeout)
	assert.Equal(t, uint(0), opts.MinimumReadSize)
}

func TestOpenDeviceWithoutReadTimeoutBlocks(t *testing.T) {
	fs := &fakeSerial{}
	r := newTestResolver(nil, nil, fs)

	_, err := r.Open("/dev/ttyUSB0", FramingFor(9600, 0))
	require.NoError(t, err)

	assert.Equal(t, uint(0), fs.opened[0].InterCharacterTimeout)
	assert.Equal(t, uint(1), fs.opened[0].MinimumReadSize)
}

func TestOpenDeviceErrorPropagates(t *testing.T) {
	errDenied := errors.New("permission denied")
	fs := &fakeSerial{err: errDenied}
	r := newTestResolver(nil, nil, fs)

	_, err := r.Open("/dev/ttyUSB0", FramingFor(9600, time.Second))
	require.Error(t, err)
	assert.ErrorIs(t, err, errDenied)
}

func TestInterCharacterTimeout(t *testing.T) {
	cases := map[time.Duration]uint{
		time.Second:             1000,
		500 * time.Millisecond:  500,
		1250 * time.Millisecond: 1300,
		40 * time.Millisecond:   100,
	}
	for in, want := range cases {
		assert.Equal(t, want, interCharacterTimeout(in), "timeout %v", in)
	}
}

func TestHwgrepOpensMatchingPort(t *testing.T) {
	fs := &fakeSerial{}
	r := newTestResolver(testPorts, nil, fs)

	_, err := r.Open("hwgrep://067b:2303", FramingFor(38400, time.Second))
	require.NoError(t, err)
	require.Len(t, fs.opened, 1)
	assert.Equal(t, "/dev/ttyUSB0", fs.opened[0].PortName)
	assert.Equal(t, uint(38400), fs.opened[0].BaudRate)
}

func TestHwgrepPicksFirstSortedMatch(t *testing.T) {
	fs := &fakeSerial{}
	r := newTestResolver(testPorts, nil, fs)

	_, err := r.Open("hwgrep://ttyUSB", FramingFor(9600, time.Second))
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", fs.opened[0].PortName)
}

func TestHwgrepMatchesDescription(t *testing.T) {
	fs := &fakeSerial{}
	r := newTestResolver(testPorts, nil, fs)

	_, err := r.Open("hwgrep://cp210", FramingFor(9600, time.Second))
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", fs.opened[0].PortName)
}

func TestHwgrepNoMatch(t *testing.T) {
	fs := &fakeSerial{}
	r := newTestResolver(testPorts, nil, fs)

	_, err := r.Open("hwgrep://1a61:3420", FramingFor(9600, time.Second))
	assert.ErrorIs(t, err, ErrNoMatchingPort)
	assert.Empty(t, fs.opened)
}

func TestHwgrepEnumerationError(t *testing.T) {
	errEnum := errors.New("sysfs unavailable")
	fs := &fakeSerial{}
	r := newTestResolver(nil, errEnum, fs)

	_, err := r.Open("hwgrep://067b:2303", FramingFor(9600, time.Second))
	assert.ErrorIs(t, err, errEnum)
	assert.Empty(t, fs.opened)
}

func TestHwgrepBadPattern(t *testing.T) {
	r := newTestResolver(testPorts, nil, &fakeSerial{})

	_, err := r.Open("hwgrep://(", FramingFor(9600, time.Second))
	assert.ErrorIs(t, err, ErrInvalidLocator)
}

func TestUnsupportedScheme(t *testing.T) {
	r := newTestResolver(nil, nil, &fakeSerial{})

	_, err := r.Open("rfc2217://10.0.0.2:7000", FramingFor(9600, time.Second))
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestEmptyLocator(t *testing.T) {
	r := newTestResolver(nil, nil, &fakeSerial{})

	_, err := r.Open("", FramingFor(9600, time.Second))
	assert.ErrorIs(t, err, ErrInvalidLocator)
}

func TestListPorts(t *testing.T) {
	r := newTestResolver(testPorts, nil, &fakeSerial{})

	ports, err := r.ListPorts()
	require.NoError(t, err)
	require.Len(t, ports, 3)

	assert.Equal(t, "/dev/ttyS0", ports[0].Name)
	assert.Equal(t, "n/a", ports[0].HardwareID)
	assert.Equal(t, "n/a", ports[0].Description)

	assert.Equal(t, "/dev/ttyUSB0", ports[1].Name)
	assert.Equal(t, "USB VID:PID=067B:2303", ports[1].HardwareID)

	assert.Equal(t, "USB VID:PID=10C4:85A7 SER=0001", ports[2].HardwareID)
	assert.True(t, ports[2].IsUSB)
}

func TestSocketLocator(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		conn.Write([]byte("\x11OK"))
		// Hold the connection so the client read below times out.
		time.Sleep(time.Second)
	}()

	r := newTestResolver(nil, nil, &fakeSerial{})
	port, err := r.Open(SocketScheme+ln.Addr().String(), FramingFor(9600, 200*time.Millisecond))
	require.NoError(t, err)
	defer port.Close()

	buf := make([]byte, 3)
	_, err = io.ReadFull(port, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x11OK"), buf)

	_, err = port.Read(buf)
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestSocketLocatorWithoutPort(t *testing.T) {
	r := newTestResolver(nil, nil, &fakeSerial{})

	_, err := r.Open("socket://localhost", FramingFor(9600, time.Second))
	assert.ErrorIs(t, err, ErrInvalidLocator)
}
