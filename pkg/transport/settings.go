package transport

import "time"

type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

// PortSettings is the line configuration applied when a port is opened.
type PortSettings struct {
	BaudRate uint
	DataBits uint
	Parity   Parity
	StopBits uint

	XonXoff bool // Software flow control
	RtsCts  bool
	DsrDtr  bool

	// Zero ReadTimeout blocks until at least one byte arrives.
	ReadTimeout time.Duration
	// Zero WriteTimeout blocks until the write completes.
	WriteTimeout time.Duration
}

// FramingFor returns the 8N1 XON/XOFF profile shared by every serial meter.
// Only the baud rate and the read timeout differ between models.
func FramingFor(baudRate uint, readTimeout time.Duration) PortSettings {
	return PortSettings{
		BaudRate:     baudRate,
		DataBits:     8,
		Parity:       ParityNone,
		StopBits:     1,
		XonXoff:      true,
		RtsCts:       false,
		DsrDtr:       false,
		ReadTimeout:  readTimeout,
		WriteTimeout: 0,
	}
}
