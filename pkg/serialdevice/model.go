package serialdevice

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/NotCoffee418/glucometer_serial/pkg/transport"
	"go.uber.org/zap"
)

const DefaultReadTimeout = time.Second

var (
	// ErrInvalidProfile marks a defect in a driver's Profile, not bad user input.
	ErrInvalidProfile = errors.New("invalid driver profile")
	ErrNoDevice       = errors.New("no device provided, and no default cable known")
)

var cableIDPattern = regexp.MustCompile(`^[0-9A-Fa-f]{4}:[0-9A-Fa-f]{4}$`)

// Profile is the static serial configuration of a meter model.
type Profile struct {
	Name     string
	BaudRate uint
	// USB vendor:product pair of the meter's stock cable, e.g. "067b:2303".
	DefaultCableID string
	// Zero means DefaultReadTimeout.
	ReadTimeout    time.Duration
	SupportsKetone bool
}

func (p Profile) Validate() error {
	if p.BaudRate == 0 {
		return fmt.Errorf("%w: %s has no baud rate", ErrInvalidProfile, p.displayName())
	}
	if p.DefaultCableID != "" && !cableIDPattern.MatchString(p.DefaultCableID) {
		return fmt.Errorf("%w: %s default cable %q is not a VVVV:PPPP id",
			ErrInvalidProfile, p.displayName(), p.DefaultCableID)
	}
	if p.ReadTimeout < 0 {
		return fmt.Errorf("%w: %s has a negative read timeout", ErrInvalidProfile, p.displayName())
	}
	return nil
}

func (p Profile) EffectiveReadTimeout() time.Duration {
	if p.ReadTimeout == 0 {
		return DefaultReadTimeout
	}
	return p.ReadTimeout
}

func (p Profile) displayName() string {
	if p.Name == "" {
		return "profile"
	}
	return fmt.Sprintf("profile %q", p.Name)
}

// CommandLineError is returned when the user has to supply a device explicitly.
type CommandLineError struct {
	Message string
}

func (e *CommandLineError) Error() string {
	return e.Message
}

func (e *CommandLineError) Is(target error) bool {
	return target == ErrNoDevice
}

// Opener resolves a locator and opens it with the given settings.
// *transport.Resolver is the production implementation.
type Opener interface {
	Open(locator string, settings transport.PortSettings) (io.ReadWriteCloser, error)
}

// Device owns the open port of a single meter.
type Device struct {
	Profile    Profile
	Locator    string
	WithKetone bool
	Port       io.ReadWriteCloser

	logger *zap.Logger
}

type Option func(*options)

type options struct {
	opener     Opener
	logger     *zap.Logger
	withKetone *bool
}

func WithOpener(opener Opener) Option {
	return func(o *options) { o.opener = opener }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithKetone overrides Profile.SupportsKetone for this device.
func WithKetone(enabled bool) Option {
	return func(o *options) { o.withKetone = &enabled }
}
