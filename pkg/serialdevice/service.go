package serialdevice

import (
	"github.com/NotCoffee418/glucometer_serial/pkg/logging"
	"github.com/NotCoffee418/glucometer_serial/pkg/transport"
	"go.uber.org/zap"
)

// Open resolves locator for the meter described by profile and opens it.
//
// An empty locator falls back to the profile's default cable, looked up with
// hwgrep://. Profile defects are reported as ErrInvalidProfile before any I/O,
// a missing device as *CommandLineError. Transport errors are returned as is.
func Open(locator string, profile Profile, opts ...Option) (*Device, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Get()
	}
	if o.opener == nil {
		o.opener = transport.NewResolver(o.logger)
	}

	if locator == "" && profile.DefaultCableID != "" {
		o.logger.Info("No device provided, looking for default cable",
			zap.String("driver", profile.Name),
			zap.String("cable", profile.DefaultCableID),
		)
		locator = transport.HwgrepScheme + profile.DefaultCableID
	}

	if locator == "" {
		return nil, &CommandLineError{
			Message: "No device provided, and no default cable known for " + profile.displayName(),
		}
	}

	settings := transport.FramingFor(profile.BaudRate, profile.EffectiveReadTimeout())
	port, err := o.opener.Open(locator, settings)
	if err != nil {
		return nil, err
	}

	withKetone := profile.SupportsKetone
	if o.withKetone != nil {
		withKetone = *o.withKetone
	}

	return &Device{
		Profile:    profile,
		Locator:    locator,
		WithKetone: withKetone,
		Port:       port,
		logger:     o.logger,
	}, nil
}

// Close releases the port. Safe to call more than once.
func (d *Device) Close() error {
	if d.Port == nil {
		return nil
	}
	err := d.Port.Close()
	d.Port = nil
	d.logger.Debug("Closed device", zap.String("locator", d.Locator))
	return err
}
