// Meter probe opens the configured meter's serial port and reports where it was found.
// Configuration is read from /etc/glucometer_serial/meterprobe.toml.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/NotCoffee418/glucometer_serial/pkg/config"
	"github.com/NotCoffee418/glucometer_serial/pkg/logging"
	"github.com/NotCoffee418/glucometer_serial/pkg/meters"
	"github.com/NotCoffee418/glucometer_serial/pkg/pathing"
	"github.com/NotCoffee418/glucometer_serial/pkg/serialdevice"
	"github.com/NotCoffee418/glucometer_serial/pkg/transport"
	"go.uber.org/zap"
)

func main() {
	if err := pathing.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Load config
	if err := config.LoadProbeConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load meter probe config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.ActiveProbeConfig

	if err := logging.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := probe(cfg, logging.Get()); err != nil {
		logging.Sync()
		os.Exit(1)
	}
}

func probe(cfg *config.ProbeConfig, logger *zap.Logger) error {
	profile, ok := meters.Lookup(cfg.Driver)
	if !ok {
		logger.Error("Unknown driver",
			zap.String("driver", cfg.Driver),
			zap.String("available", strings.Join(meters.Names(), ", ")),
		)
		return fmt.Errorf("unknown driver %q", cfg.Driver)
	}

	resolver := transport.NewResolver(logger)
	dev, err := serialdevice.Open(cfg.Device, profile,
		serialdevice.WithOpener(resolver),
		serialdevice.WithLogger(logger),
		serialdevice.WithKetone(cfg.WithKetone),
	)
	if err != nil {
		var cliErr *serialdevice.CommandLineError
		switch {
		case errors.As(err, &cliErr):
			logger.Error(cliErr.Message, zap.String("hint", "set `device` in "+pathing.GetProbeConfigPath()))
		case errors.Is(err, transport.ErrNoMatchingPort):
			logger.Error("Default cable not found", zap.Error(err))
			logAvailablePorts(resolver, logger)
		default:
			logger.Error("Failed to open meter", zap.String("driver", profile.Name), zap.Error(err))
		}
		return err
	}
	defer dev.Close()

	logger.Info("Meter port opened",
		zap.String("driver", profile.Name),
		zap.String("locator", dev.Locator),
		zap.Uint("baudrate", profile.BaudRate),
		zap.Duration("read_timeout", profile.EffectiveReadTimeout()),
		zap.Bool("with_ketone", dev.WithKetone),
	)
	return nil
}

func logAvailablePorts(resolver *transport.Resolver, logger *zap.Logger) {
	ports, err := resolver.ListPorts()
	if err != nil {
		logger.Warn("Could not list serial ports", zap.Error(err))
		return
	}
	if len(ports) == 0 {
		logger.Info("No serial ports found")
		return
	}
	for _, p := range ports {
		logger.Info("Available serial port",
			zap.String("port", p.Name),
			zap.String("description", p.Description),
			zap.String("hwid", p.HardwareID),
		)
	}
}
