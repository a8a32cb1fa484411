//go:build linux

package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/fkcurrie/ws2818-matrix/internal/config"
	"github.com/fkcurrie/ws2818-matrix/pkg/gpio"
	"github.com/fkcurrie/ws2818-matrix/pkg/matrix"
	"github.com/fkcurrie/ws2818-matrix/pkg/spiled"
)

func openSPI(cfg *config.Config, logger zerolog.Logger) (*matrix.Matrix, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialise host: %w", err)
	}
	port, err := spireg.Open(cfg.SPI.Port)
	if err != nil {
		return nil, fmt.Errorf("failed to open spi port %q: %w", cfg.SPI.Port, err)
	}

	opts := []spiled.Option{
		spiled.WithLogger(logger),
		spiled.WithResetGap(cfg.Link().ResetGap),
	}
	if cfg.SPI.EnableLine >= 0 {
		pin, err := gpio.NewPin(cfg.SPI.EnableLine, gpio.WithLogger(logger))
		if err != nil {
			port.Close()
			return nil, err
		}
		logger.Info().Str("line", pin.String()).Msg("enable line ready")
		opts = append(opts, spiled.WithEnable(pin))
	}

	link, err := spiled.Open(port, cfg.Geometry().Len(), opts...)
	if err != nil {
		port.Close()
		return nil, err
	}
	return matrix.New(cfg.Geometry(), link)
}

// lockMemory keeps the process resident so page faults cannot stall a frame.
func lockMemory() error {
	return unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE)
}
