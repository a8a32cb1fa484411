//go:build !linux

package main

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/fkcurrie/ws2818-matrix/internal/config"
	"github.com/fkcurrie/ws2818-matrix/pkg/matrix"
)

func openSPI(*config.Config, zerolog.Logger) (*matrix.Matrix, error) {
	return nil, errors.New("spi backend needs linux")
}

func lockMemory() error { return nil }
