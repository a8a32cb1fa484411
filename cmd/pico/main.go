//go:build rp2040 || rp2350

// Command pico counts down 9 to 0 on a 5x5 WS2818b matrix, once a second.
//
//	tinygo flash -target=pico ./cmd/pico
package main

import (
	"time"

	"github.com/fkcurrie/ws2818-matrix/pkg/matrix"
	"github.com/fkcurrie/ws2818-matrix/pkg/pio"
)

const (
	ledPin = 7
	width  = 5
	height = 5
)

var digitColor = matrix.LedColor{R: 100}

func main() {
	// Panics when neither PIO block has a free state machine.
	m := matrix.MustOpen(matrix.Geometry{Width: width, Height: height}, ledPin, pio.Hardware()...)

	m.Clear()
	if err := m.Commit(); err != nil {
		println("commit:", err.Error())
	}

	digit := 9
	for {
		m.Clear()
		if err := m.RenderDigit(digit, digitColor); err != nil {
			println("render:", err.Error())
		}
		if err := m.Commit(); err != nil {
			println("commit:", err.Error())
		}
		if digit > 0 {
			digit--
		} else {
			digit = 9
		}
		time.Sleep(time.Second)
	}
}
