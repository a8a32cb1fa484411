package display

import (
	"fmt"

	"github.com/fkcurrie/ws2818-matrix/internal/types"
	"github.com/fkcurrie/ws2818-matrix/pkg/ws2818"
)

// Countdown shows 9, 8, ... 0 and then starts again at 9
type Countdown struct {
	Color ws2818.Color
	next  int
}

// NewCountdown creates a countdown starting at digit start
func NewCountdown(start int, c ws2818.Color) (*Countdown, error) {
	if start < 0 || start > 9 {
		return nil, fmt.Errorf("start %d is not a digit", start)
	}
	return &Countdown{Color: c, next: start}, nil
}

// Next returns the digit the next Step shows
func (cd *Countdown) Next() int {
	return cd.next
}

// Step implements Scene
func (cd *Countdown) Step(m types.Matrix) error {
	m.Clear()
	if err := m.RenderDigit(cd.next, cd.Color); err != nil {
		return fmt.Errorf("failed to render %d: %w", cd.next, err)
	}
	if err := m.Commit(); err != nil {
		return err
	}
	if cd.next > 0 {
		cd.next--
	} else {
		cd.next = 9
	}
	return nil
}

// Lamp is one column of a TrafficLight
type Lamp struct {
	Column int
	Color  ws2818.Color
}

// TrafficLight lights one full column at a time: red, green, then yellow
type TrafficLight struct {
	Lamps  []Lamp
	Height int
	next   int
}

// NewTrafficLight creates the three lamp sequence on a matrix of the given
// height.
func NewTrafficLight(height int) *TrafficLight {
	return &TrafficLight{
		Lamps: []Lamp{
			{Column: 3, Color: ws2818.Red},
			{Column: 1, Color: ws2818.Green},
			{Column: 2, Color: ws2818.Yellow},
		},
		Height: height,
	}
}

// Step implements Scene
func (tl *TrafficLight) Step(m types.Matrix) error {
	if len(tl.Lamps) == 0 {
		return fmt.Errorf("no lamps")
	}
	lamp := tl.Lamps[tl.next]
	m.Clear()
	for y := 0; y < tl.Height; y++ {
		if err := m.SetPixelXY(lamp.Column, y, lamp.Color); err != nil {
			return err
		}
	}
	if err := m.Commit(); err != nil {
		return err
	}
	tl.next = (tl.next + 1) % len(tl.Lamps)
	return nil
}
