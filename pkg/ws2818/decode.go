package ws2818

import (
	"errors"
	"fmt"
	"time"

	"github.com/fkcurrie/ws2818-matrix/pkg/pio"
)

// Tolerance is the pulse width error a WS2812B accepts.
const Tolerance = 150 * time.Nanosecond

// ErrTiming is returned by Decode for a pulse no LED would accept.
var ErrTiming = errors.New("ws2818: pulse width out of tolerance")

// Frame is a transmission recovered from a pin waveform.
type Frame struct {
	Bits []bool
	// Idle is how long the line stayed low after the last high pulse.
	Idle time.Duration
}

// Decode recovers the bits from a recorded waveform, checking every pulse
// against t. Leading low time is ignored.
func Decode(w pio.Waveform, t Timing) (Frame, error) {
	var f Frame
	pulses := w.Pulses
	for len(pulses) > 0 && !pulses[0].High {
		pulses = pulses[1:]
	}

	for i := 0; i < len(pulses); i++ {
		p := pulses[i]
		if !p.High {
			continue
		}
		high := w.Nanos(p.Cycles)
		var bit bool
		switch {
		case near(high, t.T1H):
			bit = true
		case near(high, t.T0H):
			bit = false
		default:
			return f, fmt.Errorf("%w: bit %d high for %v", ErrTiming, len(f.Bits), high)
		}
		f.Bits = append(f.Bits, bit)

		if i+1 == len(pulses) {
			break
		}
		low := w.Nanos(pulses[i+1].Cycles)
		if i+2 == len(pulses) {
			f.Idle = low
			break
		}
		want := t.T0L
		if bit {
			want = t.T1L
		}
		if !near(low, want) {
			return f, fmt.Errorf("%w: bit %d low for %v", ErrTiming, len(f.Bits)-1, low)
		}
	}
	return f, nil
}

// Words packs the bits into left-aligned 24-bit words as sent by Link.Send.
// It fails when the bit count is not a whole number of LEDs.
func (f Frame) Words() ([]uint32, error) {
	if len(f.Bits)%24 != 0 {
		return nil, fmt.Errorf("%d bits is not a whole number of LEDs", len(f.Bits))
	}
	words := make([]uint32, len(f.Bits)/24)
	for i, b := range f.Bits {
		if b {
			words[i/24] |= 1 << (31 - uint(i%24))
		}
	}
	return words, nil
}

// Colors decodes the frame into per-LED colours in wire order.
func (f Frame) Colors() ([]Color, error) {
	words, err := f.Words()
	if err != nil {
		return nil, err
	}
	colors := make([]Color, len(words))
	for i, w := range words {
		colors[i] = FromGRB(w)
	}
	return colors, nil
}

func near(got, want time.Duration) bool {
	d := got - want
	if d < 0 {
		d = -d
	}
	return d <= Tolerance
}
