package ws2818

import (
	"time"

	"github.com/fkcurrie/ws2818-matrix/pkg/pio"
)

// Cycle counts of Program. Every bit takes CyclesPerBit state machine
// cycles; the data pin is high for the first cyclesHigh1 of them when the
// bit is 1 and for the first cyclesHigh0 when it is 0.
const (
	CyclesPerBit = 10
	cyclesHigh1  = 7
	cyclesHigh0  = 2
)

// Program is the one-wire encoder. It shifts one bit at a time out of the
// OSR into X and drives the data pin through side-set:
//
//	.side_set 1
//	.wrap_target
//	bitloop:
//	    out x, 1       side 0 [2]
//	    jmp !x do_zero side 1 [1]
//	do_one:
//	    jmp bitloop    side 1 [4]
//	do_zero:
//	    nop            side 0 [4]
//	.wrap
//
// While the TX FIFO is empty the state machine stalls on the OUT with the
// pin low, which is what ends a frame.
var Program = pio.Program{
	Instructions: []uint16{
		0x6221, // out x, 1 side 0 [2]
		0x1123, // jmp !x, 3 side 1 [1]
		0x1400, // jmp 0 side 1 [4]
		0xa442, // nop side 0 [4]
	},
	Origin:      -1,
	WrapTarget:  0,
	Wrap:        3,
	SidesetBits: 1,
}

// Timing holds the pulse widths Program produces at a given bit rate.
type Timing struct {
	T0H, T0L time.Duration
	T1H, T1L time.Duration
}

// NewTiming returns the pulse widths for a bit rate of freq Hz.
func NewTiming(freq uint32) Timing {
	cycle := float64(time.Second) / float64(freq) / CyclesPerBit
	d := func(n int) time.Duration { return time.Duration(float64(n)*cycle + 0.5) }
	return Timing{
		T0H: d(cyclesHigh0),
		T0L: d(CyclesPerBit - cyclesHigh0),
		T1H: d(cyclesHigh1),
		T1L: d(CyclesPerBit - cyclesHigh1),
	}
}

// Bit returns the duration of one bit.
func (t Timing) Bit() time.Duration {
	return t.T0H + t.T0L
}

// Frame returns how long n LEDs take on the wire, excluding the reset gap.
func (t Timing) Frame(n int) time.Duration {
	return time.Duration(n*24) * t.Bit()
}
