package pio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oneWire is the usual WS2812 program: 10 cycles per bit, side-set pin high
// for 7 cycles on a 1 and 2 cycles on a 0.
var oneWire = Program{
	Instructions: []uint16{0x6221, 0x1123, 0x1400, 0xa442},
	Origin:       -1,
	Wrap:         3,
	SidesetBits:  1,
}

func newOneWire(t *testing.T) *EmulatedStateMachine {
	t.Helper()
	e := NewEmulator(0, 125_000_000)
	b, err := Claim(e)
	require.NoError(t, err)
	offset, err := e.AddProgram(oneWire)
	require.NoError(t, err)
	whole, frac, err := ClkDivFromFrequency(8_000_000, e.ClockHz())
	require.NoError(t, err)
	err = b.StateMachine.Init(offset, Config{
		WrapTarget:    offset,
		Wrap:          offset + oneWire.Wrap,
		SidesetBits:   1,
		SidesetPin:    7,
		Autopull:      true,
		PullThreshold: 24,
		JoinTx:        true,
		ClkDivInt:     whole,
		ClkDivFrac:    frac,
	})
	require.NoError(t, err)
	return b.StateMachine.(*EmulatedStateMachine)
}

func TestEmulatorDrainRequiresEnable(t *testing.T) {
	sm := newOneWire(t)
	sm.Put(0)
	assert.ErrorIs(t, sm.Drain(), ErrNotEnabled)

	uninit := NewEmulator(0, 125_000_000).StateMachine(0)
	assert.ErrorIs(t, uninit.Drain(), ErrNotInitialized)
}

func TestEmulatorWaveform(t *testing.T) {
	sm := newOneWire(t)
	sm.SetEnabled(true)

	// A single 1 bit followed by 23 zeros.
	sm.Put(0x80000000)
	require.NoError(t, sm.Drain())

	w := sm.Waveform()
	assert.InDelta(t, 125.0, w.CycleNanos, 1e-9)

	want := []Pulse{{false, 3}, {true, 7}, {false, 3}, {true, 2}}
	for i := 0; i < 22; i++ {
		want = append(want, Pulse{false, 8}, Pulse{true, 2})
	}
	want = append(want, Pulse{false, 5})
	assert.Equal(t, want, w.Pulses)
	assert.Equal(t, 240, w.Cycles())
	assert.Equal(t, 30*time.Microsecond, w.Duration())
}

func TestEmulatorIdle(t *testing.T) {
	sm := newOneWire(t)
	sm.SetEnabled(true)
	sm.Put(0xff000000)
	require.NoError(t, sm.Drain())
	sm.Idle(280 * time.Microsecond)

	w := sm.Waveform()
	last := w.Pulses[len(w.Pulses)-1]
	assert.False(t, last.High)
	assert.Equal(t, 5+280_000/125, last.Cycles)

	sm.ResetWaveform()
	assert.Empty(t, sm.Waveform().Pulses)
}

func TestEmulatorUnsupported(t *testing.T) {
	e := NewEmulator(0, 125_000_000)
	b, err := Claim(e)
	require.NoError(t, err)
	// wait 1 gpio 0
	offset, err := e.AddProgram(Program{Instructions: []uint16{0x2080}, Origin: -1})
	require.NoError(t, err)
	require.NoError(t, b.StateMachine.Init(offset, Config{WrapTarget: offset, Wrap: offset, ClkDivInt: 1}))
	b.StateMachine.SetEnabled(true)
	assert.ErrorIs(t, b.StateMachine.Drain(), ErrUnsupported)
}

func TestEmulatorInitRejectsZeroDivider(t *testing.T) {
	sm := NewEmulator(0, 125_000_000).StateMachine(0)
	assert.Error(t, sm.Init(0, Config{}))
}
