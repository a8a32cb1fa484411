package pio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClaim tests state machine claiming with fallback to the next block
func TestClaim(t *testing.T) {
	tests := []struct {
		name      string
		exhausted []bool
		wantBlock uint8
		wantErr   error
	}{
		{name: "primary free", exhausted: []bool{false, false}, wantBlock: 0},
		{name: "primary exhausted", exhausted: []bool{true, false}, wantBlock: 1},
		{name: "both exhausted", exhausted: []bool{true, true}, wantErr: ErrNoStateMachine},
		{name: "no blocks", wantErr: ErrNoStateMachine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var blocks []Block
			var emus []*Emulator
			for i, full := range tt.exhausted {
				e := NewEmulator(uint8(i), 125_000_000)
				if full {
					e.Exhaust()
				}
				blocks = append(blocks, e)
				emus = append(emus, e)
			}

			b, err := Claim(blocks...)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "Claim() error = %v, want %v", err, tt.wantErr)
				assert.Equal(t, "unbound", b.String())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBlock, b.Block.Index())
			assert.Equal(t, 1, emus[tt.wantBlock].Claimed())
			if tt.wantBlock > 0 {
				assert.Equal(t, NumStateMachines, emus[0].Claimed())
			}
		})
	}
}

func TestClaimNeverReusesStateMachine(t *testing.T) {
	primary := NewEmulator(0, 125_000_000)
	secondary := NewEmulator(1, 125_000_000)

	seen := map[string]bool{}
	for i := 0; i < 2*NumStateMachines; i++ {
		b, err := Claim(primary, secondary)
		require.NoError(t, err)
		key := b.String()
		assert.False(t, seen[key], "state machine %s handed out twice", key)
		seen[key] = true
	}

	_, err := Claim(primary, secondary)
	assert.ErrorIs(t, err, ErrNoStateMachine)

	b := primary.StateMachine(2)
	b.Unclaim()
	got, err := Claim(primary, secondary)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), got.StateMachine.Index())
}

func TestClaimSkipsNilBlock(t *testing.T) {
	e := NewEmulator(1, 125_000_000)
	b, err := Claim(nil, e)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), b.Block.Index())
}

// brokenBlock fails to claim for a reason other than exhaustion.
type brokenBlock struct {
	*Emulator
	err error
}

func (b *brokenBlock) ClaimStateMachine() (StateMachine, error) {
	return nil, b.err
}

func TestClaimBlockFault(t *testing.T) {
	fault := errors.New("register read failed")
	broken := &brokenBlock{Emulator: NewEmulator(0, 125_000_000), err: fault}
	fallback := NewEmulator(1, 125_000_000)

	_, err := Claim(broken, fallback)
	require.Error(t, err)
	assert.ErrorIs(t, err, fault)
	assert.False(t, errors.Is(err, ErrNoStateMachine), "fault reported as exhaustion: %v", err)
	assert.Zero(t, fallback.Claimed(), "fell back past a faulty block")
}

func TestClkDivFromFrequency(t *testing.T) {
	tests := []struct {
		name      string
		freq      uint32
		clockHz   uint32
		wantWhole uint16
		wantFrac  uint8
		wantErr   bool
	}{
		{name: "8MHz from 125MHz", freq: 8_000_000, clockHz: 125_000_000, wantWhole: 15, wantFrac: 160},
		{name: "8MHz from 150MHz", freq: 8_000_000, clockHz: 150_000_000, wantWhole: 18, wantFrac: 192},
		{name: "undivided", freq: 125_000_000, clockHz: 125_000_000, wantWhole: 1, wantFrac: 0},
		{name: "zero", freq: 0, clockHz: 125_000_000, wantErr: true},
		{name: "faster than clock", freq: 250_000_000, clockHz: 125_000_000, wantErr: true},
		{name: "too slow", freq: 1, clockHz: 125_000_000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			whole, frac, err := ClkDivFromFrequency(tt.freq, tt.clockHz)
			if (err != nil) != tt.wantErr {
				t.Errorf("ClkDivFromFrequency() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			assert.Equal(t, tt.wantWhole, whole)
			assert.Equal(t, tt.wantFrac, frac)
		})
	}
}

func TestCycleNanos(t *testing.T) {
	assert.InDelta(t, 125.0, CycleNanos(15, 160, 125_000_000), 1e-9)
	assert.InDelta(t, 8.0, CycleNanos(1, 0, 125_000_000), 1e-9)
}

func TestAddProgram(t *testing.T) {
	e := NewEmulator(0, 125_000_000)
	p := Program{Instructions: []uint16{0x6221, 0x1123, 0x1400, 0xa442}, Origin: -1, Wrap: 3, SidesetBits: 1}

	first, err := e.AddProgram(p)
	require.NoError(t, err)
	assert.Equal(t, uint8(28), first)
	assert.Equal(t, uint16(0x1123+28), e.mem[29], "jmp target not relocated")
	assert.Equal(t, uint16(0x1400+28), e.mem[30], "jmp target not relocated")
	assert.Equal(t, uint16(0xa442), e.mem[31])

	second, err := e.AddProgram(p)
	require.NoError(t, err)
	assert.Equal(t, uint8(24), second)

	fixed := Program{Instructions: []uint16{0xa042}, Origin: 24}
	_, err = e.AddProgram(fixed)
	assert.ErrorIs(t, err, ErrOutOfProgramSpace)

	fixed.Origin = 0
	off, err := e.AddProgram(fixed)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), off)

	big := Program{Instructions: make([]uint16, 24), Origin: -1}
	_, err = e.AddProgram(big)
	assert.ErrorIs(t, err, ErrOutOfProgramSpace)

	_, err = e.AddProgram(Program{Origin: -1})
	assert.ErrorIs(t, err, ErrOutOfProgramSpace)
}

func TestRemoveProgram(t *testing.T) {
	e := NewEmulator(0, 125_000_000)
	p := Program{Instructions: []uint16{0x6221, 0x1123, 0x1400, 0xa442}, Origin: -1, Wrap: 3, SidesetBits: 1}

	first, err := e.AddProgram(p)
	require.NoError(t, err)
	second, err := e.AddProgram(p)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xff000000), e.Used())

	e.RemoveProgram(p, first)
	assert.Equal(t, uint32(0x0f000000), e.Used())
	assert.Zero(t, e.mem[29])

	again, err := e.AddProgram(p)
	require.NoError(t, err)
	assert.Equal(t, first, again, "freed slots not reused")

	e.RemoveProgram(p, again)
	e.RemoveProgram(p, second)
	assert.Zero(t, e.Used())

	// Repeated load and free never runs out of space.
	for i := 0; i < 2*InstructionMemorySize; i++ {
		off, err := e.AddProgram(p)
		require.NoError(t, err, "load %d", i)
		e.RemoveProgram(p, off)
	}
	assert.Zero(t, e.Used())
}
