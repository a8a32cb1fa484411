// Package pio models the programmable I/O blocks found on RP2040 and RP2350
// microcontrollers: a block holds 32 instruction slots and four state
// machines, and a state machine runs a small program that shifts words from
// its TX FIFO onto GPIO pins with cycle-exact timing.
//
// The package defines the hardware-neutral Block and StateMachine interfaces,
// the claim-with-fallback logic used to bind a driver to a state machine, and
// an in-memory Emulator that executes programs and records the resulting pin
// waveform. The RP2040/RP2350 backend lives in rp2.go behind build tags.
package pio

import (
	"errors"
	"fmt"
)

const (
	// NumStateMachines is the number of state machines per PIO block.
	NumStateMachines = 4
	// InstructionMemorySize is the number of instruction slots per PIO block.
	InstructionMemorySize = 32
)

// PIO errors.
var (
	// ErrNoStateMachine reports that no block had an unclaimed state machine.
	// A driver that sees it cannot run and must not continue.
	ErrNoStateMachine    = errors.New("pio: no free state machine")
	ErrOutOfProgramSpace = errors.New("pio: out of program space")
	ErrNotEnabled        = errors.New("pio: state machine not enabled")
	ErrNotInitialized    = errors.New("pio: state machine not initialized")
	ErrStalled           = errors.New("pio: program did not stall on an empty FIFO")
	ErrUnsupported       = errors.New("pio: unsupported instruction")
)

// Program is an assembled PIO program as produced by pioasm.
type Program struct {
	Instructions []uint16
	// Origin is the fixed load offset, or -1 when the program is relocatable.
	Origin int8
	// WrapTarget and Wrap are relative to the start of the program.
	WrapTarget uint8
	Wrap       uint8
	// SidesetBits is the number of delay bits stolen for side-set (.side_set N).
	SidesetBits uint8
}

// Len returns the number of instructions in the program.
func (p Program) Len() int {
	return len(p.Instructions)
}

// Config holds the state machine settings a driver needs. Wrap addresses are
// absolute, i.e. already include the program offset.
type Config struct {
	WrapTarget uint8
	Wrap       uint8

	SidesetBits uint8
	SidesetPin  uint8

	OutShiftRight bool
	Autopull      bool
	PullThreshold uint8

	// JoinTx gives the TX FIFO the RX FIFO's storage (8 entries instead of 4).
	JoinTx bool

	ClkDivInt  uint16
	ClkDivFrac uint8
}

// Block is one PIO block.
type Block interface {
	// Index returns 0 for PIO0, 1 for PIO1 and so on.
	Index() uint8
	// ClockHz returns the system clock the block's clock dividers divide.
	ClockHz() uint32
	// ClaimStateMachine claims an unused state machine. It returns
	// ErrNoStateMachine when all four are taken.
	ClaimStateMachine() (StateMachine, error)
	// AddProgram loads p into instruction memory and returns its offset.
	AddProgram(p Program) (uint8, error)
	// RemoveProgram frees the instruction slots p occupies at offset.
	RemoveProgram(p Program, offset uint8)
}

// StateMachine is one claimed state machine of a Block.
type StateMachine interface {
	Index() uint8
	// Init configures the state machine and points its program counter at
	// offset. The side-set pin is switched to PIO function.
	Init(offset uint8, cfg Config) error
	SetEnabled(enabled bool)
	// Put pushes a word into the TX FIFO, waiting while the FIFO is full.
	Put(word uint32)
	// Drain returns once the TX FIFO is empty and the program has stalled
	// waiting for more data, i.e. the last bit has left the pin.
	Drain() error
	// Unclaim releases the state machine back to its block.
	Unclaim()
}

// Binding records which block and state machine a driver owns.
type Binding struct {
	Block        Block
	StateMachine StateMachine
	Offset       uint8
	Pin          uint8
}

// String returns e.g. "pio1 sm2 gpio7".
func (b Binding) String() string {
	if b.Block == nil || b.StateMachine == nil {
		return "unbound"
	}
	return fmt.Sprintf("pio%d sm%d gpio%d", b.Block.Index(), b.StateMachine.Index(), b.Pin)
}

// Claim claims one unused state machine, trying blocks in order. The first
// block is the primary unit and the rest are fallbacks. If every block is
// exhausted Claim returns ErrNoStateMachine; there is no partial result.
// Any other error from a block is returned as is.
func Claim(blocks ...Block) (Binding, error) {
	for _, b := range blocks {
		if b == nil {
			continue
		}
		sm, err := b.ClaimStateMachine()
		if errors.Is(err, ErrNoStateMachine) {
			continue
		}
		if err != nil {
			return Binding{}, fmt.Errorf("failed to claim on pio%d: %w", b.Index(), err)
		}
		return Binding{Block: b, StateMachine: sm}, nil
	}
	return Binding{}, ErrNoStateMachine
}

// ClkDivFromFrequency returns the clock divider that runs a state machine at
// freq given the system clock clockHz.
//
//	freq = clockHz / (whole + frac/256)
func ClkDivFromFrequency(freq, clockHz uint32) (whole uint16, frac uint8, err error) {
	if freq == 0 {
		return 0, 0, errors.New("pio: zero frequency")
	}
	div := 256 * uint64(clockHz) / uint64(freq)
	if div > 256*0xffff {
		return 0, 0, fmt.Errorf("pio: clock divider too large for %d Hz from %d Hz", freq, clockHz)
	}
	if div < 256 {
		return 0, 0, fmt.Errorf("pio: clock divider too small for %d Hz from %d Hz", freq, clockHz)
	}
	return uint16(div / 256), uint8(div % 256), nil
}

// CycleNanos returns the length of one state machine cycle in nanoseconds.
func CycleNanos(whole uint16, frac uint8, clockHz uint32) float64 {
	div := float64(whole) + float64(frac)/256
	return div * 1e9 / float64(clockHz)
}

// findOffset picks where a program goes, working down from the top of
// instruction memory for relocatable programs.
func findOffset(used uint32, p Program) (uint8, error) {
	n := p.Len()
	if n == 0 || n > InstructionMemorySize {
		return 0, ErrOutOfProgramSpace
	}
	mask := uint32(1)<<uint(n) - 1
	if n == InstructionMemorySize {
		mask = 0xffffffff
	}
	if p.Origin >= 0 {
		if int(p.Origin) > InstructionMemorySize-n || used&(mask<<uint(p.Origin)) != 0 {
			return 0, ErrOutOfProgramSpace
		}
		return uint8(p.Origin), nil
	}
	for i := InstructionMemorySize - n; i >= 0; i-- {
		if used&(mask<<uint(i)) == 0 {
			return uint8(i), nil
		}
	}
	return 0, ErrOutOfProgramSpace
}

// relocate patches JMP targets for a program loaded at offset.
func relocate(instr uint16, offset uint8) uint16 {
	if instr&opMask == opJmp {
		return instr + uint16(offset)
	}
	return instr
}
