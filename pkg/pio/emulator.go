package pio

import (
	"fmt"
	"math/bits"
	"sync"
	"time"
)

// Instruction encoding.
const (
	opMask = 0xe000
	opJmp  = 0x0000
	opWait = 0x2000
	opIn   = 0x4000
	opOut  = 0x6000
	opPush = 0x8000
	opMov  = 0xa000
	opIRQ  = 0xc000
	opSet  = 0xe000
)

// maxStepsPerWord bounds how long Drain runs a program before deciding it
// never stalls.
const maxStepsPerWord = 4096

// Pulse is a stretch of constant pin level.
type Pulse struct {
	High   bool
	Cycles int
}

// Waveform is the pin output recorded by an emulated state machine.
type Waveform struct {
	CycleNanos float64
	Pulses     []Pulse
}

func (w *Waveform) add(high bool, cycles int) {
	if cycles == 0 {
		return
	}
	if n := len(w.Pulses); n > 0 && w.Pulses[n-1].High == high {
		w.Pulses[n-1].Cycles += cycles
		return
	}
	w.Pulses = append(w.Pulses, Pulse{High: high, Cycles: cycles})
}

// Cycles returns the total number of recorded cycles.
func (w Waveform) Cycles() int {
	n := 0
	for _, p := range w.Pulses {
		n += p.Cycles
	}
	return n
}

// Duration returns the recorded time.
func (w Waveform) Duration() time.Duration {
	return time.Duration(float64(w.Cycles()) * w.CycleNanos)
}

// Nanos converts a cycle count of this waveform to time.
func (w Waveform) Nanos(cycles int) time.Duration {
	return time.Duration(float64(cycles) * w.CycleNanos)
}

// Emulator is an in-memory PIO block. It claims state machines and loads
// programs like the hardware does and executes the OUT, JMP, MOV and SET
// instructions with side-set and delay, which is enough for one-wire LED
// programs. Each state machine records the waveform on its side-set pin.
type Emulator struct {
	mu      sync.Mutex
	index   uint8
	clockHz uint32
	used    uint32
	claimed uint8
	mem     [InstructionMemorySize]uint16
	sms     [NumStateMachines]*EmulatedStateMachine
}

// NewEmulator returns an emulated block with the given index running from a
// clockHz system clock.
func NewEmulator(index uint8, clockHz uint32) *Emulator {
	e := &Emulator{index: index, clockHz: clockHz}
	for i := range e.sms {
		e.sms[i] = &EmulatedStateMachine{block: e, index: uint8(i)}
	}
	return e
}

// Index implements Block.
func (e *Emulator) Index() uint8 { return e.index }

// ClockHz implements Block.
func (e *Emulator) ClockHz() uint32 { return e.clockHz }

// ClaimStateMachine implements Block.
func (e *Emulator) ClaimStateMachine() (StateMachine, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := uint8(0); i < NumStateMachines; i++ {
		if e.claimed&(1<<i) == 0 {
			e.claimed |= 1 << i
			return e.sms[i], nil
		}
	}
	return nil, ErrNoStateMachine
}

// Claimed returns how many state machines are claimed.
func (e *Emulator) Claimed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return bits.OnesCount8(e.claimed)
}

// Exhaust claims every remaining state machine, as other firmware
// components would.
func (e *Emulator) Exhaust() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.claimed = 1<<NumStateMachines - 1
}

// StateMachine returns state machine i whether or not it is claimed.
func (e *Emulator) StateMachine(i uint8) *EmulatedStateMachine {
	return e.sms[i]
}

// AddProgram implements Block.
func (e *Emulator) AddProgram(p Program) (uint8, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	offset, err := findOffset(e.used, p)
	if err != nil {
		return 0, err
	}
	for i, instr := range p.Instructions {
		e.mem[int(offset)+i] = relocate(instr, offset)
		e.used |= 1 << (uint(offset) + uint(i))
	}
	return offset, nil
}

// RemoveProgram implements Block.
func (e *Emulator) RemoveProgram(p Program, offset uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range p.Instructions {
		slot := int(offset) + i
		if slot >= InstructionMemorySize {
			break
		}
		e.mem[slot] = 0
		e.used &^= 1 << uint(slot)
	}
}

// Used returns the occupied instruction slots, bit i for slot i.
func (e *Emulator) Used() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.used
}

// EmulatedStateMachine is a state machine of an Emulator.
type EmulatedStateMachine struct {
	block *Emulator
	index uint8

	cfg     Config
	inited  bool
	enabled bool

	pc       uint8
	x, y     uint32
	osr      uint32
	osrCount uint8
	fifo     []uint32
	pin      bool

	wave Waveform
}

// Index implements StateMachine.
func (sm *EmulatedStateMachine) Index() uint8 { return sm.index }

// Init implements StateMachine.
func (sm *EmulatedStateMachine) Init(offset uint8, cfg Config) error {
	if cfg.SidesetBits > 5 {
		return fmt.Errorf("pio: %d side-set bits", cfg.SidesetBits)
	}
	if cfg.ClkDivInt == 0 {
		return fmt.Errorf("pio: zero clock divider")
	}
	sm.cfg = cfg
	sm.inited = true
	sm.enabled = false
	sm.pc = offset
	sm.x, sm.y, sm.osr = 0, 0, 0
	sm.osrCount = 32
	sm.fifo = sm.fifo[:0]
	sm.pin = false
	sm.wave = Waveform{CycleNanos: CycleNanos(cfg.ClkDivInt, cfg.ClkDivFrac, sm.block.clockHz)}
	return nil
}

// SetEnabled implements StateMachine.
func (sm *EmulatedStateMachine) SetEnabled(enabled bool) { sm.enabled = enabled }

// Put implements StateMachine. The emulated FIFO never fills.
func (sm *EmulatedStateMachine) Put(word uint32) {
	sm.fifo = append(sm.fifo, word)
}

// Unclaim implements StateMachine.
func (sm *EmulatedStateMachine) Unclaim() {
	sm.block.mu.Lock()
	defer sm.block.mu.Unlock()
	sm.block.claimed &^= 1 << sm.index
	sm.enabled = false
}

// Drain implements StateMachine by running the program until it stalls on
// an empty TX FIFO.
func (sm *EmulatedStateMachine) Drain() error {
	if !sm.inited {
		return ErrNotInitialized
	}
	if !sm.enabled {
		return ErrNotEnabled
	}
	limit := (len(sm.fifo) + 1) * maxStepsPerWord
	for step := 0; step < limit; step++ {
		stalled, err := sm.step()
		if err != nil {
			return err
		}
		if stalled {
			return nil
		}
	}
	return ErrStalled
}

// Waveform returns the pin output recorded since the last Init or Reset.
func (sm *EmulatedStateMachine) Waveform() Waveform {
	w := sm.wave
	w.Pulses = append([]Pulse(nil), sm.wave.Pulses...)
	return w
}

// ResetWaveform discards the recorded output.
func (sm *EmulatedStateMachine) ResetWaveform() {
	sm.wave.Pulses = sm.wave.Pulses[:0]
}

// Idle records d of the pin holding its current level, e.g. a latch gap.
func (sm *EmulatedStateMachine) Idle(d time.Duration) {
	if sm.wave.CycleNanos == 0 {
		return
	}
	sm.wave.add(sm.pin, int(float64(d)/sm.wave.CycleNanos+0.5))
}

// step executes one instruction. It reports stalled when an OUT needs data
// and the FIFO is empty; the side-set still applies to a stalled
// instruction.
func (sm *EmulatedStateMachine) step() (stalled bool, err error) {
	instr := sm.block.mem[sm.pc]
	ssb := sm.cfg.SidesetBits
	delayBits := 5 - ssb
	delay := int(instr>>8) & (1<<delayBits - 1)
	if ssb > 0 {
		side := (instr >> (13 - ssb)) & (1<<ssb - 1)
		sm.pin = side&1 != 0
	}

	next := sm.pc + 1
	if sm.pc == sm.cfg.Wrap {
		next = sm.cfg.WrapTarget
	}

	switch instr & opMask {
	case opJmp:
		if sm.jmpCond((instr >> 5) & 7) {
			next = uint8(instr & 0x1f)
		}
	case opOut:
		if sm.cfg.Autopull && sm.osrCount >= sm.threshold() {
			if len(sm.fifo) == 0 {
				return true, nil
			}
			sm.osr, sm.fifo = sm.fifo[0], sm.fifo[1:]
			sm.osrCount = 0
		}
		n := uint8(instr & 0x1f)
		if n == 0 {
			n = 32
		}
		v := sm.shiftOut(n)
		switch (instr >> 5) & 7 {
		case 1:
			sm.x = v
		case 2:
			sm.y = v
		case 3:
		case 5:
			next = uint8(v & 0x1f)
		default:
			return false, fmt.Errorf("%w: out to destination %d", ErrUnsupported, (instr>>5)&7)
		}
	case opMov:
		v, err := sm.movSource(instr & 7)
		if err != nil {
			return false, err
		}
		switch (instr >> 3) & 3 {
		case 1:
			v = ^v
		case 2:
			v = bits.Reverse32(v)
		}
		switch (instr >> 5) & 7 {
		case 1:
			sm.x = v
		case 2:
			sm.y = v
		case 7:
			sm.osr, sm.osrCount = v, 0
		default:
			return false, fmt.Errorf("%w: mov to destination %d", ErrUnsupported, (instr>>5)&7)
		}
	case opSet:
		v := uint32(instr & 0x1f)
		switch (instr >> 5) & 7 {
		case 1:
			sm.x = v
		case 2:
			sm.y = v
		default:
			return false, fmt.Errorf("%w: set destination %d", ErrUnsupported, (instr>>5)&7)
		}
	default:
		return false, fmt.Errorf("%w: %#04x", ErrUnsupported, instr)
	}

	sm.wave.add(sm.pin, 1+delay)
	sm.pc = next
	return false, nil
}

func (sm *EmulatedStateMachine) threshold() uint8 {
	if sm.cfg.PullThreshold == 0 {
		return 32
	}
	return sm.cfg.PullThreshold
}

func (sm *EmulatedStateMachine) shiftOut(n uint8) uint32 {
	var v uint32
	if sm.cfg.OutShiftRight {
		v = sm.osr & (uint32(1)<<n - 1)
		if n == 32 {
			v, sm.osr = sm.osr, 0
		} else {
			sm.osr >>= n
		}
	} else {
		if n == 32 {
			v, sm.osr = sm.osr, 0
		} else {
			v = sm.osr >> (32 - n)
			sm.osr <<= n
		}
	}
	if sm.osrCount+n > 32 {
		sm.osrCount = 32
	} else {
		sm.osrCount += n
	}
	return v
}

func (sm *EmulatedStateMachine) jmpCond(cond uint16) bool {
	switch cond {
	case 0:
		return true
	case 1:
		return sm.x == 0
	case 2:
		taken := sm.x != 0
		sm.x--
		return taken
	case 3:
		return sm.y == 0
	case 4:
		taken := sm.y != 0
		sm.y--
		return taken
	case 5:
		return sm.x != sm.y
	case 7:
		return sm.osrCount < sm.threshold()
	}
	// JMP PIN: nothing drives the input side.
	return false
}

func (sm *EmulatedStateMachine) movSource(src uint16) (uint32, error) {
	switch src {
	case 1:
		return sm.x, nil
	case 2:
		return sm.y, nil
	case 3:
		return 0, nil
	case 7:
		return sm.osr, nil
	}
	return 0, fmt.Errorf("%w: mov source %d", ErrUnsupported, src)
}
