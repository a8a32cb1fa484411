//go:build rp2040 || rp2350

package pio

import (
	"device/rp"
	"machine"
	"runtime"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// Hardware returns the chip's PIO blocks, PIO0 first.
func Hardware() []Block {
	return []Block{
		&hwBlock{pio: rp2pio.PIO0},
		&hwBlock{pio: rp2pio.PIO1},
	}
}

type hwBlock struct {
	pio *rp2pio.PIO
}

func (b *hwBlock) Index() uint8 { return b.pio.BlockIndex() }

func (b *hwBlock) ClockHz() uint32 { return machine.CPUFrequency() }

func (b *hwBlock) ClaimStateMachine() (StateMachine, error) {
	sm, err := b.pio.ClaimStateMachine()
	if err != nil {
		return nil, ErrNoStateMachine
	}
	return &hwStateMachine{sm: sm}, nil
}

func (b *hwBlock) AddProgram(p Program) (uint8, error) {
	offset, err := b.pio.AddProgram(p.Instructions, p.Origin)
	if err != nil {
		return 0, ErrOutOfProgramSpace
	}
	return offset, nil
}

func (b *hwBlock) RemoveProgram(p Program, offset uint8) {
	b.pio.ClearProgramSection(offset, uint8(len(p.Instructions)))
}

type hwStateMachine struct {
	sm rp2pio.StateMachine
}

func (s *hwStateMachine) Index() uint8 { return s.sm.StateMachineIndex() }

func (s *hwStateMachine) Init(offset uint8, c Config) error {
	pin := machine.Pin(c.SidesetPin)
	pin.Configure(machine.PinConfig{Mode: s.sm.PIO().PinMode()})
	s.sm.SetPindirsConsecutive(pin, 1, true)

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetWrap(c.WrapTarget, c.Wrap)
	if c.SidesetBits > 0 {
		cfg.SetSidesetParams(c.SidesetBits, false, false)
		cfg.SetSidesetPins(pin)
	}
	cfg.SetOutShift(c.OutShiftRight, c.Autopull, uint16(c.PullThreshold))
	if c.JoinTx {
		cfg.SetFIFOJoin(rp2pio.FifoJoinTx)
	}
	cfg.SetClkDivIntFrac(c.ClkDivInt, c.ClkDivFrac)
	s.sm.Init(offset, cfg)
	return nil
}

func (s *hwStateMachine) SetEnabled(enabled bool) { s.sm.SetEnabled(enabled) }

func (s *hwStateMachine) Put(word uint32) {
	for s.sm.IsTxFIFOFull() {
		runtime.Gosched()
	}
	s.sm.TxPut(word)
}

// Drain waits for the FIFO to empty, then for the TXSTALL flag that the
// state machine raises when autopull finds nothing left to send.
func (s *hwStateMachine) Drain() error {
	if !s.sm.IsEnabled() {
		return ErrNotEnabled
	}
	for !s.sm.IsTxFIFOEmpty() {
		runtime.Gosched()
	}
	mask := uint32(1) << (s.sm.StateMachineIndex() + rp.PIO0_FDEBUG_TXSTALL_Pos)
	fdebug := &s.sm.PIO().HW().FDEBUG
	fdebug.Set(mask)
	for fdebug.Get()&mask == 0 {
		runtime.Gosched()
	}
	return nil
}

func (s *hwStateMachine) Unclaim() {
	s.sm.SetEnabled(false)
	s.sm.Unclaim()
}
