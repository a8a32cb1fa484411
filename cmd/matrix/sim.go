package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fkcurrie/ws2818-matrix/internal/config"
	"github.com/fkcurrie/ws2818-matrix/pkg/matrix"
	"github.com/fkcurrie/ws2818-matrix/pkg/pio"
	"github.com/fkcurrie/ws2818-matrix/pkg/ws2818"
)

// simClockHz is the RP2040 default system clock.
const simClockHz = 125_000_000

// simLink runs frames through the PIO emulator and checks the waveform
// that would leave the pin.
type simLink struct {
	*ws2818.Link
	sm  *pio.EmulatedStateMachine
	log zerolog.Logger
}

func (l *simLink) Send(grb []uint32) error {
	l.sm.ResetWaveform()
	if err := l.Link.Send(grb); err != nil {
		return err
	}
	f, err := ws2818.Decode(l.sm.Waveform(), l.Timing())
	if err != nil {
		return fmt.Errorf("bad waveform: %w", err)
	}
	if len(f.Bits) != 24*len(grb) {
		return fmt.Errorf("sent %d bits, want %d", len(f.Bits), 24*len(grb))
	}
	l.log.Debug().
		Int("bits", len(f.Bits)).
		Dur("wire", l.sm.Waveform().Duration()).
		Msg("frame on wire")
	return nil
}

// sleep holds the emulated pin low for the reset gap, in real time too.
func (l *simLink) sleep(d time.Duration) {
	l.sm.Idle(d)
	time.Sleep(d)
}

func openSim(cfg *config.Config, logger zerolog.Logger) (*matrix.Matrix, error) {
	blocks := []pio.Block{
		pio.NewEmulator(0, simClockHz),
		pio.NewEmulator(1, simClockHz),
	}
	link, err := ws2818.OpenConfig(uint8(cfg.Display.Pin), cfg.Link(), blocks...)
	if err != nil {
		return nil, err
	}
	emu := blocks[link.Binding().Block.Index()].(*pio.Emulator)
	sl := &simLink{
		Link: link,
		sm:   emu.StateMachine(link.Binding().StateMachine.Index()),
		log:  logger,
	}
	logger.Info().Str("binding", link.String()).Msg("emulated link ready")
	return matrix.New(cfg.Geometry(), sl, matrix.WithSleep(sl.sleep))
}
