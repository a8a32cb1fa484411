// Command pio runs colours through the emulated WS2818 state machine and
// prints the waveform that would leave the data pin.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/fkcurrie/ws2818-matrix/internal/types"
	"github.com/fkcurrie/ws2818-matrix/pkg/pio"
	"github.com/fkcurrie/ws2818-matrix/pkg/ws2818"
)

func main() {
	var (
		colors  = pflag.StringSlice("color", []string{"#ff0000"}, "colours to send, #rrggbb")
		pin     = pflag.Uint8("pin", 7, "data pin")
		exhaust = pflag.Int("exhaust", 0, "number of PIO blocks to fill before claiming (0-2)")
		clockHz = pflag.Uint32("clock", 125_000_000, "system clock in Hz")
		pulses  = pflag.Bool("pulses", false, "print every pulse")
	)
	pflag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	blocks := []*pio.Emulator{pio.NewEmulator(0, *clockHz), pio.NewEmulator(1, *clockHz)}
	for i := 0; i < *exhaust && i < len(blocks); i++ {
		blocks[i].Exhaust()
	}

	link, err := ws2818.Open(*pin, blocks[0], blocks[1])
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise link")
	}
	defer link.Close()
	log.Info().Str("binding", link.String()).Uint8("offset", link.Binding().Offset).Msg("link ready")

	sent := make([]ws2818.Color, 0, len(*colors))
	for _, s := range *colors {
		c, err := types.ParseRGB(s)
		if err != nil {
			log.Fatal().Err(err).Msg("bad colour")
		}
		sent = append(sent, ws2818.Color(c))
	}

	sm := blocks[link.Binding().Block.Index()].StateMachine(link.Binding().StateMachine.Index())
	if err := link.SendColors(sent); err != nil {
		log.Fatal().Err(err).Msg("failed to send")
	}
	sm.Idle(link.ResetGap())
	w := sm.Waveform()

	t := link.Timing()
	fmt.Printf("cycle %.1fns  T0H %v T0L %v  T1H %v T1L %v\n", w.CycleNanos, t.T0H, t.T0L, t.T1H, t.T1L)
	fmt.Printf("%d pulses, %v on the wire including %v reset\n", len(w.Pulses), w.Duration(), link.ResetGap())

	if *pulses {
		for _, p := range w.Pulses {
			level := "L"
			if p.High {
				level = "H"
			}
			fmt.Printf("%s %4d  %v\n", level, p.Cycles, w.Nanos(p.Cycles))
		}
	}

	f, err := ws2818.Decode(w, t)
	if err != nil {
		log.Fatal().Err(err).Msg("waveform does not decode")
	}
	got, err := f.Colors()
	if err != nil {
		log.Fatal().Err(err).Msg("waveform does not decode")
	}
	out := make([]string, len(got))
	for i, c := range got {
		out[i] = types.RGB(c).String()
	}
	fmt.Printf("decoded %s, line idle %v\n", strings.Join(out, " "), f.Idle)
}
