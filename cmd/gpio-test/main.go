//go:build linux

// Command gpio-test toggles a GPIO line once a second, for checking the
// level shifter enable wiring.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/fkcurrie/ws2818-matrix/pkg/gpio"
)

func main() {
	var (
		line   = pflag.Int("line", 5, "line offset")
		chips  = pflag.StringSlice("chip", gpio.DefaultChips, "chips to try in order")
		period = pflag.Duration("period", time.Second, "toggle period")
		pulse  = pflag.Duration("pulse", 0, "drive one high pulse of this length and exit")
	)
	pflag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	// Set up signal handler for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	pin, err := gpio.NewPin(*line, gpio.WithChips(*chips...), gpio.WithLogger(log.Logger), gpio.WithConsumer("gpio-test"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to request line")
	}
	defer pin.Close()
	log.Info().Str("line", pin.String()).Msg("requested line")

	if *pulse > 0 {
		if err := pin.Pulse(*pulse); err != nil {
			log.Fatal().Err(err).Msg("failed to pulse line")
		}
		log.Info().Dur("pulse", *pulse).Msg("pulsed")
		return
	}

	ticker := time.NewTicker(*period)
	defer ticker.Stop()
	value := 0
	for {
		select {
		case <-sigChan:
			log.Info().Msg("shutting down")
			pin.SetValue(0)
			return
		case <-ticker.C:
			value ^= 1
			if err := pin.SetValue(value); err != nil {
				log.Error().Err(err).Msg("failed to set value")
				continue
			}
			log.Info().Int("value", value).Msg("set")
		}
	}
}
