package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/fkcurrie/ws2818-matrix/internal/config"
	"github.com/fkcurrie/ws2818-matrix/internal/display"
	"github.com/fkcurrie/ws2818-matrix/internal/types"
	"github.com/fkcurrie/ws2818-matrix/pkg/matrix"
)

func main() {
	var (
		configPath  = pflag.StringP("config", "c", "config.yaml", "path to config file")
		backend     = pflag.String("backend", "", "link backend: sim | spi")
		width       = pflag.Int("width", 0, "matrix width")
		height      = pflag.Int("height", 0, "matrix height")
		spiPort     = pflag.String("spi-port", "", "SPI port name (spi backend)")
		enableLine  = pflag.Int("enable-line", -2, "level shifter OE gpio, -1 for none (spi backend)")
		mode        = pflag.String("mode", "", "scene: countdown | traffic")
		interval    = pflag.Duration("interval", 0, "time between frames")
		duration    = pflag.Duration("duration", 0, "stop after this long, 0 runs until interrupted")
		writeConfig = pflag.Bool("write-config", false, "write the effective config to --config and exit")
		verbose     = pflag.BoolP("verbose", "v", false, "verbose logging")
	)
	pflag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, found, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
	}
	if !found {
		log.Info().Str("path", *configPath).Msg("no config file, using defaults")
	}

	// Flags override the file.
	if *backend != "" {
		cfg.Driver.Backend = types.Backend(*backend)
	}
	if *width > 0 {
		cfg.Display.Width = *width
	}
	if *height > 0 {
		cfg.Display.Height = *height
	}
	if *spiPort != "" {
		cfg.SPI.Port = *spiPort
	}
	if *enableLine >= -1 {
		cfg.SPI.EnableLine = *enableLine
	}
	if *mode != "" {
		cfg.Countdown.Mode = *mode
	}
	if *interval > 0 {
		cfg.Countdown.IntervalMs = int(*interval / time.Millisecond)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if *writeConfig {
		if err := config.Save(*configPath, cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to write config")
		}
		log.Info().Str("path", *configPath).Msg("config written")
		return
	}

	if err := lockMemory(); err != nil {
		log.Warn().Err(err).Msg("could not lock memory; frames may jitter under load")
	}

	m, err := openMatrix(cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open matrix")
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close matrix")
		}
	}()

	var scene display.Scene
	switch cfg.Countdown.Mode {
	case "traffic":
		scene = display.NewTrafficLight(cfg.Display.Height)
	default:
		cd, err := display.NewCountdown(cfg.Countdown.Start, cfg.Countdown.Color.Color(cfg.Countdown.Brightness))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create countdown")
		}
		scene = cd
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	r := display.NewRenderer(cfg.Interval(), log.Logger)
	r.SetMatrix(m)
	r.SetScene(scene)

	log.Info().
		Str("geometry", cfg.Geometry().String()).
		Str("backend", string(cfg.Driver.Backend)).
		Str("mode", cfg.Countdown.Mode).
		Dur("interval", cfg.Interval()).
		Msg("starting")

	if err := r.Start(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		log.Error().Err(err).Msg("renderer stopped")
	}
	log.Info().Int("frames", r.Frames()).Msg("shutting down")
}

func openMatrix(cfg *config.Config, logger zerolog.Logger) (*matrix.Matrix, error) {
	switch cfg.Driver.Backend {
	case types.BackendSPI:
		return openSPI(cfg, logger)
	default:
		return openSim(cfg, logger)
	}
}
