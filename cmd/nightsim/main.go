// Command nightsim runs the nightlight engine on a simulated board, printing
// every frame the LED latches and optionally mirroring it to a real LED
// behind a serial controller.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"libdb.so/nightlight"
	"libdb.so/nightlight/effect"
	"libdb.so/nightlight/engine"
	"libdb.so/nightlight/sim"
	"libdb.so/nightlight/wire"
)

var (
	config     = "nightlight.toml"
	verbose    = false
	effectName = ""
	samples    = ""
	steps      = 0
	speed      = 1.0
	device     = ""
	baud       = 0
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file, defaults are used if missing")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose logging")
	pflag.StringVar(&effectName, "effect", effectName, "effect to play, overrides the configuration")
	pflag.StringVar(&samples, "samples", samples, "comma-separated light samples to replay, overrides the configuration")
	pflag.IntVar(&steps, "steps", steps, "number of engine steps to run, 0 runs until interrupted")
	pflag.Float64Var(&speed, "speed", speed, "simulation speed relative to the tick, 0 runs unpaced")
	pflag.StringVar(&device, "device", device, "serial port of an LED controller to mirror frames to")
	pflag.IntVar(&baud, "baud", baud, "baud rate of the LED controller, overrides the configuration")
}

func main() {
	log.SetFlags(0)
	pflag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, logger); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := readConfig(logger)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	script, err := cfg.Sim.Script()
	if err != nil {
		return fmt.Errorf("invalid sim samples: %w", err)
	}
	if samples != "" {
		script, err = sim.ParseScript(samples)
		if err != nil {
			return fmt.Errorf("invalid --samples: %w", err)
		}
		script.Loop()
	}

	board := sim.NewBoard(script)
	board.Sleeper.Ladder = cfg.Ladder()

	pacer := &sim.Pacer{
		Clock: clockwork.NewRealClock(),
		Tick:  time.Duration(cfg.Sim.Tick),
		Speed: speed,
	}
	board.Pace = func(ticks uint16) { pacer.Wait(ctx, ticks) }

	var mirror *sim.Mirror
	if cfg.Sim.Device != "" {
		mirror = sim.NewMirror(logger.With("component", "mirror"))
	}

	board.OnFrame = func(frame [wire.FrameSize]byte) {
		r, g, b := engine.Color(frame).RGB()
		c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		logger.Info("frame", "tick", board.Now(), "color", c.Hex())

		if mirror != nil {
			mirror.Queue(frame)
		}
	}

	e, err := nightlight.NewEngine(cfg, engine.Devices{
		LED:     board.LED,
		Sensor:  board.Sensor,
		Sleeper: board.Sleeper,
	}, logger.With("component", "engine"))
	if err != nil {
		return err
	}

	errg, ctx := errgroup.WithContext(ctx)

	if mirror != nil {
		port, err := sim.OpenSerial(cfg.Sim.Device, cfg.Sim.Baud)
		if err != nil {
			return err
		}
		errg.Go(func() error {
			return mirror.Run(ctx, port)
		})
	}

	errg.Go(func() error {
		defer reportViolations(logger, board)
		if steps <= 0 {
			return e.Run(ctx)
		}
		return runSteps(ctx, e, steps)
	})

	return errg.Wait()
}

// runSteps boots e and runs n steps. It returns context.Canceled once done so
// that the mirror stops too.
func runSteps(ctx context.Context, e *engine.Engine, n int) error {
	if err := e.Boot(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.Step()
	}
	return context.Canceled
}

func reportViolations(logger *slog.Logger, board *sim.Board) {
	for _, err := range board.Violations() {
		logger.Error("hardware rule violated", "err", err)
	}
}

func readConfig(logger *slog.Logger) (*nightlight.Config, error) {
	cfg := nightlight.DefaultConfig()

	f, err := os.Open(config)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug("no config file, using defaults", "path", config)
	case err != nil:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	default:
		defer f.Close()
		cfg, err = nightlight.ParseConfig(f)
		if err != nil {
			return nil, err
		}
	}

	if effectName != "" {
		cfg.Effect = effect.Kind(effectName)
	}
	if device != "" {
		cfg.Sim.Device = device
	}
	if baud != 0 {
		cfg.Sim.Baud = baud
	}

	return cfg, nil
}
