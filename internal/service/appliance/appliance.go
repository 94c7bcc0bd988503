package appliance

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/dispatcher"
	"github.com/oshokin/alarm-clock/internal/editor"
	"github.com/oshokin/alarm-clock/internal/keypad"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/reconciler"
	"github.com/oshokin/alarm-clock/internal/ticker"
)

// Options controls the appliance process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file; empty uses defaults.
	ConfigPath string
	// Backend overrides the configured backend when not empty.
	Backend string
	// LogLevel overrides the configured log level when not empty.
	LogLevel string
	// Input feeds key codes to the simulator backend.
	Input io.Reader
	// Screen receives the simulator display frames.
	Screen io.Writer
	// Clock replaces the wall clock; nil uses the real one.
	Clock clockwork.Clock
}

// Run loads the configuration, brings up the backend and runs the main loop.
// Bring-up failures are returned; once running, only ctx cancellation ends it.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clock")

	// Load settings and apply command line overrides.
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	clk := opts.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
	}

	// Bring up the devices; any failure here is fatal.
	hw, err := newBackend(ctx, cfg, opts, clk)
	if err != nil {
		return fmt.Errorf("bring up %s backend: %w", cfg.Backend, err)
	}

	defer func() {
		if closeErr := hw.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Close backend failed", "error", closeErr)
		}
	}()

	logger.InfoKV(ctx, "Backend ready", "backend", cfg.Backend, "rtc", hw.busName)

	t := cfg.Timing

	// Wire the components: the tick source realigns on RTC commits and
	// advances the software clock from its own goroutine.
	source := ticker.New(clk, t.Tick)
	rec := reconciler.New(hw.rtc, source, clk, t.ResyncDelay)
	keys := keypad.NewDebouncer(hw.scanner, clk, t.KeySettle, t.KeyPoll)
	ed := editor.New(hw.display, keys, clk, editor.Options{
		IdlePoll:     t.IdlePoll,
		ConfirmDelay: t.ConfirmDelay,
	})

	loop := dispatcher.New(dispatcher.Deps{
		Display: hw.display,
		Keys:    keys,
		Editor:  ed,
		Clock:   rec,
		Output:  hw.output,
		Sleeper: clk,
		Ticks:   source.C(),
	}, dispatcher.Options{
		Pulse:    t.Pulse,
		Splash:   t.Splash,
		IdlePoll: t.IdlePoll,
	})

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		source.Run(ctx, rec.TickIncrement)
	}()

	// The loop only returns once ctx is done, which also stops the tick source.
	err = loop.Run(ctx)

	wg.Wait()

	return err
}

// loadConfig reads the settings file and applies the command line overrides.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.Backend != "" {
		cfg.Backend = opts.Backend
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if err = config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	return cfg, nil
}
