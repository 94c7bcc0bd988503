package appliance

import (
	"bufio"
	"context"
	"io"

	"github.com/jonboulle/clockwork"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/hardware/ds1307"
	"github.com/oshokin/alarm-clock/internal/hardware/sim"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// newSimulatorBackend builds in-memory devices. The chip starts at the wall
// clock time of day; key codes are read line by line from opts.Input.
func newSimulatorBackend(ctx context.Context, cfg *config.Config, opts *Options, clk clockwork.Clock) *backend {
	now := clk.Now()

	initial := ds1307.PlaceholderDate
	initial.Hour = uint8(now.Hour())     //nolint:gosec // 0-23.
	initial.Minute = uint8(now.Minute()) //nolint:gosec // 0-59.
	initial.Second = uint8(now.Second()) //nolint:gosec // 0-59.

	chip := sim.NewRTC(clk, initial)
	keys := sim.NewKeypad(clk, sim.DefaultHold, sim.DefaultGap)

	if opts.Input != nil {
		go feedKeys(ctx, keys, opts.Input)
	}

	return &backend{
		busName: chip.String(),
		rtc:     ds1307.New(chip, ds1307.Address),
		display: sim.NewDisplay(cfg.LCD.Columns, cfg.LCD.Rows, opts.Screen),
		scanner: keys,
		output:  sim.NewOutput(ctx),
	}
}

// feedKeys queues every line of r as key presses until r is exhausted or ctx is done.
func feedKeys(ctx context.Context, keys *sim.Keypad, r io.Reader) {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		if err := keys.FeedLine(scanner.Text()); err != nil {
			logger.WarnKV(ctx, "Ignoring input line", "error", err)
		}
	}

	if err := scanner.Err(); err != nil {
		logger.WarnKV(ctx, "Read key input failed", "error", err)
	}
}
