package appliance

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/multierr"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/dispatcher"
	"github.com/oshokin/alarm-clock/internal/keypad"
	"github.com/oshokin/alarm-clock/internal/reconciler"
)

// display is what both the editor and the dispatcher draw on.
type display interface {
	Clear() error
	SetCursor(row, column int) error
	Print(text string) error
	ShowCursor(on bool) error
}

// backend is a set of brought-up devices.
type backend struct {
	// busName identifies the RTC bus in logs.
	busName string
	rtc     reconciler.RTC
	display display
	scanner keypad.Scanner
	output  dispatcher.Output
	// closers release the devices in reverse order.
	closers []func() error
}

func newBackend(ctx context.Context, cfg *config.Config, opts *Options, clk clockwork.Clock) (*backend, error) {
	if cfg.Backend == config.BackendPeriph {
		return newPeriphBackend(ctx, cfg, clk)
	}

	return newSimulatorBackend(ctx, cfg, opts, clk), nil
}

// Close releases every device, collecting all failures.
func (b *backend) Close() error {
	var err error

	for i := len(b.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, b.closers[i]())
	}

	b.closers = nil

	return err
}
