package appliance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/hardware/ds1307"
	"github.com/oshokin/alarm-clock/internal/hardware/lcd"
	"github.com/oshokin/alarm-clock/internal/hardware/output"
	"github.com/oshokin/alarm-clock/internal/keypad"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// errUnknownPin is returned for a GPIO name the host does not expose.
var errUnknownPin = errors.New("unknown gpio pin")

// newPeriphBackend opens the I2C bus and the GPIO pins of the board.
//
//nolint:cyclop,funlen // Linear bring-up sequence; each step only checks its error.
func newPeriphBackend(ctx context.Context, cfg *config.Config, clk clockwork.Clock) (hw *backend, err error) {
	// Two processes scanning the same matrix and bus corrupt each other.
	if err = ensureSingleInstance(ctx, listProcesses); err != nil {
		return nil, err
	}

	if _, err = host.Init(); err != nil {
		return nil, fmt.Errorf("initialize host drivers: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2C.Bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", cfg.I2C.Bus, err)
	}

	hw = &backend{busName: bus.String()}
	hw.closers = append(hw.closers, bus.Close)

	// Release whatever was opened when a later step fails.
	defer func() {
		if err != nil {
			err = multierr.Append(err, hw.Close())
			hw = nil
		}
	}()

	speed := physic.Frequency(cfg.I2C.SpeedKHz) * physic.KiloHertz
	if speedErr := bus.SetSpeed(speed); speedErr != nil {
		// Most Linux adapters fix the clock in the device tree.
		logger.DebugKV(ctx, "Bus speed not applied", "speed", speed.String(), "error", speedErr)
	}

	rtc := ds1307.New(bus, cfg.RTC.Address)
	checkOscillator(ctx, rtc)

	hw.rtc = rtc

	screen := lcd.New(bus, cfg.LCD.Address, clk, cfg.LCD.Columns, cfg.LCD.Rows)
	if err = screen.Init(); err != nil {
		return hw, fmt.Errorf("initialize display: %w", err)
	}

	hw.display = screen
	hw.closers = append(hw.closers, func() error {
		return screen.SetBacklight(false)
	})

	rows := make([]gpio.PinOut, 0, len(cfg.Keypad.Rows))
	for _, name := range cfg.Keypad.Rows {
		pin, lookupErr := lookupPin(name)
		if lookupErr != nil {
			return hw, lookupErr
		}

		rows = append(rows, pin)
	}

	columns := make([]gpio.PinIn, 0, len(cfg.Keypad.Columns))
	for _, name := range cfg.Keypad.Columns {
		pin, lookupErr := lookupPin(name)
		if lookupErr != nil {
			return hw, lookupErr
		}

		columns = append(columns, pin)
	}

	matrix, err := keypad.NewMatrix(rows, columns, layoutCodes(cfg.Keypad.Layout))
	if err != nil {
		return hw, fmt.Errorf("configure keypad: %w", err)
	}

	hw.scanner = matrix

	outPin, err := lookupPin(cfg.Output.Pin)
	if err != nil {
		return hw, err
	}

	line, err := output.New(outPin, cfg.Output.ActiveLow)
	if err != nil {
		return hw, fmt.Errorf("configure output: %w", err)
	}

	hw.output = line
	hw.closers = append(hw.closers, func() error {
		return line.Set(false)
	})

	return hw, nil
}

// checkOscillator warns when the chip is unreachable or halted. Neither is fatal:
// the software clock covers a missing chip and setting the time restarts it.
func checkOscillator(ctx context.Context, rtc *ds1307.Device) {
	running, err := rtc.Running()
	if err != nil {
		logger.WarnKV(ctx, "RTC not responding, using software clock", "error", err)

		return
	}

	if !running {
		logger.Warn(ctx, "RTC oscillator halted, set the time to start it")
	}
}

func lookupPin(name string) (gpio.PinIO, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("%w: %q", errUnknownPin, name)
	}

	return pin, nil
}

// layoutCodes converts a configured layout; nil keeps the identity layout.
func layoutCodes(layout []int) []keypad.Code {
	if layout == nil {
		return nil
	}

	codes := make([]keypad.Code, len(layout))
	for i, v := range layout {
		codes[i] = keypad.Code(v) //nolint:gosec // Validated to 0-15 by config.
	}

	return codes
}
