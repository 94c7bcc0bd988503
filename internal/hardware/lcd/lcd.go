// Package lcd drives an HD44780 character display through a PCF8574 I2C
// "backpack" in 4-bit mode.
//
// The expander pins are wired P0=RS, P1=RW, P2=EN, P3=backlight and
// P4-P7=D4-D7, the layout of the common 0x27/0x3F modules. RW is kept low:
// the busy flag is never read, fixed delays cover the slow commands.
package lcd

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// Sleeper suspends the caller for a fixed duration.
type Sleeper interface {
	Sleep(d time.Duration)
}

const (
	// DefaultAddress is the usual backpack address.
	DefaultAddress = 0x27

	pinRS        = 0b0000_0001
	pinEN        = 0b0000_0100
	pinBacklight = 0b0000_1000

	cmdClear          = 0x01
	cmdEntryMode      = 0x04
	cmdDisplayControl = 0x08
	cmdFunctionSet    = 0x20
	cmdSetDDRAM       = 0x80

	entryIncrement = 0x02
	displayOn      = 0x04
	cursorOn       = 0x02
	blinkOn        = 0x01
	twoLines       = 0x08
)

// rowOffsets are the DDRAM addresses of the first column of each row.
var rowOffsets = [...]int{0x00, 0x40, 0x14, 0x54}

// errOutOfBounds is returned for a cursor position off the display.
var errOutOfBounds = errors.New("lcd: cursor out of bounds")

// Device is an HD44780 behind a PCF8574.
type Device struct {
	dev       *i2c.Dev
	sleeper   Sleeper
	columns   int
	rows      int
	backlight byte
	control   byte
}

// New creates a driver for a columns x rows display; Init must be called before use.
func New(bus i2c.Bus, addr uint16, sleeper Sleeper, columns, rows int) *Device {
	if addr == 0 {
		addr = DefaultAddress
	}

	return &Device{
		dev:       &i2c.Dev{Bus: bus, Addr: addr},
		sleeper:   sleeper,
		columns:   columns,
		rows:      rows,
		backlight: pinBacklight,
		control:   displayOn,
	}
}

// Init runs the 4-bit initialization by instruction sequence and clears the display.
func (d *Device) Init() error {
	// Wait for Vcc to settle after power-on.
	d.sleeper.Sleep(50 * time.Millisecond)

	steps := []struct {
		nibble byte
		wait   time.Duration
	}{
		{0x30, 4500 * time.Microsecond},
		{0x30, 4500 * time.Microsecond},
		{0x30, 150 * time.Microsecond},
		{0x20, 150 * time.Microsecond},
	}
	for _, s := range steps {
		if err := d.writeNibble(s.nibble, 0); err != nil {
			return fmt.Errorf("lcd init: %w", err)
		}

		d.sleeper.Sleep(s.wait)
	}

	if err := d.command(cmdFunctionSet | twoLines); err != nil {
		return fmt.Errorf("lcd function set: %w", err)
	}

	if err := d.command(cmdDisplayControl | d.control); err != nil {
		return fmt.Errorf("lcd display control: %w", err)
	}

	if err := d.Clear(); err != nil {
		return err
	}

	if err := d.command(cmdEntryMode | entryIncrement); err != nil {
		return fmt.Errorf("lcd entry mode: %w", err)
	}

	return nil
}

// Clear blanks the display and homes the cursor.
func (d *Device) Clear() error {
	if err := d.command(cmdClear); err != nil {
		return fmt.Errorf("lcd clear: %w", err)
	}

	d.sleeper.Sleep(2 * time.Millisecond)

	return nil
}

// SetCursor moves the write position.
func (d *Device) SetCursor(row, column int) error {
	if row < 0 || row >= d.rows || column < 0 || column >= d.columns {
		return fmt.Errorf("%w: row %d column %d", errOutOfBounds, row, column)
	}

	return d.command(cmdSetDDRAM | byte(rowOffsets[row]+column))
}

// Print writes text at the cursor. Characters past the visible width land in
// the off-screen part of the row.
func (d *Device) Print(text string) error {
	for i := range len(text) {
		if err := d.send(text[i], pinRS); err != nil {
			return fmt.Errorf("lcd print: %w", err)
		}
	}

	return nil
}

// ShowCursor toggles the underline cursor and blinking together.
func (d *Device) ShowCursor(on bool) error {
	if on {
		d.control |= cursorOn | blinkOn
	} else {
		d.control &^= cursorOn | blinkOn
	}

	return d.command(cmdDisplayControl | d.control)
}

// SetBacklight switches the backlight; it takes effect with the next write.
func (d *Device) SetBacklight(on bool) error {
	d.backlight = 0
	if on {
		d.backlight = pinBacklight
	}

	return d.dev.Tx([]byte{d.backlight}, nil)
}

func (d *Device) command(b byte) error {
	return d.send(b, 0)
}

// send clocks one byte as two nibbles in a single bus write.
func (d *Device) send(b, mode byte) error {
	hi := b&0xF0 | mode | d.backlight
	lo := b<<4 | mode | d.backlight

	return d.dev.Tx([]byte{hi | pinEN, hi, lo | pinEN, lo}, nil)
}

func (d *Device) writeNibble(n, mode byte) error {
	v := n&0xF0 | mode | d.backlight

	return d.dev.Tx([]byte{v | pinEN, v}, nil)
}
