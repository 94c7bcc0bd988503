// Package ds1307 implements a driver for the DS1307 Real-Time Clock over
// periph.io I2C, providing read-write of the current time and date. The
// square wave output and the battery-backed RAM remain unused.
//
// Datasheet: https://www.analog.com/media/en/technical-documentation/data-sheets/DS1307.pdf
package ds1307

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
)

// ErrInvalidTime is returned when the chip holds non-BCD or out-of-range time.
var ErrInvalidTime = errors.New("ds1307: invalid time registers")

// Time is the decoded content of the seven time registers.
type Time struct {
	Hour   uint8
	Minute uint8
	Second uint8
	// Day is the day of week, 1-7.
	Day uint8
	// Date is the day of month, 1-31.
	Date  uint8
	Month uint8
	// Year is the year within the century.
	Year uint8
}

// PlaceholderDate is written with every time: the appliance keeps no calendar.
var PlaceholderDate = Time{Day: 1, Date: 1, Month: 1, Year: 24}

// Device is a DS1307 on an I2C bus.
type Device struct {
	dev *i2c.Dev
}

// New returns a driver for the chip at addr; 0 selects Address.
func New(bus i2c.Bus, addr uint16) *Device {
	if addr == 0 {
		addr = Address
	}

	return &Device{
		dev: &i2c.Dev{Bus: bus, Addr: addr},
	}
}

// Running reports whether the oscillator is enabled.
func (d *Device) Running() (bool, error) {
	buf := [1]byte{}
	if err := d.dev.Tx([]byte{Seconds}, buf[:]); err != nil {
		return false, err
	}

	return buf[0]&clockHalt == 0, nil
}

// Now reads the time registers.
func (d *Device) Now() (Time, error) {
	buf := [TimeRegisters]byte{}
	if err := d.dev.Tx([]byte{Seconds}, buf[:]); err != nil {
		return Time{}, err
	}

	return Decode(buf)
}

// Set writes t, starting the oscillator and selecting 24-hour mode.
func (d *Device) Set(t Time) error {
	regs := Encode(t)

	w := make([]byte, 0, 1+len(regs))
	w = append(w, Seconds)
	w = append(w, regs[:]...)

	return d.dev.Tx(w, nil)
}

// ReadTime returns the chip time of day.
func (d *Device) ReadTime() (clock.TimeOfDay, error) {
	t, err := d.Now()
	if err != nil {
		return clock.TimeOfDay{}, err
	}

	return clock.TimeOfDay{Hour: t.Hour, Minute: t.Minute, Second: t.Second}, nil
}

// WriteTime stores tod together with PlaceholderDate.
func (d *Device) WriteTime(tod clock.TimeOfDay) error {
	if err := tod.Validate(); err != nil {
		return err
	}

	t := PlaceholderDate
	t.Hour, t.Minute, t.Second = tod.Hour, tod.Minute, tod.Second

	return d.Set(t)
}

// Decode converts raw registers, accepting either hour mode and ignoring the clock-halt bit.
func Decode(regs [TimeRegisters]byte) (Time, error) {
	var (
		t   Time
		err error
	)

	field := func(b byte) uint8 {
		v, ok := DecodeBCD(b)
		if !ok && err == nil {
			err = fmt.Errorf("%w: %#02x is not BCD", ErrInvalidTime, b)
		}

		return v
	}

	t.Second = field(regs[0] &^ clockHalt)
	t.Minute = field(regs[1])
	t.Hour = decodeHour(regs[2], field)
	t.Day = field(regs[3])
	t.Date = field(regs[4])
	t.Month = field(regs[5])
	t.Year = field(regs[6])

	if err != nil {
		return Time{}, err
	}

	tod := clock.TimeOfDay{Hour: t.Hour, Minute: t.Minute, Second: t.Second}
	if verr := tod.Validate(); verr != nil {
		return Time{}, fmt.Errorf("%w: %w", ErrInvalidTime, verr)
	}

	return t, nil
}

func decodeHour(b byte, field func(byte) uint8) uint8 {
	if b&mode12Hour == 0 {
		return field(b & 0x3F)
	}

	h := field(b & 0x1F)
	if h == 12 {
		h = 0
	}

	if b&pm != 0 {
		h += 12
	}

	return h
}

// Encode converts t to raw registers in 24-hour mode with the oscillator running.
func Encode(t Time) [TimeRegisters]byte {
	return [TimeRegisters]byte{
		EncodeBCD(t.Second),
		EncodeBCD(t.Minute),
		EncodeBCD(t.Hour),
		EncodeBCD(t.Day),
		EncodeBCD(t.Date),
		EncodeBCD(t.Month),
		EncodeBCD(t.Year),
	}
}

// EncodeBCD converts 0-99 to packed BCD.
func EncodeBCD(v uint8) byte {
	return (v/10)<<4 | v%10
}

// DecodeBCD converts packed BCD, reporting false for a nibble above 9.
func DecodeBCD(b byte) (uint8, bool) {
	hi, lo := b>>4, b&0x0F
	if hi > 9 || lo > 9 {
		return 0, false
	}

	return hi*10 + lo, true
}
