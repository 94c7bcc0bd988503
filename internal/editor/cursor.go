package editor

import (
	"github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/keypad"
)

// field names one of the three time components.
type field uint8

const (
	hours field = iota
	minutes
	seconds
)

// limit is the clamp rule of one field.
type limit struct {
	// max is the largest value of the field; units entry clamps to it.
	max uint8
	// tensClamp replaces an out-of-range value produced by tens entry.
	tensClamp uint8
}

var limits = [...]limit{
	hours:   {max: clock.MaxHour, tensClamp: 20},
	minutes: {max: clock.MaxMinute, tensClamp: 50},
	seconds: {max: clock.MaxSecond, tensClamp: 50},
}

// slot is one cursor position.
type slot struct {
	field  field
	tens   bool
	column int
}

// Positions is the number of cursor positions.
const Positions = 6

// slots maps each cursor position to its half-digit and display column
// inside "HH:MM:SS" rendered from column 2.
var slots = [Positions]slot{
	{field: hours, tens: true, column: 2},
	{field: hours, tens: false, column: 3},
	{field: minutes, tens: true, column: 5},
	{field: minutes, tens: false, column: 6},
	{field: seconds, tens: true, column: 8},
	{field: seconds, tens: false, column: 9},
}

// Cursor is the transient state of one edit.
type Cursor struct {
	pos   int
	value clock.TimeOfDay
}

// NewCursor starts an edit of initial at the hour-tens position.
func NewCursor(initial clock.TimeOfDay) *Cursor {
	return &Cursor{value: initial}
}

// Position returns the active position, 0 (hour tens) to 5 (second units).
func (c *Cursor) Position() int {
	return c.pos
}

// Column returns the display column of the active position.
func (c *Cursor) Column() int {
	return slots[c.pos].column
}

// Value returns the scratch time.
func (c *Cursor) Value() clock.TimeOfDay {
	return c.value
}

// Press applies one key and reports whether it committed the edit.
// Keys other than digits, Back and Confirm are ignored.
func (c *Cursor) Press(key keypad.Code) bool {
	switch {
	case key.IsDigit():
		c.Digit(key.Digit())
	case key == keypad.Back:
		c.Back()
	case key == keypad.Confirm:
		return true
	}

	return false
}

// Digit writes d into the active half-digit and advances, wrapping from
// second units back to hour tens.
//
// A tens digit that makes the field overflow sets it to the tens clamp
// (20 for hours, 50 otherwise); a units digit that overflows clamps to the
// field maximum. Entering 9 then 5 for the hour therefore yields 23.
func (c *Cursor) Digit(d uint8) {
	s := slots[c.pos]
	lim := limits[s.field]
	v := c.ref(s.field)

	if s.tens {
		*v = d*10 + *v%10
		if *v > lim.max {
			*v = lim.tensClamp
		}
	} else {
		*v = (*v/10)*10 + d
		if *v > lim.max {
			*v = lim.max
		}
	}

	c.pos = (c.pos + 1) % Positions
}

// Back steps one position backwards, wrapping from hour tens to second
// units, and zeroes the field of the position stepped onto.
func (c *Cursor) Back() {
	c.pos = (c.pos + Positions - 1) % Positions
	*c.ref(slots[c.pos].field) = 0
}

func (c *Cursor) ref(f field) *uint8 {
	switch f {
	case hours:
		return &c.value.Hour
	case minutes:
		return &c.value.Minute
	default:
		return &c.value.Second
	}
}
