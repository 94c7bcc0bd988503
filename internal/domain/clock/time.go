package clock

import (
	"errors"
	"fmt"
)

const (
	// MaxHour is the largest valid hour value.
	MaxHour = 23
	// MaxMinute is the largest valid minute value.
	MaxMinute = 59
	// MaxSecond is the largest valid second value.
	MaxSecond = 59
)

// ErrOutOfRange is returned when a field exceeds its valid range.
var ErrOutOfRange = errors.New("time of day out of range")

// TimeOfDay is a wall-clock time with second resolution.
// The zero value is midnight.
type TimeOfDay struct {
	Hour   uint8
	Minute uint8
	Second uint8
}

// New builds a TimeOfDay and rejects out-of-range fields.
func New(hour, minute, second uint8) (TimeOfDay, error) {
	t := TimeOfDay{
		Hour:   hour,
		Minute: minute,
		Second: second,
	}

	if err := t.Validate(); err != nil {
		return TimeOfDay{}, err
	}

	return t, nil
}

// Validate reports whether every field is within range.
func (t TimeOfDay) Validate() error {
	if t.Hour > MaxHour || t.Minute > MaxMinute || t.Second > MaxSecond {
		return fmt.Errorf("%02d:%02d:%02d: %w", t.Hour, t.Minute, t.Second, ErrOutOfRange)
	}

	return nil
}

// Next returns the time one second later, wrapping at 24:00:00.
func (t TimeOfDay) Next() TimeOfDay {
	t.Second++
	if t.Second > MaxSecond {
		t.Second = 0
		t.Minute++
	}

	if t.Minute > MaxMinute {
		t.Minute = 0
		t.Hour++
	}

	if t.Hour > MaxHour {
		t.Hour = 0
	}

	return t
}

// Equal reports whether both values name the same second of the day.
func (t TimeOfDay) Equal(other TimeOfDay) bool {
	return t == other
}

// String renders the value as HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}
