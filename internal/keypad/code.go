package keypad

import "strconv"

// Code identifies a key of the 4x4 matrix, 0-15.
type Code uint8

// Function key codes. Codes 0-9 are digits.
const (
	// Back moves the editor cursor one step back and clears that field.
	Back Code = 10
	// Reserved is wired but has no function.
	Reserved Code = 11
	// Alarm1 opens the editor for alarm slot 1.
	Alarm1 Code = 12
	// Alarm2 opens the editor for alarm slot 2.
	Alarm2 Code = 13
	// Alarm3 opens the editor for alarm slot 3.
	Alarm3 Code = 14
	// Confirm commits an edit, or opens the RTC-set flow at the top level.
	Confirm Code = 15

	// MaxCode is the largest valid code.
	MaxCode Code = 15
)

// IsDigit reports whether c is one of the digit keys.
func (c Code) IsDigit() bool {
	return c <= 9
}

// Digit returns the decimal value of a digit key.
func (c Code) Digit() uint8 {
	return uint8(c)
}

// AlarmSlot returns the alarm slot index selected by c.
func (c Code) AlarmSlot() (int, bool) {
	if c < Alarm1 || c > Alarm3 {
		return -1, false
	}

	return int(c - Alarm1), true
}

func (c Code) String() string {
	switch c {
	case Back:
		return "back"
	case Reserved:
		return "reserved"
	case Alarm1, Alarm2, Alarm3:
		return "alarm" + strconv.Itoa(int(c-Alarm1)+1)
	case Confirm:
		return "confirm"
	default:
		return strconv.Itoa(int(c))
	}
}
