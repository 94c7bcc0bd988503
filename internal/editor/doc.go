// Package editor implements the six-digit time entry used for the alarm
// slots and for setting the RTC.
//
// Cursor is the pure state machine: each digit key writes the tens or units
// half of hours, minutes or seconds, clamping per half-digit so the scratch
// value is always a valid time. Editor drives a Cursor from debounced key
// events and mirrors it on the display until the confirm key commits.
package editor
