// Package keypad turns raw 4x4 matrix samples into validated key events.
//
// A Scanner reports the key asserted right now, if any. The Debouncer wraps
// a Scanner and yields exactly one event per physical press: two agreeing
// samples accept the key, then it waits for release before returning.
package keypad
