// Package appliance brings up the hardware backend and runs the alarm clock
// until the context is cancelled.
//
// Two backends exist: periph drives a DS1307, an HD44780 behind a PCF8574
// backpack, a 4x4 keypad and an output pin on a Linux board; simulator runs
// the same loop against in-memory devices, reading key codes from an input
// stream and drawing the display to an output stream.
package appliance
