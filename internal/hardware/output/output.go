// Package output drives the alarm output line over a GPIO pin.
package output

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Pin is an alarm output on a GPIO pin.
type Pin struct {
	pin       gpio.PinOut
	activeLow bool
}

// New wraps pin and drives it inactive.
func New(pin gpio.PinOut, activeLow bool) (*Pin, error) {
	p := &Pin{
		pin:       pin,
		activeLow: activeLow,
	}

	if err := p.Set(false); err != nil {
		return nil, err
	}

	return p, nil
}

// Set drives the line active or inactive.
func (p *Pin) Set(active bool) error {
	level := gpio.Level(active != p.activeLow)

	if err := p.pin.Out(level); err != nil {
		return fmt.Errorf("output %s: %w", p.pin, err)
	}

	return nil
}
