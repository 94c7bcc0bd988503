// Package sim provides in-memory stand-ins for the appliance hardware so the
// firmware logic runs on a workstation: a DS1307 register file on a fake I2C
// bus, a character display grid, a scripted keypad and an output line.
package sim
