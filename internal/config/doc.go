// Package config defines the appliance wiring and timing settings and
// provides helpers to load, validate and save them in YAML format.
//
// The file never holds clock or alarm values; those live in the RTC chip
// and in process memory only.
package config
