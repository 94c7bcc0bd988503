package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// Config holds the hardware wiring and timing used by the appliance.
type Config struct {
	// Backend selects the hardware implementation: BackendPeriph or BackendSimulator.
	Backend string `yaml:"backend"`
	// LogLevel is the minimum operator log level.
	LogLevel string `yaml:"log_level"`
	// I2C describes the bus shared by the RTC chip and the display backpack.
	I2C I2C `yaml:"i2c"`
	// RTC describes the clock chip.
	RTC RTC `yaml:"rtc"`
	// LCD describes the character display.
	LCD LCD `yaml:"lcd"`
	// Keypad describes the 4x4 matrix wiring.
	Keypad Keypad `yaml:"keypad"`
	// Output describes the alarm output line.
	Output Output `yaml:"output"`
	// Timing holds every fixed delay of the appliance.
	Timing Timing `yaml:"timing"`
}

// I2C describes the bus used for the RTC and the display.
type I2C struct {
	// Bus is the periph bus name; empty selects the first available bus.
	Bus string `yaml:"bus"`
	// SpeedKHz is the bus clock in kilohertz.
	SpeedKHz int `yaml:"speed_khz"`
}

// RTC describes the clock chip.
type RTC struct {
	Address uint16 `yaml:"address"`
}

// LCD describes the HD44780 display behind a PCF8574 backpack.
type LCD struct {
	Address uint16 `yaml:"address"`
	Columns int    `yaml:"columns"`
	Rows    int    `yaml:"rows"`
}

// Keypad describes the matrix keypad wiring.
type Keypad struct {
	// Rows are the GPIO names driven low one at a time.
	Rows []string `yaml:"rows"`
	// Columns are the GPIO names read with pull-ups.
	Columns []string `yaml:"columns"`
	// Layout maps matrix index row*columns+column to a key code.
	// Empty means identity.
	Layout []int `yaml:"layout,omitempty"`
}

// Output describes the alarm output line.
type Output struct {
	Pin       string `yaml:"pin"`
	ActiveLow bool   `yaml:"active_low"`
}

// Timing holds the fixed delays.
type Timing struct {
	Tick         time.Duration `yaml:"tick"`
	KeySettle    time.Duration `yaml:"key_settle"`
	KeyPoll      time.Duration `yaml:"key_poll"`
	IdlePoll     time.Duration `yaml:"idle_poll"`
	ConfirmDelay time.Duration `yaml:"confirm_delay"`
	Pulse        time.Duration `yaml:"pulse"`
	Splash       time.Duration `yaml:"splash"`
	ResyncDelay  time.Duration `yaml:"resync_delay"`
}

const (
	// BackendPeriph drives real hardware through periph.io.
	BackendPeriph = "periph"
	// BackendSimulator runs against in-memory devices.
	BackendSimulator = "simulator"

	// DefaultRTCAddress is the fixed I2C address of the DS1307.
	DefaultRTCAddress = 0x68
	// DefaultLCDAddress is the usual PCF8574 backpack address; some boards use 0x3F.
	DefaultLCDAddress = 0x27
	// DefaultSpeedKHz is the standard-mode I2C clock.
	DefaultSpeedKHz = 100

	// KeypadSize is the number of rows and of columns of the matrix.
	KeypadSize = 4

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// maxKeyCode is the largest key code a layout may produce.
	maxKeyCode = 15
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownBackend is returned for an unsupported backend name.
	errUnknownBackend = errors.New("unknown backend")
	// errBadAddress is returned for an I2C address outside the 7-bit range.
	errBadAddress = errors.New("i2c address out of range")
	// errBadKeypad is returned for incomplete keypad wiring.
	errBadKeypad = errors.New("invalid keypad wiring")
	// errBadLayout is returned for a malformed key layout.
	errBadLayout = errors.New("invalid keypad layout")
	// errOutputPinRequired is returned when the periph backend has no output pin.
	errOutputPinRequired = errors.New("output pin must be provided")
	// errBadLCD is returned for impossible display geometry.
	errBadLCD = errors.New("invalid display geometry")
	// errBadLogLevel is returned for an unknown log level.
	errBadLogLevel = errors.New("unknown log level")
)

// Default returns a configuration for the simulator backend with every default applied.
func Default() *Config {
	cfg := &Config{
		Backend: BackendSimulator,
	}

	//nolint:errcheck // The default configuration is always valid.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from path; an empty path yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate applies defaults and checks the wiring for the selected backend.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Backend == "" {
		cfg.Backend = BackendSimulator
	}

	if cfg.Backend != BackendPeriph && cfg.Backend != BackendSimulator {
		return fmt.Errorf("%w: %q", errUnknownBackend, cfg.Backend)
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errBadLogLevel, cfg.LogLevel)
	}

	applyDefaults(cfg)

	for _, addr := range []uint16{cfg.RTC.Address, cfg.LCD.Address} {
		// 0x00-0x07 and 0x78-0x7F are reserved 7-bit addresses.
		if addr < 0x08 || addr > 0x77 {
			return fmt.Errorf("%w: %#x", errBadAddress, addr)
		}
	}

	if cfg.LCD.Columns <= 0 || cfg.LCD.Rows < 2 || cfg.LCD.Rows > 4 {
		return fmt.Errorf("%w: %dx%d", errBadLCD, cfg.LCD.Columns, cfg.LCD.Rows)
	}

	if err := validateLayout(cfg.Keypad.Layout); err != nil {
		return err
	}

	if cfg.Backend == BackendSimulator {
		return nil
	}

	if len(cfg.Keypad.Rows) != KeypadSize || len(cfg.Keypad.Columns) != KeypadSize {
		return fmt.Errorf("%w: want %d rows and %d columns", errBadKeypad, KeypadSize, KeypadSize)
	}

	for _, name := range append(append([]string{}, cfg.Keypad.Rows...), cfg.Keypad.Columns...) {
		if name == "" {
			return fmt.Errorf("%w: empty pin name", errBadKeypad)
		}
	}

	if cfg.Output.Pin == "" {
		return errOutputPinRequired
	}

	return nil
}

// applyDefaults fills every zero field with its default.
func applyDefaults(cfg *Config) {
	if cfg.I2C.SpeedKHz <= 0 {
		cfg.I2C.SpeedKHz = DefaultSpeedKHz
	}

	if cfg.RTC.Address == 0 {
		cfg.RTC.Address = DefaultRTCAddress
	}

	if cfg.LCD.Address == 0 {
		cfg.LCD.Address = DefaultLCDAddress
	}

	if cfg.LCD.Columns == 0 {
		cfg.LCD.Columns = 16
	}

	if cfg.LCD.Rows == 0 {
		cfg.LCD.Rows = 2
	}

	t := &cfg.Timing
	setDefault(&t.Tick, time.Second)
	setDefault(&t.KeySettle, 15*time.Millisecond)
	setDefault(&t.KeyPoll, 10*time.Millisecond)
	setDefault(&t.IdlePoll, 5*time.Millisecond)
	setDefault(&t.ConfirmDelay, 120*time.Millisecond)
	setDefault(&t.Pulse, 800*time.Millisecond)
	setDefault(&t.Splash, time.Second)
	setDefault(&t.ResyncDelay, 10*time.Millisecond)
}

func setDefault(d *time.Duration, def time.Duration) {
	if *d <= 0 {
		*d = def
	}
}

func validateLayout(layout []int) error {
	if len(layout) == 0 {
		return nil
	}

	if len(layout) != KeypadSize*KeypadSize {
		return fmt.Errorf("%w: want %d codes, got %d", errBadLayout, KeypadSize*KeypadSize, len(layout))
	}

	seen := make(map[int]struct{}, len(layout))

	for _, code := range layout {
		if code < 0 || code > maxKeyCode {
			return fmt.Errorf("%w: code %d", errBadLayout, code)
		}

		if _, dup := seen[code]; dup {
			return fmt.Errorf("%w: duplicate code %d", errBadLayout, code)
		}

		seen[code] = struct{}{}
	}

	return nil
}
