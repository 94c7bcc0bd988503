package sim

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/physic"

	"github.com/oshokin/alarm-clock/internal/hardware/ds1307"
)

// ErrBusFault is returned by the chip while a fault is injected.
var ErrBusFault = errors.New("sim: i2c transaction failed")

// errNoDevice is returned for a transaction to another address.
var errNoDevice = errors.New("sim: no device at address")

// registerFile is the DS1307 address space: time, control and RAM.
const registerFile = ds1307.RAMEnd + 1

// RTC emulates a DS1307 behind an I2C bus. The time registers advance with
// the supplied clock once written, unless the clock-halt bit is set.
type RTC struct {
	clock clockwork.Clock
	addr  uint16

	// FailReads and FailWrites inject transaction errors.
	FailReads  atomic.Bool
	FailWrites atomic.Bool

	mu      sync.Mutex
	regs    [registerFile]byte
	pointer byte
	// base is the register time at setAt.
	base  time.Time
	setAt time.Time
	// writes counts time register writes.
	writes int
}

// NewRTC returns a chip holding initial, starting its oscillator.
func NewRTC(clock clockwork.Clock, initial ds1307.Time) *RTC {
	r := &RTC{
		clock: clock,
		addr:  ds1307.Address,
	}

	regs := ds1307.Encode(initial)
	copy(r.regs[:], regs[:])
	r.latch()

	return r
}

// String implements i2c.Bus.
func (r *RTC) String() string {
	return "sim-ds1307"
}

// SetSpeed implements i2c.Bus.
func (r *RTC) SetSpeed(physic.Frequency) error {
	return nil
}

// Close implements i2c.BusCloser.
func (r *RTC) Close() error {
	return nil
}

// Tx implements i2c.Bus: the first written byte sets the register pointer,
// further bytes are stored, then r is filled from the pointer on.
func (r *RTC) Tx(addr uint16, w, rd []byte) error {
	if addr != r.addr {
		return fmt.Errorf("%w %#x", errNoDevice, addr)
	}

	if len(w) > 1 && r.FailWrites.Load() {
		return ErrBusFault
	}

	if len(rd) > 0 && r.FailReads.Load() {
		return ErrBusFault
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.refresh()

	if len(w) > 0 {
		r.pointer = w[0] % registerFile

		if len(w) > 1 {
			touched := false

			for _, b := range w[1:] {
				r.regs[r.pointer] = b
				touched = touched || r.pointer < ds1307.TimeRegisters
				r.pointer = (r.pointer + 1) % registerFile
			}

			if touched {
				r.writes++
				r.latch()
			}
		}
	}

	for i := range rd {
		rd[i] = r.regs[r.pointer]
		r.pointer = (r.pointer + 1) % registerFile
	}

	return nil
}

// Writes returns how many transactions modified the time registers.
func (r *RTC) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writes
}

// Registers returns the time registers as they read now.
func (r *RTC) Registers() [ds1307.TimeRegisters]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refresh()

	var out [ds1307.TimeRegisters]byte
	copy(out[:], r.regs[:ds1307.TimeRegisters])

	return out
}

// latch decodes the time registers as the new base.
func (r *RTC) latch() {
	var regs [ds1307.TimeRegisters]byte
	copy(regs[:], r.regs[:ds1307.TimeRegisters])

	r.setAt = r.clock.Now()

	t, err := ds1307.Decode(regs)
	if err != nil {
		// Garbage stays frozen, like a chip that lost its battery.
		r.base = time.Time{}

		return
	}

	r.base = time.Date(2000+int(t.Year), time.Month(t.Month), int(t.Date),
		int(t.Hour), int(t.Minute), int(t.Second), 0, time.UTC)
}

// refresh rewrites the time registers from base plus elapsed time.
func (r *RTC) refresh() {
	if r.base.IsZero() || r.regs[ds1307.Seconds]&0x80 != 0 {
		return
	}

	elapsed := r.clock.Since(r.setAt).Truncate(time.Second)
	now := r.base.Add(elapsed)

	regs := ds1307.Encode(ds1307.Time{
		Hour:   uint8(now.Hour()),
		Minute: uint8(now.Minute()),
		Second: uint8(now.Second()),
		Date:   uint8(now.Day()),
		Month:  uint8(now.Month()),
		Year:   uint8(now.Year() % 100),
	})
	// The weekday register is stored verbatim.
	regs[ds1307.Day] = r.regs[ds1307.Day]

	copy(r.regs[:ds1307.TimeRegisters], regs[:])
	r.base = now
	r.setAt = r.setAt.Add(elapsed)
}
