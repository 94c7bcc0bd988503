package sim

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/hardware/ds1307"
	"github.com/oshokin/alarm-clock/internal/keypad"
)

func startTime(h, m, s uint8) ds1307.Time {
	t := ds1307.PlaceholderDate
	t.Hour, t.Minute, t.Second = h, m, s

	return t
}

// TestRTC_AdvancesWithClock reads the emulated chip through the real driver.
func TestRTC_AdvancesWithClock(t *testing.T) {
	t.Parallel()

	fake := clockwork.NewFakeClock()
	chip := NewRTC(fake, startTime(23, 59, 58))
	dev := ds1307.New(chip, 0)

	got, err := dev.ReadTime()
	require.NoError(t, err)
	require.Equal(t, clock.TimeOfDay{Hour: 23, Minute: 59, Second: 58}, got)

	fake.Advance(2500 * time.Millisecond)

	got, err = dev.ReadTime()
	require.NoError(t, err)
	require.Equal(t, clock.TimeOfDay{Second: 0}, got)

	fake.Advance(600 * time.Millisecond)

	got, err = dev.ReadTime()
	require.NoError(t, err)
	require.Equal(t, clock.TimeOfDay{Second: 1}, got)
}

// TestRTC_WriteThenRead keeps the written value and the placeholder date.
func TestRTC_WriteThenRead(t *testing.T) {
	t.Parallel()

	fake := clockwork.NewFakeClock()
	chip := NewRTC(fake, startTime(1, 2, 3))
	dev := ds1307.New(chip, 0)

	want := clock.TimeOfDay{Hour: 7, Minute: 30, Second: 0}
	require.NoError(t, dev.WriteTime(want))
	require.Equal(t, 1, chip.Writes())

	got, err := dev.ReadTime()
	require.NoError(t, err)
	require.Equal(t, want, got)

	regs := chip.Registers()
	require.Equal(t, byte(0x01), regs[ds1307.Date])
	require.Equal(t, byte(0x24), regs[ds1307.Year])
}

// TestRTC_Halted freezes time while the clock-halt bit is set.
func TestRTC_Halted(t *testing.T) {
	t.Parallel()

	fake := clockwork.NewFakeClock()
	chip := NewRTC(fake, startTime(10, 0, 0))

	require.NoError(t, chip.Tx(ds1307.Address, []byte{ds1307.Seconds, 0x80 | 0x05}, nil))
	fake.Advance(10 * time.Second)

	running, err := ds1307.New(chip, 0).Running()
	require.NoError(t, err)
	require.False(t, running)
	require.Equal(t, byte(0x85), chip.Registers()[ds1307.Seconds])
}

// TestRTC_Faults injects read and write failures.
func TestRTC_Faults(t *testing.T) {
	t.Parallel()

	chip := NewRTC(clockwork.NewFakeClock(), startTime(0, 0, 0))
	dev := ds1307.New(chip, 0)

	chip.FailReads.Store(true)
	_, err := dev.ReadTime()
	require.ErrorIs(t, err, ErrBusFault)

	chip.FailReads.Store(false)
	chip.FailWrites.Store(true)
	require.ErrorIs(t, dev.WriteTime(clock.TimeOfDay{Hour: 1}), ErrBusFault)
	require.Zero(t, chip.Writes())

	_, err = ds1307.New(chip, 0x50).ReadTime()
	require.ErrorIs(t, err, errNoDevice)
}

// TestDisplay_Grid follows HD44780 cursor addressing and renders frames.
func TestDisplay_Grid(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	d := NewDisplay(16, 2, &out)

	require.NoError(t, d.SetCursor(1, 0))
	require.NoError(t, d.Print("  00:00:00  (15=OK)"))
	require.NoError(t, d.SetCursor(1, 2))
	require.NoError(t, d.Print("12:34:56"))

	require.Equal(t, "  12:34:56  (15=", d.Row(1))
	require.Equal(t, "  12:34:56  (15=OK)", d.Line(1))
	require.Contains(t, out.String(), "|  12:34:56  (15=|")

	require.NoError(t, d.ShowCursor(true))
	require.NoError(t, d.SetCursor(1, 9))

	row, column, visible := d.Cursor()
	require.Equal(t, 1, row)
	require.Equal(t, 9, column)
	require.True(t, visible)

	require.ErrorIs(t, d.SetCursor(2, 0), errCursor)

	require.NoError(t, d.Clear())
	require.Empty(t, d.Line(1))
}

// TestKeypad_TimedPresses holds each key then releases it for the gap.
func TestKeypad_TimedPresses(t *testing.T) {
	t.Parallel()

	fake := clockwork.NewFakeClock()
	k := NewKeypad(fake, DefaultHold, DefaultGap)

	require.NoError(t, k.FeedLine("12 5"))
	require.Error(t, k.FeedLine("16"))
	require.Equal(t, 2, k.Pending())

	code, ok := k.Scan()
	require.True(t, ok)
	require.Equal(t, keypad.Alarm1, code)

	fake.Advance(DefaultHold / 2)

	_, ok = k.Scan()
	require.True(t, ok)

	fake.Advance(DefaultHold)

	_, ok = k.Scan()
	require.False(t, ok)

	_, ok = k.Scan()
	require.False(t, ok, "gap not elapsed")

	fake.Advance(DefaultGap)

	code, ok = k.Scan()
	require.True(t, ok)
	require.Equal(t, keypad.Code(5), code)
	require.Zero(t, k.Pending())
}

// TestOutput_CountsPulses tracks transitions.
func TestOutput_CountsPulses(t *testing.T) {
	t.Parallel()

	o := NewOutput(context.Background())

	require.NoError(t, o.Set(true))
	require.True(t, o.Active())
	require.NoError(t, o.Set(false))
	require.NoError(t, o.Set(false))
	require.False(t, o.Active())
	require.Equal(t, 1, o.Pulses())
}
