package lcd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

type noSleep struct{}

func (noSleep) Sleep(time.Duration) {}

// decoded is one byte reassembled from recorded nibble writes.
type decoded struct {
	value byte
	data  bool
}

// decode turns four-byte writes back into bytes sent to the controller.
func decode(t *testing.T, ops []i2ctest.IO) []decoded {
	t.Helper()

	out := make([]decoded, 0, len(ops))

	for _, op := range ops {
		require.Len(t, op.W, 4)
		require.NotZero(t, op.W[0]&pinEN)
		require.Zero(t, op.W[1]&pinEN)

		out = append(out, decoded{
			value: op.W[0]&0xF0 | op.W[2]>>4,
			data:  op.W[0]&pinRS != 0,
		})
	}

	return out
}

func newDevice(t *testing.T) (*Device, *i2ctest.Record) {
	t.Helper()

	rec := new(i2ctest.Record)
	d := New(rec, 0, noSleep{}, 16, 2)
	require.NoError(t, d.Init())

	return d, rec
}

// TestInit sends the nibble wake-up sequence then the setup commands.
func TestInit(t *testing.T) {
	t.Parallel()

	_, rec := newDevice(t)

	require.Len(t, rec.Ops, 8)

	for i, want := range []byte{0x38, 0x38, 0x38, 0x28} {
		require.Equal(t, []byte{want | pinEN, want}, rec.Ops[i].W, "nibble %d", i)
		require.Equal(t, uint16(DefaultAddress), rec.Ops[i].Addr)
	}

	require.Equal(t, []decoded{
		{value: 0x28},
		{value: 0x0C},
		{value: 0x01},
		{value: 0x06},
	}, decode(t, rec.Ops[4:]))
}

// TestSetCursorAndPrint positions on row 1 and writes data bytes.
func TestSetCursorAndPrint(t *testing.T) {
	t.Parallel()

	d, rec := newDevice(t)
	rec.Ops = nil

	require.NoError(t, d.SetCursor(1, 2))
	require.NoError(t, d.Print("Hi"))

	require.Equal(t, []byte{0xCC, 0xC8, 0x2C, 0x28}, rec.Ops[0].W)
	require.Equal(t, []decoded{
		{value: 0xC2},
		{value: 'H', data: true},
		{value: 'i', data: true},
	}, decode(t, rec.Ops))

	require.ErrorIs(t, d.SetCursor(2, 0), errOutOfBounds)
	require.ErrorIs(t, d.SetCursor(0, 16), errOutOfBounds)
}

// TestShowCursor toggles cursor and blink bits.
func TestShowCursor(t *testing.T) {
	t.Parallel()

	d, rec := newDevice(t)
	rec.Ops = nil

	require.NoError(t, d.ShowCursor(true))
	require.NoError(t, d.ShowCursor(false))

	require.Equal(t, []decoded{{value: 0x0F}, {value: 0x0C}}, decode(t, rec.Ops))
}
