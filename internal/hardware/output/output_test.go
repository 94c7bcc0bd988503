package output

import (
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestPin_ActiveHigh(t *testing.T) {
	t.Parallel()

	raw := &gpiotest.Pin{N: "GPIO17", L: gpio.High}

	p, err := New(raw, false)
	require.NoError(t, err)
	require.Equal(t, gpio.Low, raw.L)

	require.NoError(t, p.Set(true))
	require.Equal(t, gpio.High, raw.L)

	require.NoError(t, p.Set(false))
	require.Equal(t, gpio.Low, raw.L)
}

func TestPin_ActiveLow(t *testing.T) {
	t.Parallel()

	raw := &gpiotest.Pin{N: "GPIO17"}

	p, err := New(raw, true)
	require.NoError(t, err)
	require.Equal(t, gpio.High, raw.L)

	require.NoError(t, p.Set(true))
	require.Equal(t, gpio.Low, raw.L)
}
