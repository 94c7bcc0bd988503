package alarm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
)

// TestEvaluate_ExactSecondOnly verifies there is no tolerance window.
func TestEvaluate_ExactSecondOnly(t *testing.T) {
	t.Parallel()

	alarms := Slots{{Hour: 7, Minute: 30}}

	require.True(t, Evaluate(clock.TimeOfDay{Hour: 7, Minute: 30}, alarms))
	require.False(t, Evaluate(clock.TimeOfDay{Hour: 7, Minute: 30, Second: 1}, alarms))
}

// TestMatch_ReportsFirstSlot checks slot selection when several slots share an instant.
func TestMatch_ReportsFirstSlot(t *testing.T) {
	t.Parallel()

	at := clock.TimeOfDay{Hour: 12, Minute: 1, Second: 2}
	alarms := Slots{{Hour: 1}, at, at}

	idx, ok := alarms.Match(at)
	require.True(t, ok)
	require.Equal(t, 1, idx)

	_, ok = alarms.Match(clock.TimeOfDay{Hour: 12})
	require.False(t, ok)
}

// TestEvaluate_DefaultSlotsFireAtMidnight documents the zero-value slots.
func TestEvaluate_DefaultSlotsFireAtMidnight(t *testing.T) {
	t.Parallel()

	var alarms Slots

	require.True(t, Evaluate(clock.TimeOfDay{}, alarms))
}
