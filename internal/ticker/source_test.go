package ticker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

const waitTimeout = time.Second

func waitTick(t *testing.T, s *Source) {
	t.Helper()

	select {
	case <-s.C():
	case <-time.After(waitTimeout):
		t.Fatal("tick not delivered")
	}
}

func startSource(t *testing.T) (*Source, *clockwork.FakeClock, *atomic.Int32) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fake := clockwork.NewFakeClock()
	s := New(fake, time.Second)
	ticks := new(atomic.Int32)

	go s.Run(ctx, func() { ticks.Add(1) })

	require.NoError(t, fake.BlockUntilContext(ctx, 1))

	return s, fake, ticks
}

// TestRun_TicksOncePerPeriod runs the callback and posts the flag.
func TestRun_TicksOncePerPeriod(t *testing.T) {
	t.Parallel()

	s, fake, ticks := startSource(t)

	fake.Advance(time.Second)
	waitTick(t, s)
	require.EqualValues(t, 1, ticks.Load())

	fake.Advance(time.Second)
	waitTick(t, s)
	require.EqualValues(t, 2, ticks.Load())
}

// TestRun_PendingCollapses keeps a single unconsumed tick.
func TestRun_PendingCollapses(t *testing.T) {
	t.Parallel()

	s, fake, ticks := startSource(t)

	for i := int32(1); i <= 3; i++ {
		fake.Advance(time.Second)
		require.Eventually(t, func() bool { return ticks.Load() == i }, waitTimeout, time.Millisecond)
	}

	waitTick(t, s)

	select {
	case <-s.C():
		t.Fatal("ticks were queued")
	default:
	}
}

// TestRealign restarts the period and drops the pending tick.
func TestRealign(t *testing.T) {
	t.Parallel()

	s, fake, ticks := startSource(t)

	fake.Advance(time.Second)
	require.Eventually(t, func() bool { return ticks.Load() == 1 }, waitTimeout, time.Millisecond)

	fake.Advance(600 * time.Millisecond)
	s.Realign()

	select {
	case <-s.C():
		t.Fatal("pending tick survived realign")
	default:
	}

	// The old phase would fire here.
	fake.Advance(400 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.EqualValues(t, 1, ticks.Load())

	fake.Advance(600 * time.Millisecond)
	waitTick(t, s)
	require.EqualValues(t, 2, ticks.Load())
}
