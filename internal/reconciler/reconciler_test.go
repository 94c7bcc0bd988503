package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/hardware/ds1307"
	"github.com/oshokin/alarm-clock/internal/hardware/sim"
)

var errChip = errors.New("chip unreachable")

// fakeRTC is a scriptable chip.
type fakeRTC struct {
	now      clock.TimeOfDay
	readErr  error
	writeErr error
	written  []clock.TimeOfDay
	// onWrite runs inside WriteTime.
	onWrite func()
}

func (f *fakeRTC) ReadTime() (clock.TimeOfDay, error) {
	return f.now, f.readErr
}

func (f *fakeRTC) WriteTime(t clock.TimeOfDay) error {
	if f.onWrite != nil {
		f.onWrite()
	}

	if f.writeErr != nil {
		return f.writeErr
	}

	f.written = append(f.written, t)
	f.now = t

	return nil
}

type countingRealigner struct {
	calls int
}

func (c *countingRealigner) Realign() {
	c.calls++
}

type noSleep struct{}

func (noSleep) Sleep(time.Duration) {}

func newReconciler(rtc RTC) (*Reconciler, *countingRealigner) {
	realigner := new(countingRealigner)

	return New(rtc, realigner, noSleep{}, 10*time.Millisecond), realigner
}

// TestTickIncrement wraps the software clock through midnight.
func TestTickIncrement(t *testing.T) {
	t.Parallel()

	r, _ := newReconciler(&fakeRTC{readErr: errChip})
	r.soft = clock.TimeOfDay{Hour: 23, Minute: 59, Second: 59}

	for range 3600 {
		r.TickIncrement()
	}

	require.Equal(t, clock.TimeOfDay{Hour: 0, Minute: 59, Second: 59}, r.Now())
}

// TestReconcile_ChipWins overwrites the software clock with the chip.
func TestReconcile_ChipWins(t *testing.T) {
	t.Parallel()

	chip := &fakeRTC{now: clock.TimeOfDay{Hour: 7, Minute: 30}}
	r, _ := newReconciler(chip)

	r.TickIncrement()
	require.Equal(t, chip.now, r.Reconcile(context.Background()))
	require.Equal(t, chip.now, r.Now())
}

// TestReconcile_ChipFailure returns the fallback clock untouched.
func TestReconcile_ChipFailure(t *testing.T) {
	t.Parallel()

	r, _ := newReconciler(&fakeRTC{readErr: errChip})
	r.TickIncrement()
	r.TickIncrement()

	want := clock.TimeOfDay{Second: 2}
	require.Equal(t, want, r.Reconcile(context.Background()))
	require.Equal(t, want, r.Now())

	// An out-of-range chip value counts as a failed read.
	r, _ = newReconciler(&fakeRTC{now: clock.TimeOfDay{Hour: 25}})
	require.Equal(t, clock.TimeOfDay{}, r.Reconcile(context.Background()))
}

// TestCurrent_DoesNotAdopt reads the chip without touching the software clock.
func TestCurrent_DoesNotAdopt(t *testing.T) {
	t.Parallel()

	chip := &fakeRTC{now: clock.TimeOfDay{Hour: 9}}
	r, _ := newReconciler(chip)

	require.Equal(t, chip.now, r.Current(context.Background()))
	require.Equal(t, clock.TimeOfDay{}, r.Now())

	chip.readErr = errChip
	r.TickIncrement()
	require.Equal(t, clock.TimeOfDay{Second: 1}, r.Current(context.Background()))
}

// TestCommitAndResync_ReadBack adopts the chip value and realigns the tick.
func TestCommitAndResync_ReadBack(t *testing.T) {
	t.Parallel()

	chip := new(fakeRTC)
	r, realigner := newReconciler(chip)

	want := clock.TimeOfDay{Hour: 6, Minute: 5, Second: 4}
	require.Equal(t, want, r.CommitAndResync(context.Background(), want))
	require.Equal(t, []clock.TimeOfDay{want}, chip.written)
	require.Equal(t, want, r.Now())
	require.Equal(t, 1, realigner.calls)
}

// TestCommitAndResync_ReadFailure adopts the written value verbatim.
func TestCommitAndResync_ReadFailure(t *testing.T) {
	t.Parallel()

	chip := &fakeRTC{readErr: errChip, writeErr: errChip}
	r, realigner := newReconciler(chip)

	want := clock.TimeOfDay{Hour: 12}
	require.Equal(t, want, r.CommitAndResync(context.Background(), want))
	require.Equal(t, want, r.Now())
	require.Equal(t, 1, realigner.calls)
}

// TestCommitAndResync_HoldsTicksDuringWrite blocks the increment while the chip is written.
func TestCommitAndResync_HoldsTicksDuringWrite(t *testing.T) {
	t.Parallel()

	chip := new(fakeRTC)
	r, _ := newReconciler(chip)

	ticked := make(chan struct{})
	chip.onWrite = func() {
		go func() {
			r.TickIncrement()
			close(ticked)
		}()

		select {
		case <-ticked:
			t.Error("tick ran during the chip write")
		case <-time.After(20 * time.Millisecond):
		}
	}

	r.CommitAndResync(context.Background(), clock.TimeOfDay{Hour: 1})
	<-ticked
}

// TestCommitThenReconcile_RoundTrip commits through the real driver and simulated chip.
func TestCommitThenReconcile_RoundTrip(t *testing.T) {
	t.Parallel()

	fake := clockwork.NewFakeClock()
	chip := ds1307.New(sim.NewRTC(fake, ds1307.PlaceholderDate), 0)
	r, _ := newReconciler(chip)

	want := clock.TimeOfDay{Hour: 21, Minute: 45, Second: 30}
	r.CommitAndResync(context.Background(), want)

	require.Equal(t, want, r.Reconcile(context.Background()))
}
