// Package reconciler keeps the best-known current time.
//
// A software clock advances by one second per tick as a fallback. Every
// successful chip read overwrites it, and user commits are written to the
// chip and read back. Chip failures are tolerated: the fallback value is
// used and nothing is retried.
package reconciler

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// RTC is the authoritative clock chip.
type RTC interface {
	ReadTime() (clock.TimeOfDay, error)
	WriteTime(t clock.TimeOfDay) error
}

// Realigner restarts the tick period.
type Realigner interface {
	Realign()
}

// Sleeper suspends the caller for a fixed duration.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Reconciler merges the software clock with chip reads.
type Reconciler struct {
	rtc         RTC
	realigner   Realigner
	sleeper     Sleeper
	resyncDelay time.Duration

	// mu guards soft and spans the whole chip write in CommitAndResync,
	// so a tick increment never interleaves with it.
	mu   sync.Mutex
	soft clock.TimeOfDay
}

// New creates a Reconciler with the software clock at midnight.
func New(rtc RTC, realigner Realigner, sleeper Sleeper, resyncDelay time.Duration) *Reconciler {
	return &Reconciler{
		rtc:         rtc,
		realigner:   realigner,
		sleeper:     sleeper,
		resyncDelay: resyncDelay,
	}
}

// TickIncrement advances the software clock by one second.
// It is called from the tick goroutine.
func (r *Reconciler) TickIncrement() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.soft = r.soft.Next()
}

// Now returns the software clock.
func (r *Reconciler) Now() clock.TimeOfDay {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.soft
}

// Reconcile reads the chip once. On success the chip value replaces the
// software clock; on failure the software clock is returned unchanged.
func (r *Reconciler) Reconcile(ctx context.Context) clock.TimeOfDay {
	t, err := r.read()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		logger.DebugKV(ctx, "RTC read failed, keeping software clock", "error", err, "soft", r.soft.String())

		return r.soft
	}

	r.soft = t

	return t
}

// Current returns the chip time, or the software clock if the chip cannot
// be read. The software clock is not modified.
func (r *Reconciler) Current(ctx context.Context) clock.TimeOfDay {
	t, err := r.read()
	if err != nil {
		logger.DebugKV(ctx, "RTC read failed, using software clock", "error", err)

		return r.Now()
	}

	return t
}

// CommitAndResync writes t to the chip with ticking held off, reads it back
// and adopts the read value, or t itself when the read fails. The tick period
// is then restarted. The adopted value is returned for immediate display.
func (r *Reconciler) CommitAndResync(ctx context.Context, t clock.TimeOfDay) clock.TimeOfDay {
	r.mu.Lock()
	err := r.rtc.WriteTime(t)
	r.mu.Unlock()

	if err != nil {
		logger.WarnKV(ctx, "RTC write failed", "error", err, "value", t.String())
	}

	r.sleeper.Sleep(r.resyncDelay)

	adopted := t

	back, err := r.read()
	if err != nil {
		logger.DebugKV(ctx, "RTC read-back failed, adopting written value", "error", err)
	} else {
		adopted = back
	}

	r.mu.Lock()
	r.soft = adopted
	r.mu.Unlock()

	r.realigner.Realign()

	logger.InfoKV(ctx, "RTC set", "value", adopted.String())

	return adopted
}

func (r *Reconciler) read() (clock.TimeOfDay, error) {
	t, err := r.rtc.ReadTime()
	if err != nil {
		return clock.TimeOfDay{}, err
	}

	if err := t.Validate(); err != nil {
		return clock.TimeOfDay{}, err
	}

	return t, nil
}
