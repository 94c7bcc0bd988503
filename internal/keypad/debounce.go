package keypad

import (
	"context"
	"time"
)

// Scanner samples the keypad once without blocking.
type Scanner interface {
	Scan() (Code, bool)
}

// Sleeper suspends the caller for a fixed duration.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Debouncer filters contact bounce from a Scanner.
type Debouncer struct {
	scanner Scanner
	sleeper Sleeper
	// settle is waited after the first sample and again after release.
	settle time.Duration
	// poll is the release sampling interval.
	poll time.Duration
}

// NewDebouncer wraps scanner with the given settle and release poll intervals.
func NewDebouncer(scanner Scanner, sleeper Sleeper, settle, poll time.Duration) *Debouncer {
	return &Debouncer{
		scanner: scanner,
		sleeper: sleeper,
		settle:  settle,
		poll:    poll,
	}
}

// ReadKeyOnce returns one key per physical press.
//
// It returns false at once when no key is sensed, and after one settle
// interval when the second sample is empty or differs (bounce; the caller
// retries later). An accepted key is returned only after the keypad reads
// empty again plus one more settle interval. The release wait holds as long
// as the key is held; only ctx cancellation ends it early.
func (d *Debouncer) ReadKeyOnce(ctx context.Context) (Code, bool) {
	first, ok := d.scanner.Scan()
	if !ok {
		return 0, false
	}

	d.sleeper.Sleep(d.settle)

	second, ok := d.scanner.Scan()
	if !ok || second != first {
		return 0, false
	}

	for {
		if ctx.Err() != nil {
			return 0, false
		}

		d.sleeper.Sleep(d.poll)

		if _, held := d.scanner.Scan(); !held {
			break
		}
	}

	d.sleeper.Sleep(d.settle)

	return first, true
}
