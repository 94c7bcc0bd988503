package sim

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/oshokin/alarm-clock/internal/keypad"
)

const (
	// DefaultHold is how long a fed key stays asserted.
	DefaultHold = 60 * time.Millisecond
	// DefaultGap is the released time between two fed keys.
	DefaultGap = 40 * time.Millisecond
)

// Keypad replays fed key codes as timed presses: each key reads as held for
// the hold duration, then released for at least the gap.
type Keypad struct {
	clock clockwork.Clock
	hold  time.Duration
	gap   time.Duration

	mu       sync.Mutex
	queue    []keypad.Code
	active   bool
	current  keypad.Code
	until    time.Time
	released time.Time
}

// NewKeypad creates an empty keypad.
func NewKeypad(clock clockwork.Clock, hold, gap time.Duration) *Keypad {
	return &Keypad{
		clock: clock,
		hold:  hold,
		gap:   gap,
	}
}

// Feed queues presses.
func (k *Keypad) Feed(codes ...keypad.Code) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.queue = append(k.queue, codes...)
}

// FeedLine parses whitespace separated codes 0-15 and queues them.
func (k *Keypad) FeedLine(line string) error {
	fields := strings.Fields(line)
	codes := make([]keypad.Code, 0, len(fields))

	for _, f := range fields {
		v, err := strconv.ParseUint(f, 10, 8)
		if err != nil || keypad.Code(v) > keypad.MaxCode {
			return fmt.Errorf("sim: bad key %q", f)
		}

		codes = append(codes, keypad.Code(v))
	}

	k.Feed(codes...)

	return nil
}

// Pending returns the number of queued presses not yet started.
func (k *Keypad) Pending() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return len(k.queue)
}

// Scan implements keypad.Scanner.
func (k *Keypad) Scan() (keypad.Code, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.clock.Now()

	if k.active {
		if now.Before(k.until) {
			return k.current, true
		}

		k.active = false
		k.released = now

		return 0, false
	}

	if len(k.queue) == 0 || now.Sub(k.released) < k.gap {
		return 0, false
	}

	k.current, k.queue = k.queue[0], k.queue[1:]
	k.active = true
	k.until = now.Add(k.hold)

	return k.current, true
}
