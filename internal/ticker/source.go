// Package ticker produces the 1 Hz tick of the appliance.
//
// Source runs in its own goroutine, the equivalent of the timer interrupt:
// on every period it runs the tick callback (the fallback clock increment)
// and posts to a single-slot channel that the main loop polls. Ticks that
// arrive while one is still pending collapse into it.
package ticker

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Source is a realignable periodic tick.
type Source struct {
	period  time.Duration
	pending chan struct{}

	mu     sync.Mutex
	ticker clockwork.Ticker
}

// New creates a Source and starts its period immediately.
func New(clock clockwork.Clock, period time.Duration) *Source {
	return &Source{
		period:  period,
		pending: make(chan struct{}, 1),
		ticker:  clock.NewTicker(period),
	}
}

// C delivers one value per tick not yet consumed.
func (s *Source) C() <-chan struct{} {
	return s.pending
}

// Realign restarts the period from now and drops any tick not yet consumed.
func (s *Source) Realign() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticker.Reset(s.period)

	select {
	case <-s.ticker.Chan():
	default:
	}

	select {
	case <-s.pending:
	default:
	}
}

// Run calls onTick once per period until ctx is done, then stops the ticker.
func (s *Source) Run(ctx context.Context, onTick func()) {
	defer s.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ticker.Chan():
			onTick()

			select {
			case s.pending <- struct{}{}:
			default:
			}
		}
	}
}
