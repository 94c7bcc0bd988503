package sim

import (
	"context"
	"sync"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// Output is an alarm output line that logs its transitions.
type Output struct {
	ctx context.Context //nolint:containedctx // Only carries the logger.

	mu     sync.Mutex
	active bool
	pulses int
}

// NewOutput creates an inactive line logging through ctx.
func NewOutput(ctx context.Context) *Output {
	return &Output{ctx: logger.WithName(ctx, "sim-output")}
}

// Set drives the line.
func (o *Output) Set(active bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if active && !o.active {
		o.pulses++
	}

	o.active = active

	logger.InfoKV(o.ctx, "Output line", "active", active)

	return nil
}

// Active reports the line state.
func (o *Output) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.active
}

// Pulses returns the number of inactive-to-active transitions.
func (o *Output) Pulses() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.pulses
}
