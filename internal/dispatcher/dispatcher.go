package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/keypad"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Screen text.
const (
	SplashTitle  = "RTC CONTROL"
	SplashLegend = "12/13/14=ALARM 15=RTC"
	NowLabel     = " NOW: "
	Legend       = "1 2 3 RTC"
	RTCTitle     = " SET RTC (15=OK)"
)

// AlarmTitle returns the editor title of alarm slot i, counted from zero.
func AlarmTitle(i int) string {
	return fmt.Sprintf(" SET ALARM%d", i+1)
}

// Display is the character display.
type Display interface {
	Clear() error
	SetCursor(row, column int) error
	Print(text string) error
}

// KeySource yields debounced key events.
type KeySource interface {
	ReadKeyOnce(ctx context.Context) (keypad.Code, bool)
}

// Editor runs one blocking time entry.
type Editor interface {
	Edit(ctx context.Context, initial clock.TimeOfDay, title string) (clock.TimeOfDay, error)
}

// Clock is the time source backed by the RTC chip.
type Clock interface {
	Reconcile(ctx context.Context) clock.TimeOfDay
	Current(ctx context.Context) clock.TimeOfDay
	CommitAndResync(ctx context.Context, t clock.TimeOfDay) clock.TimeOfDay
}

// Output is the alarm output line.
type Output interface {
	Set(active bool) error
}

// Sleeper suspends the caller for a fixed duration.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Deps are the collaborators of a Dispatcher.
type Deps struct {
	Display Display
	Keys    KeySource
	Editor  Editor
	Clock   Clock
	Output  Output
	Sleeper Sleeper
	// Ticks delivers one value per elapsed tick period.
	Ticks <-chan struct{}
}

// Options holds the dispatcher delays.
type Options struct {
	// Pulse is how long the output stays active when an alarm fires.
	Pulse time.Duration
	// Splash is how long the boot screen is shown.
	Splash time.Duration
	// IdlePoll is slept when an iteration had neither a tick nor a key.
	IdlePoll time.Duration
}

// Dispatcher is the application state and its main loop.
type Dispatcher struct {
	deps   Deps
	opts   Options
	alarms alarm.Slots
}

// New creates a Dispatcher with every alarm slot at 00:00:00.
func New(deps Deps, opts Options) *Dispatcher {
	return &Dispatcher{
		deps: deps,
		opts: opts,
	}
}

// Alarms returns a copy of the alarm slots.
func (d *Dispatcher) Alarms() alarm.Slots {
	return d.alarms
}

// Run shows the boot screen and loops until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "dispatcher")

	now := d.deps.Clock.Reconcile(ctx)
	logger.InfoKV(ctx, "Clock started", "now", now.String())

	d.splash(ctx)

	for {
		if err := ctx.Err(); err != nil {
			logger.Info(ctx, "Context canceled, exiting")

			return nil
		}

		busy := false

		select {
		case <-d.deps.Ticks:
			d.tick(ctx)

			busy = true
		default:
		}

		if key, ok := d.deps.Keys.ReadKeyOnce(ctx); ok {
			d.handleKey(ctx, key)

			busy = true
		}

		if !busy {
			d.deps.Sleeper.Sleep(d.opts.IdlePoll)
		}
	}
}

// tick reconciles, shows and evaluates the current time.
func (d *Dispatcher) tick(ctx context.Context) {
	now := d.deps.Clock.Reconcile(ctx)
	d.show(ctx, now)

	if slot, ok := d.alarms.Match(now); ok {
		logger.InfoKV(ctx, "Alarm", "slot", slot+1, "now", now.String())
		d.pulse(ctx)
	}
}

// handleKey routes the top-level function keys; every other key is dropped.
func (d *Dispatcher) handleKey(ctx context.Context, key keypad.Code) {
	if slot, ok := key.AlarmSlot(); ok {
		d.editAlarm(ctx, slot)

		return
	}

	if key == keypad.Confirm {
		d.setRTC(ctx)

		return
	}

	logger.DebugKV(ctx, "Key ignored", "key", key.String())
}

func (d *Dispatcher) editAlarm(ctx context.Context, slot int) {
	ctx = logger.WithKV(ctx, "slot", slot+1)

	value, err := d.deps.Editor.Edit(ctx, d.alarms[slot], AlarmTitle(slot))
	if err != nil {
		return
	}

	d.alarms[slot] = value
	logger.InfoKV(ctx, "Alarm set", "value", value.String())

	d.repaint(ctx, d.deps.Clock.Reconcile(ctx))
}

func (d *Dispatcher) setRTC(ctx context.Context) {
	initial := d.deps.Clock.Current(ctx)

	value, err := d.deps.Editor.Edit(ctx, initial, RTCTitle)
	if err != nil {
		return
	}

	d.repaint(ctx, d.deps.Clock.CommitAndResync(ctx, value))
}

func (d *Dispatcher) splash(ctx context.Context) {
	d.check(ctx, d.deps.Display.Clear())
	d.printAt(ctx, 0, SplashTitle)
	d.printAt(ctx, 1, SplashLegend)
	d.deps.Sleeper.Sleep(d.opts.Splash)
	d.check(ctx, d.deps.Display.Clear())
}

// repaint clears the editor screen and shows now.
func (d *Dispatcher) repaint(ctx context.Context, now clock.TimeOfDay) {
	d.check(ctx, d.deps.Display.Clear())
	d.show(ctx, now)
}

func (d *Dispatcher) show(ctx context.Context, now clock.TimeOfDay) {
	d.printAt(ctx, 0, NowLabel+now.String())
	d.printAt(ctx, 1, Legend)
}

// pulse holds the output active for the pulse duration.
func (d *Dispatcher) pulse(ctx context.Context) {
	if err := d.deps.Output.Set(true); err != nil {
		logger.WarnKV(ctx, "Output failed", "error", err)
	}

	d.deps.Sleeper.Sleep(d.opts.Pulse)

	if err := d.deps.Output.Set(false); err != nil {
		logger.WarnKV(ctx, "Output failed", "error", err)
	}
}

func (d *Dispatcher) printAt(ctx context.Context, row int, text string) {
	d.check(ctx, d.deps.Display.SetCursor(row, 0))
	d.check(ctx, d.deps.Display.Print(text))
}

func (d *Dispatcher) check(ctx context.Context, err error) {
	if err != nil {
		logger.DebugKV(ctx, "Display write failed", "error", err)
	}
}
