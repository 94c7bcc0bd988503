package editor

import (
	"context"
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/keypad"
	"github.com/oshokin/alarm-clock/internal/logger"
)

const (
	// Template is the edit row shown under the title.
	Template = "  00:00:00  (15=OK)"
	// ValueRow is the display row of the scratch value.
	ValueRow = 1
	// ValueColumn is where the scratch value is overlaid on Template.
	ValueColumn = 2
)

// Display is the part of the character display the editor draws on.
type Display interface {
	Clear() error
	SetCursor(row, column int) error
	Print(text string) error
	ShowCursor(on bool) error
}

// KeySource yields debounced key events.
type KeySource interface {
	ReadKeyOnce(ctx context.Context) (keypad.Code, bool)
}

// Sleeper suspends the caller for a fixed duration.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Options holds the editor delays.
type Options struct {
	// IdlePoll is slept when no key was read.
	IdlePoll time.Duration
	// ConfirmDelay is slept after the commit key, before the cursor is hidden.
	ConfirmDelay time.Duration
}

// Editor runs blocking time entry sessions.
type Editor struct {
	display Display
	keys    KeySource
	sleeper Sleeper
	opts    Options
}

// New creates an Editor.
func New(display Display, keys KeySource, sleeper Sleeper, opts Options) *Editor {
	return &Editor{
		display: display,
		keys:    keys,
		sleeper: sleeper,
		opts:    opts,
	}
}

// Edit shows title, lets the user change initial and blocks until the
// confirm key is pressed. Cancelling ctx abandons the edit and returns
// initial together with the context error.
func (e *Editor) Edit(ctx context.Context, initial clock.TimeOfDay, title string) (clock.TimeOfDay, error) {
	ctx = logger.WithName(ctx, "editor")
	cursor := NewCursor(initial)

	e.open(ctx, title)

	for {
		if err := ctx.Err(); err != nil {
			e.check(ctx, "hide cursor", e.display.ShowCursor(false))

			return initial, err
		}

		e.render(ctx, cursor)

		key, ok := e.keys.ReadKeyOnce(ctx)
		if !ok {
			e.sleeper.Sleep(e.opts.IdlePoll)

			continue
		}

		logger.DebugKV(ctx, "Key", "key", key.String(), "position", cursor.Position())

		if cursor.Press(key) {
			e.sleeper.Sleep(e.opts.ConfirmDelay)
			e.check(ctx, "hide cursor", e.display.ShowCursor(false))

			logger.InfoKV(ctx, "Edit committed", "title", title, "value", cursor.Value().String())

			return cursor.Value(), nil
		}
	}
}

func (e *Editor) open(ctx context.Context, title string) {
	e.check(ctx, "clear", e.display.Clear())
	e.check(ctx, "move", e.display.SetCursor(0, 0))
	e.check(ctx, "print", e.display.Print(title))
	e.check(ctx, "move", e.display.SetCursor(ValueRow, 0))
	e.check(ctx, "print", e.display.Print(Template))
	e.check(ctx, "show cursor", e.display.ShowCursor(true))
}

func (e *Editor) render(ctx context.Context, cursor *Cursor) {
	e.check(ctx, "move", e.display.SetCursor(ValueRow, ValueColumn))
	e.check(ctx, "print", e.display.Print(cursor.Value().String()))
	e.check(ctx, "move", e.display.SetCursor(ValueRow, cursor.Column()))
}

// check logs display failures; the edit continues regardless.
func (e *Editor) check(ctx context.Context, op string, err error) {
	if err != nil {
		logger.DebugKV(ctx, "Display write failed", "op", op, "error", err)
	}
}
