package sim

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// lineWidth is the DDRAM width of one HD44780 row.
const lineWidth = 40

// errCursor is returned for a cursor move off the grid.
var errCursor = errors.New("sim: cursor out of bounds")

// Display is a character grid with the HD44780 addressing rules: writes
// advance the cursor and land off-screen past the visible width.
type Display struct {
	mu      sync.Mutex
	columns int
	lines   [][]byte
	row     int
	column  int
	cursor  bool
	out     io.Writer
	// last is the most recent frame written to out.
	last string
}

// NewDisplay creates a columns x rows grid. When out is not nil every
// visible change is rendered to it.
func NewDisplay(columns, rows int, out io.Writer) *Display {
	d := &Display{
		columns: columns,
		lines:   make([][]byte, rows),
		out:     out,
	}

	for i := range d.lines {
		d.lines[i] = []byte(strings.Repeat(" ", lineWidth))
	}

	return d
}

// Clear blanks the grid and homes the cursor.
func (d *Display) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.lines {
		d.lines[i] = []byte(strings.Repeat(" ", lineWidth))
	}

	d.row, d.column = 0, 0
	d.flush()

	return nil
}

// SetCursor moves the write position.
func (d *Display) SetCursor(row, column int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if row < 0 || row >= len(d.lines) || column < 0 || column >= d.columns {
		return fmt.Errorf("%w: row %d column %d", errCursor, row, column)
	}

	d.row, d.column = row, column

	return nil
}

// Print writes text at the cursor.
func (d *Display) Print(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range len(text) {
		d.lines[d.row][d.column] = text[i]
		d.column = (d.column + 1) % lineWidth
	}

	d.flush()

	return nil
}

// ShowCursor records the cursor visibility.
func (d *Display) ShowCursor(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cursor = on

	return nil
}

// Row returns the visible part of row i.
func (d *Display) Row(i int) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return string(d.lines[i][:d.columns])
}

// Line returns the full DDRAM content of row i without trailing blanks.
func (d *Display) Line(i int) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return strings.TrimRight(string(d.lines[i]), " ")
}

// Cursor returns the cursor position and visibility.
func (d *Display) Cursor() (row, column int, visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.row, d.column, d.cursor
}

func (d *Display) flush() {
	if d.out == nil {
		return
	}

	var b strings.Builder

	for _, line := range d.lines {
		b.WriteString("|")
		b.Write(line[:d.columns])
		b.WriteString("|\n")
	}

	frame := b.String()
	if frame == d.last {
		return
	}

	d.last = frame
	_, _ = io.WriteString(d.out, frame)
}
