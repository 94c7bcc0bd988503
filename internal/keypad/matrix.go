package keypad

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// MatrixSize is the number of rows and of columns.
const MatrixSize = 4

var (
	// errMatrixShape is returned when the pin sets are not 4x4.
	errMatrixShape = errors.New("keypad matrix must be 4x4")
	// errLayout is returned for a layout that is not 16 codes.
	errLayout = errors.New("keypad layout must hold 16 codes")
)

// Matrix scans a 4x4 keypad: rows are driven low one at a time and a
// pressed key pulls its column low through the closed contact.
type Matrix struct {
	rows    [MatrixSize]gpio.PinOut
	columns [MatrixSize]gpio.PinIn
	layout  [MatrixSize * MatrixSize]Code
}

// NewMatrix configures the pins: rows as outputs idling high, columns as
// pulled-up inputs. A nil layout maps matrix index row*4+column to the same code.
func NewMatrix(rows []gpio.PinOut, columns []gpio.PinIn, layout []Code) (*Matrix, error) {
	if len(rows) != MatrixSize || len(columns) != MatrixSize {
		return nil, errMatrixShape
	}

	m := new(Matrix)

	for i := range m.layout {
		m.layout[i] = Code(i)
	}

	if layout != nil {
		if len(layout) != len(m.layout) {
			return nil, errLayout
		}

		copy(m.layout[:], layout)
	}

	for i, row := range rows {
		if err := row.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("configure row %s: %w", row, err)
		}

		m.rows[i] = row
	}

	for i, column := range columns {
		if err := column.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("configure column %s: %w", column, err)
		}

		m.columns[i] = column
	}

	return m, nil
}

// Scan returns the first asserted key in row-major order.
// A pin write failure reads as no key.
func (m *Matrix) Scan() (Code, bool) {
	for r, row := range m.rows {
		if err := row.Out(gpio.Low); err != nil {
			logger.Logger().Warnw("Keypad row write failed", "row", r, "error", err)

			return 0, false
		}

		column, pressed := m.pressedColumn()

		if err := row.Out(gpio.High); err != nil {
			logger.Logger().Warnw("Keypad row release failed", "row", r, "error", err)

			return 0, false
		}

		if pressed {
			return m.layout[r*MatrixSize+column], true
		}
	}

	return 0, false
}

func (m *Matrix) pressedColumn() (int, bool) {
	for c, column := range m.columns {
		if column.Read() == gpio.Low {
			return c, true
		}
	}

	return -1, false
}
