package appliance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// errAlreadyRunning is returned when another appliance process owns the hardware.
var errAlreadyRunning = errors.New("another instance is already running")

// processLister returns the running processes.
type processLister func() ([]ps.Process, error)

// listProcesses is the host process table.
func listProcesses() ([]ps.Process, error) {
	return ps.Processes()
}

// ensureSingleInstance fails when a process with this executable's name runs.
// A process table that cannot be read is logged and ignored.
func ensureSingleInstance(ctx context.Context, list processLister) error {
	self, err := os.Executable()
	if err != nil {
		logger.WarnKV(ctx, "Resolve executable failed, skipping instance check", "error", err)

		return nil
	}

	pid, found, err := findInstance(list, filepath.Base(self), os.Getpid())
	if err != nil {
		logger.WarnKV(ctx, "List processes failed, skipping instance check", "error", err)

		return nil
	}

	if found {
		return fmt.Errorf("%w: pid %d", errAlreadyRunning, pid)
	}

	return nil
}

// findInstance returns the pid of a process named name other than self.
func findInstance(list processLister, name string, self int) (int, bool, error) {
	processList, err := list()
	if err != nil {
		return 0, false, err
	}

	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if process.Executable() == name {
			return process.Pid(), true, nil
		}
	}

	return 0, false, nil
}
