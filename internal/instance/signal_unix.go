//go:build !windows

package instance

import (
	"fmt"
	"os"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

func ackSignals() []os.Signal {
	return []os.Signal{syscall.SIGUSR1}
}

func signalAcknowledge(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	if err := p.SendSignal(syscall.SIGUSR1); err != nil {
		return fmt.Errorf("signal process %d: %w", pid, err)
	}
	return nil
}
