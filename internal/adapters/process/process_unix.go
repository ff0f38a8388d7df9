//go:build !windows

package process

import (
	"context"

	"golang.org/x/sys/unix"
)

// IsProcessRunning checks if a process with given PID is running.
func (a *Adapter) IsProcessRunning(ctx context.Context, pid int) bool {
	if pid <= 0 {
		return false
	}

	// Send signal 0 to check if process exists.
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}
