//go:build !windows

package lock

import "golang.org/x/sys/unix"

// isProcessRunning checks if process with given PID is running.
func (a *Adapter) isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	// Signal 0 probes existence without delivering anything. EPERM still
	// means the process exists.
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}
