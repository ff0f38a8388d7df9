//go:build windows

package process

import (
	"context"

	"golang.org/x/sys/windows"
)

// IsProcessRunning checks if a process with given PID is running.
func (a *Adapter) IsProcessRunning(ctx context.Context, pid int) bool {
	if pid <= 0 {
		return false
	}

	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer func() {
		_ = windows.CloseHandle(h)
	}()

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	return code == windows.STILL_ACTIVE
}
