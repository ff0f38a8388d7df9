package lock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/arumata/vaultkeep/internal/usecase"
)

// Adapter implements LockPort using an exclusive-create marker file. The
// marker's presence is the sole source of truth for "locked": Acquire never
// overwrites an existing marker, stale or not.
type Adapter struct {
	logger *slog.Logger
}

// New creates a new lock adapter.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		panic("lock adapter requires logger")
	}
	return &Adapter{logger: logger}
}

// Acquire creates the marker file, failing with ErrLocked when one already
// exists. Holder info is written as JSON into the marker.
func (a *Adapter) Acquire(ctx context.Context, path string, info usecase.LockInfo) error {
	if info.PID == 0 {
		info.PID = os.Getpid()
	}
	if info.AcquiredAt.IsZero() {
		info.AcquiredAt = time.Now()
	}
	if info.Hostname == "" {
		hostname, _ := os.Hostname()
		info.Hostname = hostname
	}

	// #nosec G304 - path is controlled by usecase
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return a.contendedError(path)
		}
		return fmt.Errorf("create lock marker: %w", err)
	}

	data, err := json.Marshal(info)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("marshal lock info: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write lock info: %w", err)
	}
	return f.Close()
}

// contendedError reads the existing marker to name the holder in the error.
func (a *Adapter) contendedError(path string) error {
	holder, err := a.readLockInfo(path)
	if err != nil {
		return fmt.Errorf("lock marker already exists: %w", usecase.ErrLocked)
	}
	alive := a.isProcessRunning(holder.PID)
	a.logger.Debug("lock contended",
		"holder_pid", holder.PID, "holder_host", holder.Hostname, "holder_alive", alive)
	return fmt.Errorf("held by pid %d on %s since %s: %w",
		holder.PID, holder.Hostname, holder.AcquiredAt.Format(time.RFC3339), usecase.ErrLocked)
}

// Release removes the marker file.
func (a *Adapter) Release(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove lock marker: %w", err)
	}
	return nil
}

// Holder reports whether the marker exists and who holds it.
func (a *Adapter) Holder(ctx context.Context, path string) (bool, usecase.LockInfo, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, usecase.LockInfo{}, nil
	}

	info, err := a.readLockInfo(path)
	if err != nil {
		return true, usecase.LockInfo{}, err
	}
	return true, info, nil
}

// readLockInfo reads holder information from the marker file.
func (a *Adapter) readLockInfo(path string) (usecase.LockInfo, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is controlled by the adapter
	if err != nil {
		return usecase.LockInfo{}, err
	}

	var info usecase.LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return usecase.LockInfo{}, fmt.Errorf("invalid lock marker format: %w", err)
	}
	return info, nil
}
