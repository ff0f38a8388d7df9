package process

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

func TestGetPID(t *testing.T) {
	t.Parallel()

	a := New(slog.Default())
	if got := a.GetPID(); got != os.Getpid() {
		t.Errorf("GetPID() = %d, want %d", got, os.Getpid())
	}
}

func TestIsProcessRunning(t *testing.T) {
	t.Parallel()

	a := New(slog.Default())
	ctx := context.Background()

	if !a.IsProcessRunning(ctx, os.Getpid()) {
		t.Error("current process should be reported as running")
	}
	if a.IsProcessRunning(ctx, 0) {
		t.Error("pid 0 should not be reported as running")
	}
	if a.IsProcessRunning(ctx, -1) {
		t.Error("negative pid should not be reported as running")
	}
}

func TestNew_NilLoggerPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on nil logger")
		}
	}()
	New(nil)
}
