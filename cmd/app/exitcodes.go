package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/arumata/vaultkeep/internal/usecase"
)

const (
	exitSuccess       = 0
	exitCriticalError = 1
	exitUsageError    = 2
	exitNotFound      = 3
	exitLockBusy      = 76
	exitInterrupted   = 130
)

// mapExitCodeWithLog prints error to stderr and returns exit code.
func mapExitCodeWithLog(err error) int {
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(os.Stderr, err)
	return mapExitCode(err)
}

func mapExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	switch {
	case errors.Is(err, usecase.ErrUsage):
		return exitUsageError
	case errors.Is(err, usecase.ErrNotFound):
		return exitNotFound
	case errors.Is(err, usecase.ErrLocked):
		return exitLockBusy
	case errors.Is(err, usecase.ErrInterrupted):
		return exitInterrupted
	default:
		return exitCriticalError
	}
}
