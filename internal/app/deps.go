package app

import (
	"log/slog"

	"github.com/arumata/vaultkeep/internal/adapters/config"
	"github.com/arumata/vaultkeep/internal/adapters/filesystem"
	"github.com/arumata/vaultkeep/internal/adapters/lock"
	"github.com/arumata/vaultkeep/internal/adapters/notification"
	"github.com/arumata/vaultkeep/internal/adapters/process"
	"github.com/arumata/vaultkeep/internal/usecase"
)

// NewDefaultDependencies creates dependencies with real adapters.
func NewDefaultDependencies(logger *slog.Logger) *usecase.Dependencies {
	if logger == nil {
		panic("default dependencies require logger")
	}
	return &usecase.Dependencies{
		FileSystem:   filesystem.New(logger),
		Lock:         lock.New(logger),
		Config:       config.New(logger),
		Process:      process.New(logger),
		Notification: notification.New(logger),
	}
}
