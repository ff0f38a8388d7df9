package usecase

import (
	"context"
	"fmt"
	"log/slog"
)

// InferState derives the lifecycle state of a repository from its on-disk
// condition: a missing or incomplete structure is uninitialized, a present
// lock marker means locked, anything else is ready.
func InferState(ctx context.Context, deps *Dependencies, location string) RepositoryState {
	fs := deps.FileSystem

	root, err := fs.Stat(ctx, location)
	if err != nil || !root.IsDir() {
		return StateUninitialized
	}
	for _, dir := range []string{DataDirName, SnapshotsDirName, IndexDirName, ConfigDirName} {
		info, err := fs.Stat(ctx, fs.Join(location, dir))
		if err != nil || !info.IsDir() {
			return StateUninitialized
		}
	}

	if _, err := fs.Stat(ctx, fs.Join(location, LockMarkerName)); err == nil {
		return StateLocked
	}
	return StateReady
}

// BuildService constructs a registry and registers every configured
// repository, inferring each state from disk. A repository that fails to
// register is skipped with a warning so one broken destination does not take
// the whole fleet offline.
func BuildService(ctx context.Context, cfg ServiceConfig, deps *Dependencies, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		panic("logger is required")
	}
	if deps == nil || deps.FileSystem == nil {
		return nil, fmt.Errorf("filesystem adapter not available: %w", ErrOperationFailed)
	}

	svc := NewService(logger)
	for _, entry := range cfg.Repositories {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build service: %w", ErrInterrupted)
		}
		state := InferState(ctx, deps, entry.Path)
		repo := NewFilesystemRepository(entry.ID, entry.Path, state, deps, logger)
		if err := svc.Register(ctx, repo); err != nil {
			logger.Warn("skipping configured repository",
				"repository", entry.ID, "location", entry.Path, "error", err)
		}
	}
	return svc, nil
}
