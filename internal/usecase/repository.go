package usecase

import "context"

// Repository represents one backup destination. It owns its own state and
// statistics; the registry never reaches into either directly.
//
// State machine: uninitialized -> ready (Initialize), ready -> locked (Lock),
// locked -> ready (Unlock). Every other transition fails with
// ErrInvalidConfiguration. While locked, only Unlock and the read-only
// accessors are permitted.
type Repository interface {
	// ID returns the unique identifier. Immutable.
	ID() string
	// Location returns the filesystem path. Immutable.
	Location() string
	// State returns the current lifecycle state.
	State() RepositoryState

	// Initialize creates the standard directory layout and the initial
	// config file, then transitions uninitialized -> ready.
	Initialize(ctx context.Context) error
	// Validate reports whether the standard structure and a parseable
	// config file are present. A structurally incomplete repository is
	// false, not an error; a missing root is ErrNotAccessible.
	Validate(ctx context.Context) (bool, error)
	// IsAccessible reports whether the location exists and is a directory.
	// It never fails; any negative condition is false.
	IsAccessible(ctx context.Context) bool

	// Lock atomically creates the lock marker and transitions
	// ready -> locked. A contended marker fails with ErrLocked.
	Lock(ctx context.Context) error
	// Unlock removes the lock marker and transitions locked -> ready.
	Unlock(ctx context.Context) error

	// Check recomputes statistics, optionally verifying data content and
	// hunting for unreferenced objects. Requires ready.
	Check(ctx context.Context, opts HealthCheckOptions) (RepositoryStatistics, error)
	// Repair restores missing pieces of the standard structure and reports
	// whether any repair action was taken. Requires ready.
	Repair(ctx context.Context) (bool, error)
	// Prune removes data objects no snapshot references. Requires ready.
	Prune(ctx context.Context) error
	// RebuildIndex regenerates index/index.json from the data directory.
	// Requires ready.
	RebuildIndex(ctx context.Context) error
	// GetStats is Check with the basic preset.
	GetStats(ctx context.Context) (RepositoryStatistics, error)

	// Stats returns the last computed statistics without blocking on an
	// in-flight check.
	Stats() RepositoryStatistics
	// TotalSize returns the last computed allocated size in bytes.
	TotalSize() int64
	// TotalFiles returns the last computed file count.
	TotalFiles() int
}
