package usecase

import "time"

// RepositoryState describes the lifecycle state of one repository.
type RepositoryState int

const (
	// StateUninitialized means the on-disk structure has not been created yet.
	StateUninitialized RepositoryState = iota
	// StateReady means the repository is initialized and available for operations.
	StateReady
	// StateLocked means the repository is held exclusively; only Unlock and
	// read-only accessors are permitted.
	StateLocked
)

// String returns the lowercase state name.
func (s RepositoryState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// RepositoryStatistics is the cached result of the most recent successful
// Check or GetStats call. It stays stale until the next refresh.
type RepositoryStatistics struct {
	// TotalSize is the allocated on-disk size in bytes of all non-hidden
	// files under the repository root.
	TotalSize int64
	// LogicalSize is the byte-exact logical size of the same files.
	LogicalSize int64
	// SnapshotCount is the non-recursive entry count of snapshots/.
	SnapshotCount int
	// TotalFiles is the number of non-hidden regular files walked.
	TotalFiles int
	// UnusedObjects is the number of data objects no snapshot references.
	// Only populated when the check was asked to look for unused data.
	UnusedObjects int
	// LastCheck is when these values were computed.
	LastCheck time.Time
}

// CompressionRatio reports logical bytes per allocated byte. A value above 1
// means the data occupies less disk than its logical size.
func (s RepositoryStatistics) CompressionRatio() float64 {
	if s.TotalSize == 0 {
		return 0
	}
	return float64(s.LogicalSize) / float64(s.TotalSize)
}

// HealthCheckOptions configures how deep a repository check goes.
type HealthCheckOptions struct {
	// ReadData verifies every data object by reading it fully.
	ReadData bool
	// CheckUnused looks for data objects no snapshot references.
	CheckUnused bool
}

// BasicHealthCheck returns the cheap structural check preset.
func BasicHealthCheck() HealthCheckOptions {
	return HealthCheckOptions{}
}

// FullHealthCheck returns the preset that reads all data and hunts for
// unreferenced objects.
func FullHealthCheck() HealthCheckOptions {
	return HealthCheckOptions{ReadData: true, CheckUnused: true}
}

// LockInfo identifies the holder of a repository lock.
type LockInfo struct {
	PID          int       `json:"pid"`
	Hostname     string    `json:"hostname"`
	RepositoryID string    `json:"repository_id"`
	AcquiredAt   time.Time `json:"acquired_at"`
}

// SnapshotManifest is the JSON document stored per snapshot under
// snapshots/. Objects lists the data object names the snapshot references.
type SnapshotManifest struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Objects []string  `json:"objects"`
}

// IndexEntry describes one data object in the on-disk index.
type IndexEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// IndexDocument is the JSON document written to index/index.json by
// RebuildIndex.
type IndexDocument struct {
	RebuiltAt time.Time    `json:"rebuilt_at"`
	Objects   []IndexEntry `json:"objects"`
}

// FileInfo represents file information.
type FileInfo interface {
	Name() string
	Size() int64
	// AllocatedSize is the on-disk size in bytes (block-aligned on
	// platforms that report it, logical size elsewhere).
	AllocatedSize() int64
	ModTime() time.Time
	IsDir() bool
	IsRegular() bool
}

// WalkFunc is called for each file/directory during Walk.
type WalkFunc func(path string, info FileInfo, err error) error

// DirEntry represents a directory entry.
type DirEntry interface {
	Name() string
	IsDir() bool
}
