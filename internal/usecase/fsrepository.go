package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Standard on-disk layout relative to the repository root.
const (
	DataDirName      = "data"
	SnapshotsDirName = "snapshots"
	IndexDirName     = "index"
	ConfigDirName    = "config"
	RepoConfigName   = "config.json"
	IndexFileName    = "index.json"
	LockMarkerName   = ".lock"
)

//nolint:gochecknoglobals // overridden in tests for deterministic timestamps.
var statsNow = time.Now

// FilesystemRepository is a Repository backed by a directory tree. One mutex
// serializes state transitions and mutating operations; a separate RWMutex
// guards the state/statistics snapshot so readers never observe a
// half-updated value and never wait on an in-flight check.
type FilesystemRepository struct {
	id       string
	location string
	deps     *Dependencies
	logger   *slog.Logger

	opMu sync.Mutex

	mu    sync.RWMutex
	state RepositoryState
	stats RepositoryStatistics
}

// NewFilesystemRepository creates a repository bound to location. The caller
// supplies the initial state, normally StateUninitialized for a fresh
// directory.
func NewFilesystemRepository(id, location string, state RepositoryState, deps *Dependencies, logger *slog.Logger) *FilesystemRepository {
	if logger == nil {
		panic("filesystem repository requires logger")
	}
	if deps == nil || deps.FileSystem == nil || deps.Lock == nil || deps.Config == nil {
		panic("filesystem repository requires filesystem, lock and config adapters")
	}
	return &FilesystemRepository{
		id:       id,
		location: location,
		deps:     deps,
		logger:   logger.With("repository", id),
		state:    state,
	}
}

// ID returns the unique identifier.
func (r *FilesystemRepository) ID() string { return r.id }

// Location returns the repository root path.
func (r *FilesystemRepository) Location() string { return r.location }

// State returns the current lifecycle state.
func (r *FilesystemRepository) State() RepositoryState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Stats returns the last computed statistics snapshot.
func (r *FilesystemRepository) Stats() RepositoryStatistics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// TotalSize returns the last computed allocated size in bytes.
func (r *FilesystemRepository) TotalSize() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats.TotalSize
}

// TotalFiles returns the last computed file count.
func (r *FilesystemRepository) TotalFiles() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats.TotalFiles
}

func (r *FilesystemRepository) setState(s RepositoryState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *FilesystemRepository) storeStats(st RepositoryStatistics) {
	r.mu.Lock()
	r.stats = st
	r.mu.Unlock()
}

func (r *FilesystemRepository) requireState(op string, want RepositoryState) error {
	if got := r.State(); got != want {
		return fmt.Errorf("%s requires state %s, repository %q is %s: %w",
			op, want, r.id, got, ErrInvalidConfiguration)
	}
	return nil
}

// Initialize creates the standard directory layout and the initial config
// file, then transitions to ready.
func (r *FilesystemRepository) Initialize(ctx context.Context) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if err := r.requireState("initialize", StateUninitialized); err != nil {
		return err
	}

	fs := r.deps.FileSystem
	for _, dir := range []string{"", DataDirName, SnapshotsDirName, IndexDirName, ConfigDirName} {
		path := r.location
		if dir != "" {
			path = fs.Join(r.location, dir)
		}
		if err := fs.CreateDir(ctx, path, 0o755); err != nil {
			return fmt.Errorf("create %s: %v: %w", path, err, ErrOperationFailed)
		}
	}

	cfgPath := fs.Join(r.location, ConfigDirName, RepoConfigName)
	if err := r.deps.Config.SaveRepoConfig(ctx, cfgPath, DefaultRepoConfig()); err != nil {
		return fmt.Errorf("write repository config: %v: %w", err, ErrOperationFailed)
	}

	r.setState(StateReady)
	r.logger.Info("repository initialized", "location", r.location)
	return nil
}

// Validate reports whether the standard subdirectories and a parseable
// config file are present. A missing root is ErrNotAccessible; a missing
// piece inside an existing root is false without error.
func (r *FilesystemRepository) Validate(ctx context.Context) (bool, error) {
	fs := r.deps.FileSystem

	info, err := fs.Stat(ctx, r.location)
	if err != nil || !info.IsDir() {
		return false, fmt.Errorf("repository root %q: %w", r.location, ErrNotAccessible)
	}

	for _, dir := range []string{DataDirName, SnapshotsDirName, IndexDirName, ConfigDirName} {
		sub, err := fs.Stat(ctx, fs.Join(r.location, dir))
		if err != nil || !sub.IsDir() {
			return false, nil
		}
	}

	cfgPath := fs.Join(r.location, ConfigDirName, RepoConfigName)
	if _, err := r.deps.Config.LoadRepoConfig(ctx, cfgPath); err != nil {
		return false, nil
	}
	return true, nil
}

// IsAccessible reports whether the location exists and is a directory.
func (r *FilesystemRepository) IsAccessible(ctx context.Context) bool {
	info, err := r.deps.FileSystem.Stat(ctx, r.location)
	return err == nil && info.IsDir()
}

// Lock acquires the exclusive lock marker and transitions to locked.
func (r *FilesystemRepository) Lock(ctx context.Context) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if err := r.requireState("lock", StateReady); err != nil {
		return err
	}

	info := LockInfo{
		RepositoryID: r.id,
		AcquiredAt:   time.Now(),
	}
	if r.deps.Process != nil {
		info.PID = r.deps.Process.GetPID()
	}

	markerPath := r.deps.FileSystem.Join(r.location, LockMarkerName)
	if err := r.deps.Lock.Acquire(ctx, markerPath, info); err != nil {
		return fmt.Errorf("lock repository %q: %w", r.id, err)
	}

	r.setState(StateLocked)
	r.logger.Info("repository locked")
	return nil
}

// Unlock removes the lock marker and transitions back to ready.
func (r *FilesystemRepository) Unlock(ctx context.Context) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if err := r.requireState("unlock", StateLocked); err != nil {
		return err
	}

	markerPath := r.deps.FileSystem.Join(r.location, LockMarkerName)
	if err := r.deps.Lock.Release(ctx, markerPath); err != nil {
		return fmt.Errorf("unlock repository %q: %v: %w", r.id, err, ErrOperationFailed)
	}

	r.setState(StateReady)
	r.logger.Info("repository unlocked")
	return nil
}

// Check recomputes statistics and stores them atomically. ReadData verifies
// every data object by reading it; CheckUnused counts objects no snapshot
// references.
func (r *FilesystemRepository) Check(ctx context.Context, opts HealthCheckOptions) (RepositoryStatistics, error) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if err := r.requireState("check", StateReady); err != nil {
		return RepositoryStatistics{}, err
	}

	st, err := r.computeStats(ctx)
	if err != nil {
		return RepositoryStatistics{}, err
	}

	if opts.ReadData {
		if err := r.verifyData(ctx); err != nil {
			return RepositoryStatistics{}, err
		}
	}
	if opts.CheckUnused {
		unused, err := r.countUnused(ctx)
		if err != nil {
			return RepositoryStatistics{}, err
		}
		st.UnusedObjects = unused
	}

	st.LastCheck = statsNow()
	r.storeStats(st)
	r.logger.Debug("check completed",
		"total_size", st.TotalSize, "snapshots", st.SnapshotCount, "files", st.TotalFiles)
	return st, nil
}

// GetStats refreshes and returns cached statistics.
func (r *FilesystemRepository) GetStats(ctx context.Context) (RepositoryStatistics, error) {
	return r.Check(ctx, BasicHealthCheck())
}

// computeStats walks the tree once, summing allocated and logical sizes of
// non-hidden files, and counts snapshot entries. Size and snapshot count
// belong to the same traversal so they land in the cache together.
func (r *FilesystemRepository) computeStats(ctx context.Context) (RepositoryStatistics, error) {
	fs := r.deps.FileSystem
	var st RepositoryStatistics

	err := fs.Walk(ctx, r.location, func(path string, info FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info == nil || info.IsDir() {
			return nil
		}
		if strings.HasPrefix(fs.Base(path), ".") {
			return nil
		}
		st.TotalSize += info.AllocatedSize()
		st.LogicalSize += info.Size()
		st.TotalFiles++
		return nil
	})
	if err != nil {
		return RepositoryStatistics{}, fmt.Errorf("walk repository %q: %v: %w", r.id, err, ErrOperationFailed)
	}

	entries, err := fs.ReadDir(ctx, fs.Join(r.location, SnapshotsDirName))
	if err != nil {
		return RepositoryStatistics{}, fmt.Errorf("read snapshots of %q: %v: %w", r.id, err, ErrOperationFailed)
	}
	st.SnapshotCount = len(entries)
	return st, nil
}

// verifyData reads every data object fully.
func (r *FilesystemRepository) verifyData(ctx context.Context) error {
	fs := r.deps.FileSystem
	objects, err := r.listObjects(ctx)
	if err != nil {
		return err
	}
	for _, name := range objects {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("verify data of %q: %w", r.id, ErrInterrupted)
		}
		if _, err := fs.ReadFile(ctx, fs.Join(r.location, DataDirName, name)); err != nil {
			return fmt.Errorf("read object %s of %q: %v: %w", name, r.id, err, ErrOperationFailed)
		}
	}
	return nil
}

// countUnused reports how many data objects no snapshot references.
func (r *FilesystemRepository) countUnused(ctx context.Context) (int, error) {
	referenced, err := r.referencedObjects(ctx)
	if err != nil {
		return 0, err
	}
	objects, err := r.listObjects(ctx)
	if err != nil {
		return 0, err
	}
	unused := 0
	for _, name := range objects {
		if _, ok := referenced[name]; !ok {
			unused++
		}
	}
	return unused, nil
}

// listObjects returns the names of all files directly under data/.
func (r *FilesystemRepository) listObjects(ctx context.Context) ([]string, error) {
	fs := r.deps.FileSystem
	entries, err := fs.ReadDir(ctx, fs.Join(r.location, DataDirName))
	if err != nil {
		return nil, fmt.Errorf("read data dir of %q: %v: %w", r.id, err, ErrOperationFailed)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// referencedObjects collects the union of object names across all snapshot
// manifests.
func (r *FilesystemRepository) referencedObjects(ctx context.Context) (map[string]struct{}, error) {
	fs := r.deps.FileSystem
	snapDir := fs.Join(r.location, SnapshotsDirName)
	entries, err := fs.ReadDir(ctx, snapDir)
	if err != nil {
		return nil, fmt.Errorf("read snapshots of %q: %v: %w", r.id, err, ErrOperationFailed)
	}

	referenced := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		data, err := fs.ReadFile(ctx, fs.Join(snapDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read snapshot %s of %q: %v: %w", e.Name(), r.id, err, ErrOperationFailed)
		}
		var manifest SnapshotManifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("parse snapshot %s of %q: %v: %w", e.Name(), r.id, err, ErrOperationFailed)
		}
		for _, name := range manifest.Objects {
			referenced[name] = struct{}{}
		}
	}
	return referenced, nil
}

// Repair recreates missing standard directories and a missing or corrupt
// config file. Idempotent; reports whether anything was done.
func (r *FilesystemRepository) Repair(ctx context.Context) (bool, error) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if err := r.requireState("repair", StateReady); err != nil {
		return false, err
	}

	fs := r.deps.FileSystem
	repaired := false
	for _, dir := range []string{DataDirName, SnapshotsDirName, IndexDirName, ConfigDirName} {
		path := fs.Join(r.location, dir)
		if info, err := fs.Stat(ctx, path); err == nil && info.IsDir() {
			continue
		}
		if err := fs.CreateDir(ctx, path, 0o755); err != nil {
			return repaired, fmt.Errorf("recreate %s: %v: %w", path, err, ErrOperationFailed)
		}
		repaired = true
	}

	cfgPath := fs.Join(r.location, ConfigDirName, RepoConfigName)
	if _, err := r.deps.Config.LoadRepoConfig(ctx, cfgPath); err != nil {
		if err := r.deps.Config.SaveRepoConfig(ctx, cfgPath, DefaultRepoConfig()); err != nil {
			return repaired, fmt.Errorf("rewrite repository config: %v: %w", err, ErrOperationFailed)
		}
		repaired = true
	}

	if repaired {
		r.logger.Info("repository repaired")
	}
	return repaired, nil
}

// Prune removes data objects no snapshot references.
func (r *FilesystemRepository) Prune(ctx context.Context) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if err := r.requireState("prune", StateReady); err != nil {
		return err
	}

	referenced, err := r.referencedObjects(ctx)
	if err != nil {
		return err
	}
	objects, err := r.listObjects(ctx)
	if err != nil {
		return err
	}

	fs := r.deps.FileSystem
	removed := 0
	for _, name := range objects {
		if _, ok := referenced[name]; ok {
			continue
		}
		if err := fs.Remove(ctx, fs.Join(r.location, DataDirName, name)); err != nil {
			return fmt.Errorf("remove object %s of %q: %v: %w", name, r.id, err, ErrOperationFailed)
		}
		removed++
	}

	r.logger.Info("prune completed", "removed", removed, "kept", len(objects)-removed)
	return nil
}

// RebuildIndex regenerates index/index.json from the data directory.
func (r *FilesystemRepository) RebuildIndex(ctx context.Context) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if err := r.requireState("rebuild index", StateReady); err != nil {
		return err
	}

	fs := r.deps.FileSystem
	objects, err := r.listObjects(ctx)
	if err != nil {
		return err
	}

	doc := IndexDocument{RebuiltAt: statsNow(), Objects: make([]IndexEntry, 0, len(objects))}
	for _, name := range objects {
		info, err := fs.Stat(ctx, fs.Join(r.location, DataDirName, name))
		if err != nil {
			return fmt.Errorf("stat object %s of %q: %v: %w", name, r.id, err, ErrOperationFailed)
		}
		doc.Objects = append(doc.Objects, IndexEntry{Name: name, Size: info.Size()})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index of %q: %v: %w", r.id, err, ErrOperationFailed)
	}
	indexPath := fs.Join(r.location, IndexDirName, IndexFileName)
	if err := fs.WriteFile(ctx, indexPath, data, 0o644); err != nil {
		return fmt.Errorf("write index of %q: %v: %w", r.id, err, ErrOperationFailed)
	}

	r.logger.Info("index rebuilt", "objects", len(doc.Objects))
	return nil
}
