package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/arumata/vaultkeep/internal/app"
	"github.com/arumata/vaultkeep/internal/usecase"
)

func newTestDeps() *usecase.Dependencies {
	return app.NewDefaultDependencies(slog.Default())
}

// newReadyRepo initializes a repository in a temp dir and returns it in
// ready state.
func newReadyRepo(t *testing.T, id string) (*usecase.FilesystemRepository, string, *usecase.Dependencies) {
	t.Helper()
	deps := newTestDeps()
	root := filepath.Join(t.TempDir(), id)
	repo := usecase.NewFilesystemRepository(id, root, usecase.StateUninitialized, deps, slog.Default())
	if err := repo.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	return repo, root, deps
}

func writeObject(t *testing.T, root, name string, size int) {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	if err := os.WriteFile(filepath.Join(root, usecase.DataDirName, name), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeSnapshot(t *testing.T, root, name string, objects ...string) {
	t.Helper()
	manifest := usecase.SnapshotManifest{ID: name, Time: time.Now(), Objects: objects}
	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, usecase.SnapshotsDirName, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFilesystemRepository_InitializeCreatesLayout(t *testing.T) {
	ctx := context.Background()
	repo, root, _ := newReadyRepo(t, "alpha")

	for _, dir := range []string{"data", "snapshots", "index", "config"} {
		info, err := os.Stat(filepath.Join(root, dir))
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s after initialize", dir)
		}
	}

	data, err := os.ReadFile(filepath.Join(root, "config", "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	var cfg usecase.RepoConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Version != usecase.RepoConfigVersion {
		t.Fatalf("expected config version %q, got %q", usecase.RepoConfigVersion, cfg.Version)
	}

	ok, err := repo.Validate(ctx)
	if err != nil || !ok {
		t.Fatalf("expected valid repository, got ok=%v err=%v", ok, err)
	}
	if repo.State() != usecase.StateReady {
		t.Fatalf("expected ready, got %s", repo.State())
	}
}

func TestFilesystemRepository_InitializeTwice(t *testing.T) {
	repo, _, _ := newReadyRepo(t, "alpha")
	err := repo.Initialize(context.Background())
	if !errors.Is(err, usecase.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestFilesystemRepository_ValidateMissingPieces(t *testing.T) {
	ctx := context.Background()
	for _, dir := range []string{"data", "snapshots", "index", "config"} {
		t.Run(dir, func(t *testing.T) {
			repo, root, _ := newReadyRepo(t, "alpha")
			if err := os.RemoveAll(filepath.Join(root, dir)); err != nil {
				t.Fatal(err)
			}
			ok, err := repo.Validate(ctx)
			if err != nil {
				t.Fatalf("structural incompleteness must not error: %v", err)
			}
			if ok {
				t.Fatalf("expected invalid after removing %s", dir)
			}
		})
	}
}

func TestFilesystemRepository_ValidateMissingRoot(t *testing.T) {
	deps := newTestDeps()
	repo := usecase.NewFilesystemRepository("ghost", filepath.Join(t.TempDir(), "nope"),
		usecase.StateReady, deps, slog.Default())

	_, err := repo.Validate(context.Background())
	if !errors.Is(err, usecase.ErrNotAccessible) {
		t.Fatalf("expected ErrNotAccessible, got %v", err)
	}
	if repo.IsAccessible(context.Background()) {
		t.Fatal("missing root must not be accessible")
	}
}

func TestFilesystemRepository_LockLifecycle(t *testing.T) {
	ctx := context.Background()
	repo, root, _ := newReadyRepo(t, "alpha")

	if err := repo.Lock(ctx); err != nil {
		t.Fatal(err)
	}
	if repo.State() != usecase.StateLocked {
		t.Fatalf("expected locked, got %s", repo.State())
	}
	if _, err := os.Stat(filepath.Join(root, ".lock")); err != nil {
		t.Fatal("lock marker should exist while locked")
	}

	if err := repo.Unlock(ctx); err != nil {
		t.Fatal(err)
	}
	if repo.State() != usecase.StateReady {
		t.Fatalf("expected ready, got %s", repo.State())
	}
	if _, err := os.Stat(filepath.Join(root, ".lock")); !os.IsNotExist(err) {
		t.Fatal("lock marker should be gone after unlock")
	}
}

func TestFilesystemRepository_LockContended(t *testing.T) {
	ctx := context.Background()
	repo, root, deps := newReadyRepo(t, "alpha")

	if err := repo.Lock(ctx); err != nil {
		t.Fatal(err)
	}

	// A second instance over the same directory sees the marker.
	other := usecase.NewFilesystemRepository("alpha", root, usecase.StateReady, deps, slog.Default())
	err := other.Lock(ctx)
	if !errors.Is(err, usecase.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	// The same instance refuses by state.
	err = repo.Lock(ctx)
	if !errors.Is(err, usecase.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestFilesystemRepository_ConcurrentLockSingleWinner(t *testing.T) {
	ctx := context.Background()
	_, root, deps := newReadyRepo(t, "alpha")

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := usecase.NewFilesystemRepository("alpha", root, usecase.StateReady, deps, slog.Default())
			errs[i] = r.Lock(ctx)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, usecase.ErrLocked):
		case errors.Is(err, usecase.ErrInvalidConfiguration):
		default:
			t.Fatalf("unexpected error kind: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("exactly one lock must win, got %d", winners)
	}
}

func TestFilesystemRepository_UnlockWhenNotLocked(t *testing.T) {
	repo, _, _ := newReadyRepo(t, "alpha")
	err := repo.Unlock(context.Background())
	if !errors.Is(err, usecase.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	if repo.State() != usecase.StateReady {
		t.Fatal("state must be unchanged after a refused unlock")
	}
}

func TestFilesystemRepository_CheckWhileLocked(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newReadyRepo(t, "alpha")
	if err := repo.Lock(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Check(ctx, usecase.BasicHealthCheck()); !errors.Is(err, usecase.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestFilesystemRepository_CheckComputesStatistics(t *testing.T) {
	ctx := context.Background()
	repo, root, _ := newReadyRepo(t, "alpha")

	writeObject(t, root, "obj1", 4096)
	writeObject(t, root, "obj2", 1024)
	writeSnapshot(t, root, "snap1", "obj1", "obj2")
	// Hidden files are skipped by the size accounting.
	if err := os.WriteFile(filepath.Join(root, ".hidden"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := repo.Check(ctx, usecase.BasicHealthCheck())
	if err != nil {
		t.Fatal(err)
	}
	if st.SnapshotCount != 1 {
		t.Fatalf("expected one snapshot, got %d", st.SnapshotCount)
	}
	// obj1, obj2, the snapshot manifest and config.json.
	if st.TotalFiles != 4 {
		t.Fatalf("expected 4 files, got %d", st.TotalFiles)
	}
	if st.TotalSize == 0 || st.LogicalSize == 0 {
		t.Fatal("sizes should be non-zero")
	}
	if st.LastCheck.IsZero() {
		t.Fatal("check must stamp the statistics")
	}
	if got := repo.Stats(); got != st {
		t.Fatal("snapshot accessor must reflect the completed check")
	}
}

func TestFilesystemRepository_GetStatsReflectsGrowth(t *testing.T) {
	ctx := context.Background()
	repo, root, _ := newReadyRepo(t, "alpha")

	first, err := repo.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}

	writeObject(t, root, "grow", 64*1024)
	second, err := repo.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second.TotalSize <= first.TotalSize {
		t.Fatalf("size should grow: first=%d second=%d", first.TotalSize, second.TotalSize)
	}
	if repo.TotalSize() != second.TotalSize {
		t.Fatal("lightweight accessor must match the last completed check")
	}
}

func TestFilesystemRepository_AccessorNeverObservesTornStats(t *testing.T) {
	ctx := context.Background()
	repo, root, _ := newReadyRepo(t, "alpha")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			name := filepath.Join(root, usecase.DataDirName, "obj"+string(rune('a'+i)))
			if err := os.WriteFile(name, make([]byte, 8*1024), 0o644); err != nil {
				t.Error(err)
				return
			}
			if _, err := repo.Check(ctx, usecase.BasicHealthCheck()); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	var last int64
	for {
		select {
		case <-done:
			return
		default:
		}
		size := repo.TotalSize()
		if size < last {
			t.Fatalf("accessor went backwards: %d -> %d", last, size)
		}
		last = size
	}
}

func TestFilesystemRepository_CheckUnusedAndPrune(t *testing.T) {
	ctx := context.Background()
	repo, root, _ := newReadyRepo(t, "alpha")

	writeObject(t, root, "kept", 512)
	writeObject(t, root, "orphan", 512)
	writeSnapshot(t, root, "snap1", "kept")

	st, err := repo.Check(ctx, usecase.FullHealthCheck())
	if err != nil {
		t.Fatal(err)
	}
	if st.UnusedObjects != 1 {
		t.Fatalf("expected one unused object, got %d", st.UnusedObjects)
	}

	if err := repo.Prune(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "data", "orphan")); !os.IsNotExist(err) {
		t.Fatal("orphan object should be removed")
	}
	if _, err := os.Stat(filepath.Join(root, "data", "kept")); err != nil {
		t.Fatal("referenced object must survive pruning")
	}
}

func TestFilesystemRepository_RebuildIndex(t *testing.T) {
	ctx := context.Background()
	repo, root, _ := newReadyRepo(t, "alpha")

	writeObject(t, root, "obj1", 100)
	writeObject(t, root, "obj2", 200)

	if err := repo.RebuildIndex(ctx); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(root, "index", "index.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc usecase.IndexDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Objects) != 2 {
		t.Fatalf("expected 2 indexed objects, got %d", len(doc.Objects))
	}
	if doc.Objects[0].Name != "obj1" || doc.Objects[0].Size != 100 {
		t.Fatalf("unexpected first entry: %+v", doc.Objects[0])
	}
	if doc.RebuiltAt.IsZero() {
		t.Fatal("index should carry a rebuild timestamp")
	}
}

func TestFilesystemRepository_RepairIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, root, _ := newReadyRepo(t, "alpha")

	if err := os.RemoveAll(filepath.Join(root, "index")); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(root, "config", "config.json")); err != nil {
		t.Fatal(err)
	}

	repaired, err := repo.Repair(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !repaired {
		t.Fatal("repair should report that it acted")
	}
	if ok, err := repo.Validate(ctx); err != nil || !ok {
		t.Fatalf("repository should validate after repair, ok=%v err=%v", ok, err)
	}

	repaired, err = repo.Repair(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if repaired {
		t.Fatal("second repair should be a no-op")
	}
}

func TestFilesystemRepository_CheckReadDataFindsDamage(t *testing.T) {
	ctx := context.Background()
	repo, root, _ := newReadyRepo(t, "alpha")

	writeObject(t, root, "obj1", 256)
	if _, err := repo.Check(ctx, usecase.HealthCheckOptions{ReadData: true}); err != nil {
		t.Fatal(err)
	}

	// An unreadable object fails the deep check.
	objPath := filepath.Join(root, "data", "obj1")
	if err := os.Chmod(objPath, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(objPath, 0o644) })
	if os.Getuid() == 0 {
		t.Skip("chmod-based damage is invisible to root")
	}

	_, err := repo.Check(ctx, usecase.HealthCheckOptions{ReadData: true})
	if !errors.Is(err, usecase.ErrOperationFailed) {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}
}

func TestInferState(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps()

	fresh := filepath.Join(t.TempDir(), "fresh")
	if got := usecase.InferState(ctx, deps, fresh); got != usecase.StateUninitialized {
		t.Fatalf("missing dir: expected uninitialized, got %s", got)
	}

	repo, root, _ := newReadyRepo(t, "alpha")
	if got := usecase.InferState(ctx, deps, root); got != usecase.StateReady {
		t.Fatalf("initialized dir: expected ready, got %s", got)
	}

	if err := repo.Lock(ctx); err != nil {
		t.Fatal(err)
	}
	if got := usecase.InferState(ctx, deps, root); got != usecase.StateLocked {
		t.Fatalf("marker present: expected locked, got %s", got)
	}
}

func TestBuildServiceSkipsBrokenEntries(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps()

	_, root, _ := newReadyRepo(t, "good")
	cfg := usecase.DefaultServiceConfig()
	cfg.AddRepository(usecase.RepositoryEntry{ID: "good", Path: root})
	cfg.AddRepository(usecase.RepositoryEntry{ID: "bad", Path: string([]byte{0})})

	svc, err := usecase.BuildService(ctx, cfg, deps, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get("good"); err != nil {
		t.Fatal("healthy entry should be registered")
	}
}
