package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// fakeRepository is a scripted Repository for registry and bulk-operation
// tests. Error fields make the corresponding operation fail; counters record
// what was called.
type fakeRepository struct {
	id       string
	location string

	accessible     bool
	validateResult bool
	validateErr    error

	initErr    error
	lockErr    error
	unlockErr  error
	checkErr   error
	pruneErr   error
	rebuildErr error
	repairErr  error
	repaired   bool

	mu           sync.Mutex
	state        RepositoryState
	stats        RepositoryStatistics
	initCalls    int
	lockCalls    int
	unlockCalls  int
	checkCalls   int
	pruneCalls   int
	rebuildCalls int
}

func newFakeRepository(id string, state RepositoryState) *fakeRepository {
	return &fakeRepository{
		id:             id,
		location:       "/fake/" + id,
		accessible:     true,
		validateResult: true,
		state:          state,
	}
}

func (f *fakeRepository) ID() string       { return f.id }
func (f *fakeRepository) Location() string { return f.location }

func (f *fakeRepository) State() RepositoryState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeRepository) Initialize(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	if f.initErr != nil {
		return f.initErr
	}
	if f.state != StateUninitialized {
		return fmt.Errorf("initialize from %s: %w", f.state, ErrInvalidConfiguration)
	}
	f.state = StateReady
	return nil
}

func (f *fakeRepository) Validate(context.Context) (bool, error) {
	return f.validateResult, f.validateErr
}

func (f *fakeRepository) IsAccessible(context.Context) bool { return f.accessible }

func (f *fakeRepository) Lock(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lockCalls++
	if f.lockErr != nil {
		return f.lockErr
	}
	if f.state != StateReady {
		return fmt.Errorf("lock from %s: %w", f.state, ErrInvalidConfiguration)
	}
	f.state = StateLocked
	return nil
}

func (f *fakeRepository) Unlock(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlockCalls++
	if f.unlockErr != nil {
		return f.unlockErr
	}
	if f.state != StateLocked {
		return fmt.Errorf("unlock from %s: %w", f.state, ErrInvalidConfiguration)
	}
	f.state = StateReady
	return nil
}

func (f *fakeRepository) Check(context.Context, HealthCheckOptions) (RepositoryStatistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkCalls++
	if f.checkErr != nil {
		return RepositoryStatistics{}, f.checkErr
	}
	f.stats.LastCheck = time.Now()
	return f.stats, nil
}

func (f *fakeRepository) Repair(context.Context) (bool, error) {
	return f.repaired, f.repairErr
}

func (f *fakeRepository) Prune(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruneCalls++
	return f.pruneErr
}

func (f *fakeRepository) RebuildIndex(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rebuildCalls++
	return f.rebuildErr
}

func (f *fakeRepository) GetStats(ctx context.Context) (RepositoryStatistics, error) {
	return f.Check(ctx, BasicHealthCheck())
}

func (f *fakeRepository) Stats() RepositoryStatistics {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

func (f *fakeRepository) TotalSize() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats.TotalSize
}

func (f *fakeRepository) TotalFiles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats.TotalFiles
}

func (f *fakeRepository) calls() (lock, unlock, prune, rebuild int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lockCalls, f.unlockCalls, f.pruneCalls, f.rebuildCalls
}

func newTestService() *Service {
	return NewService(slog.Default())
}
