package usecase

import (
	"context"
	"fmt"
)

// forEach runs fn over a snapshot of the registered repositories, ordered by
// identifier. Without force the first failure stops the run and is returned
// with the failing identifier attached; remaining repositories are left
// untouched. With force the run continues to the end and all failures come
// back as one BulkError. Successes are logged either way so partial results
// stay visible.
func (s *Service) forEach(ctx context.Context, op string, force bool, fn func(context.Context, Repository) error) error {
	var failures []BulkFailure

	for _, repo := range s.List() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", op, ErrInterrupted)
		}
		if err := fn(ctx, repo); err != nil {
			if !force {
				return fmt.Errorf("%s: %s: %w", op, repo.ID(), err)
			}
			failures = append(failures, BulkFailure{ID: repo.ID(), Err: err})
			s.logger.Warn(op+" failed", "repository", repo.ID(), "error", err)
			continue
		}
		s.logger.Info(op+" succeeded", "repository", repo.ID())
	}

	if len(failures) > 0 {
		return &BulkError{Op: op, Failures: failures}
	}
	return nil
}

// LockAll locks every registered repository.
func (s *Service) LockAll(ctx context.Context, force bool) error {
	return s.forEach(ctx, "lock all", force, func(ctx context.Context, r Repository) error {
		return r.Lock(ctx)
	})
}

// UnlockAll unlocks every registered repository.
func (s *Service) UnlockAll(ctx context.Context, force bool) error {
	return s.forEach(ctx, "unlock all", force, func(ctx context.Context, r Repository) error {
		return r.Unlock(ctx)
	})
}

// MaintainAll prunes every registered repository and optionally rebuilds
// its index.
func (s *Service) MaintainAll(ctx context.Context, rebuildIndex, force bool) error {
	return s.forEach(ctx, "maintain all", force, func(ctx context.Context, r Repository) error {
		return s.maintainOne(ctx, r, rebuildIndex)
	})
}

// CheckHealthAll runs a health check on every registered repository.
func (s *Service) CheckHealthAll(ctx context.Context, opts HealthCheckOptions, force bool) error {
	return s.forEach(ctx, "check health all", force, func(ctx context.Context, r Repository) error {
		if _, err := r.Check(ctx, opts); err != nil {
			return fmt.Errorf("%v: %w", err, ErrHealthCheckFailed)
		}
		return nil
	})
}

// CompactAll prunes unreferenced data in every registered repository.
func (s *Service) CompactAll(ctx context.Context, force bool) error {
	return s.forEach(ctx, "compact all", force, func(ctx context.Context, r Repository) error {
		if err := r.Prune(ctx); err != nil {
			return fmt.Errorf("%v: %w", err, ErrMaintenanceFailed)
		}
		return nil
	})
}

// OptimizeAll rebuilds the index of every registered repository.
func (s *Service) OptimizeAll(ctx context.Context, force bool) error {
	return s.forEach(ctx, "optimize all", force, func(ctx context.Context, r Repository) error {
		if err := r.RebuildIndex(ctx); err != nil {
			return fmt.Errorf("%v: %w", err, ErrMaintenanceFailed)
		}
		return nil
	})
}
