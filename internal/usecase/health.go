package usecase

import (
	"context"
	"fmt"
)

// CheckHealth resolves the repository and runs a check with the given
// options. Any underlying failure comes back as ErrHealthCheckFailed
// carrying the original reason.
func (s *Service) CheckHealth(ctx context.Context, id string, opts HealthCheckOptions) (RepositoryStatistics, error) {
	repo, err := s.Get(id)
	if err != nil {
		return RepositoryStatistics{}, err
	}

	st, err := repo.Check(ctx, opts)
	if err != nil {
		return RepositoryStatistics{}, fmt.Errorf("repository %q: %v: %w", id, err, ErrHealthCheckFailed)
	}
	return st, nil
}

// RepairRepository attempts to restore the standard structure of the
// repository and reports whether any repair action was taken.
func (s *Service) RepairRepository(ctx context.Context, id string) (bool, error) {
	repo, err := s.Get(id)
	if err != nil {
		return false, err
	}

	repaired, err := repo.Repair(ctx)
	if err != nil {
		return false, fmt.Errorf("repository %q: %v: %w", id, err, ErrMaintenanceFailed)
	}
	return repaired, nil
}
