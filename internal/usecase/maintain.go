package usecase

import (
	"context"
	"fmt"
)

// Maintain prunes the repository and, when requested, rebuilds its index.
// Any failure comes back as ErrMaintenanceFailed carrying the original
// reason; partial work (pruned but index not rebuilt) still surfaces as a
// failure.
func (s *Service) Maintain(ctx context.Context, id string, rebuildIndex bool) error {
	repo, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.maintainOne(ctx, repo, rebuildIndex)
}

func (s *Service) maintainOne(ctx context.Context, repo Repository, rebuildIndex bool) error {
	if err := repo.Prune(ctx); err != nil {
		return fmt.Errorf("prune %q: %v: %w", repo.ID(), err, ErrMaintenanceFailed)
	}
	if !rebuildIndex {
		return nil
	}
	if err := repo.RebuildIndex(ctx); err != nil {
		return fmt.Errorf("rebuild index of %q: %v: %w", repo.ID(), err, ErrMaintenanceFailed)
	}
	return nil
}

// Compact removes unreferenced data objects from one repository.
func (s *Service) Compact(ctx context.Context, id string) error {
	repo, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := repo.Prune(ctx); err != nil {
		return fmt.Errorf("compact %q: %v: %w", id, err, ErrMaintenanceFailed)
	}
	return nil
}

// Optimize rebuilds the on-disk index of one repository.
func (s *Service) Optimize(ctx context.Context, id string) error {
	repo, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := repo.RebuildIndex(ctx); err != nil {
		return fmt.Errorf("optimize %q: %v: %w", id, err, ErrMaintenanceFailed)
	}
	return nil
}
