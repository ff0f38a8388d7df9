package usecase

import (
	"context"
	"fmt"
)

// GetStats refreshes and returns statistics for one repository.
func (s *Service) GetStats(ctx context.Context, id string) (RepositoryStatistics, error) {
	repo, err := s.Get(id)
	if err != nil {
		return RepositoryStatistics{}, err
	}
	return repo.GetStats(ctx)
}

// GetAllStats refreshes statistics for every registered repository. Reads
// are best effort: statistics already gathered are returned even when some
// repositories fail. Without force the first failure ends the run; with
// force all failures are collected into one BulkError. The returned map
// holds whatever succeeded either way.
func (s *Service) GetAllStats(ctx context.Context, force bool) (map[string]RepositoryStatistics, error) {
	results := make(map[string]RepositoryStatistics)
	var failures []BulkFailure

	for _, repo := range s.List() {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("get all stats: %w", ErrInterrupted)
		}
		st, err := repo.GetStats(ctx)
		if err != nil {
			if !force {
				return results, fmt.Errorf("get all stats: %s: %w", repo.ID(), err)
			}
			failures = append(failures, BulkFailure{ID: repo.ID(), Err: err})
			s.logger.Warn("stats refresh failed", "repository", repo.ID(), "error", err)
			continue
		}
		results[repo.ID()] = st
	}

	if len(failures) > 0 {
		return results, &BulkError{Op: "get all stats", Failures: failures}
	}
	return results, nil
}
