package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Service is the concurrency-safe registry of repositories. Registration,
// unregistration and lookup are linearizable: a lookup during an in-flight
// registration either sees the fully registered repository or does not see
// it at all.
type Service struct {
	logger *slog.Logger

	mu sync.Mutex
	// repos holds fully registered repositories.
	repos map[string]Repository
	// pending reserves identifiers while registration runs outside the
	// lock, so a duplicate register cannot slip in mid-flight.
	pending map[string]struct{}
}

// NewService creates an empty registry.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		panic("service requires logger")
	}
	return &Service{
		logger:  logger,
		repos:   make(map[string]Repository),
		pending: make(map[string]struct{}),
	}
}

// Register adds a repository to the registry. The pipeline is strict:
// accessibility, duplicate check, initialize when uninitialized, validate,
// insert. The repository only becomes visible after the final step.
func (s *Service) Register(ctx context.Context, repo Repository) error {
	id := repo.ID()

	if !repo.IsAccessible(ctx) {
		return fmt.Errorf("repository %q at %s: %w", id, repo.Location(), ErrNotAccessible)
	}

	if err := s.reserve(id); err != nil {
		return err
	}
	defer s.unreserve(id)

	if repo.State() == StateUninitialized {
		if err := repo.Initialize(ctx); err != nil {
			return err
		}
	}

	ok, err := repo.Validate(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("repository %q at %s has incomplete structure: %w",
			id, repo.Location(), ErrValidationFailed)
	}

	s.mu.Lock()
	s.repos[id] = repo
	s.mu.Unlock()

	s.logger.Info("repository registered", "repository", id, "location", repo.Location())
	return nil
}

func (s *Service) reserve(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.repos[id]; ok {
		return fmt.Errorf("repository %q already registered: %w", id, ErrInvalidConfiguration)
	}
	if _, ok := s.pending[id]; ok {
		return fmt.Errorf("repository %q registration in progress: %w", id, ErrInvalidConfiguration)
	}
	s.pending[id] = struct{}{}
	return nil
}

func (s *Service) unreserve(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// Unregister removes and returns the repository. The on-disk data is left
// untouched.
func (s *Service) Unregister(ctx context.Context, id string) (Repository, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	repo, ok := s.repos[id]
	if !ok {
		return nil, fmt.Errorf("repository %q: %w", id, ErrNotFound)
	}
	delete(s.repos, id)
	s.logger.Info("repository unregistered", "repository", id)
	return repo, nil
}

// Get returns the repository registered under id.
func (s *Service) Get(id string) (Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo, ok := s.repos[id]
	if !ok {
		return nil, fmt.Errorf("repository %q: %w", id, ErrNotFound)
	}
	return repo, nil
}

// List returns a snapshot of the registered repositories ordered by
// identifier. The registry lock is held only while the snapshot is taken.
func (s *Service) List() []Repository {
	s.mu.Lock()
	repos := make([]Repository, 0, len(s.repos))
	for _, r := range s.repos {
		repos = append(repos, r)
	}
	s.mu.Unlock()

	sort.Slice(repos, func(i, j int) bool { return repos[i].ID() < repos[j].ID() })
	return repos
}

// Len returns the number of registered repositories.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.repos)
}
