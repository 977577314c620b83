package strategies

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/ledger/internal/domain"
)

// Service enforces the strategy consistency rules: name uniqueness among
// live rows, and soft deletion instead of physical removal.
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a new strategy service.
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("service", "strategies").Logger(),
	}
}

// FindAll returns every live strategy, newest first.
func (s *Service) FindAll() ([]Strategy, error) {
	return s.repo.GetAll()
}

// FindByID returns the live strategy with the given id, or nil when absent
// or soft-deleted.
func (s *Service) FindByID(id int64) (*Strategy, error) {
	return s.repo.GetByID(id)
}

// Create validates and persists a new strategy. The name must be unique
// among live strategies; a retired strategy's name may be reused. The
// partial unique index on strategies(name) backs the check under
// concurrency.
func (s *Service) Create(strategy *Strategy) (*Strategy, error) {
	exists, err := s.repo.ExistsLiveByName(strategy.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Errorf(domain.KindDuplicateName,
			"strategy name already exists: %s", strategy.Name)
	}

	created, err := s.repo.Create(strategy)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, domain.Errorf(domain.KindDuplicateName,
				"strategy name already exists: %s", strategy.Name)
		}
		return nil, err
	}
	return created, nil
}

// Update replaces the name and description of a live strategy. Soft-deleted
// strategies cannot be updated.
func (s *Service) Update(id int64, strategy *Strategy) (*Strategy, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.Errorf(domain.KindNotFound, "strategy not found, id: %d", id)
	}

	if existing.Name != strategy.Name {
		taken, err := s.repo.ExistsLiveByName(strategy.Name)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.Errorf(domain.KindDuplicateName,
				"strategy name already exists: %s", strategy.Name)
		}
	}

	strategy.ID = id
	updated, err := s.repo.Update(strategy)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, domain.Errorf(domain.KindDuplicateName,
				"strategy name already exists: %s", strategy.Name)
		}
		return nil, err
	}
	return updated, nil
}

// Delete soft-deletes a strategy. The lookup ignores the soft-delete flag,
// so deleting an already-deleted strategy succeeds (idempotent at this
// layer); only a completely unknown id fails.
func (s *Service) Delete(id int64) error {
	exists, err := s.repo.ExistsAnyByID(id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.Errorf(domain.KindNotFound, "strategy not found, id: %d", id)
	}
	return s.repo.SoftDelete(id)
}
