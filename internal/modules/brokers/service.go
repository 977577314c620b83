package brokers

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/ledger/internal/domain"
)

// ReferenceCounter reports how many financial records reference a broker.
// Soft-deleted records count too: they remain in storage and must not be
// orphaned by a broker delete.
type ReferenceCounter interface {
	CountAnyByBroker(brokerID int64) (int64, error)
}

// Service enforces the broker consistency rules and composes the lookup
// operations the transport layer invokes.
type Service struct {
	repo       *Repository
	references []ReferenceCounter
	log        zerolog.Logger
}

// NewService creates a new broker service. The reference counters guard
// deletion: a broker referenced by any trade or cash-flow record cannot be
// removed.
func NewService(repo *Repository, references []ReferenceCounter, log zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		references: references,
		log:        log.With().Str("service", "brokers").Logger(),
	}
}

// FindAll returns every broker.
func (s *Service) FindAll() ([]Broker, error) {
	return s.repo.GetAll()
}

// FindByID returns the broker with the given id, or nil when absent.
func (s *Service) FindByID(id int64) (*Broker, error) {
	return s.repo.GetByID(id)
}

// FindByName returns the broker with the exact name, or nil when absent.
func (s *Service) FindByName(name string) (*Broker, error) {
	return s.repo.GetByName(name)
}

// FindByActive returns brokers filtered by their active flag.
func (s *Service) FindByActive(active bool) ([]Broker, error) {
	return s.repo.GetByActive(active)
}

// FindByCountry returns brokers registered in the given country.
func (s *Service) FindByCountry(country string) ([]Broker, error) {
	return s.repo.GetByCountry(country)
}

// SearchByName returns brokers whose name contains the keyword.
func (s *Service) SearchByName(keyword string) ([]Broker, error) {
	return s.repo.SearchByName(keyword)
}

// Create validates and persists a new broker. The name must be unique among
// all brokers; the pre-flight check produces the typed error, the unique
// index on brokers.name guarantees the invariant under concurrent creates.
func (s *Service) Create(broker *Broker) (*Broker, error) {
	exists, err := s.repo.ExistsByName(broker.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Errorf(domain.KindDuplicateName,
			"broker name already exists: %s", broker.Name)
	}

	created, err := s.repo.Create(broker)
	if err != nil {
		// Concurrent create that won the race past the pre-flight check
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, domain.Errorf(domain.KindDuplicateName,
				"broker name already exists: %s", broker.Name)
		}
		return nil, err
	}
	return created, nil
}

// Update replaces every mutable field of an existing broker. Renaming is
// checked against the uniqueness rule only when the name actually changes.
func (s *Service) Update(id int64, broker *Broker) (*Broker, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.Errorf(domain.KindNotFound, "broker not found, id: %d", id)
	}

	if existing.Name != broker.Name {
		taken, err := s.repo.ExistsByName(broker.Name)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.Errorf(domain.KindDuplicateName,
				"broker name already exists: %s", broker.Name)
		}
	}

	broker.ID = id
	updated, err := s.repo.Update(broker)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, domain.Errorf(domain.KindDuplicateName,
				"broker name already exists: %s", broker.Name)
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a broker permanently. Deletion is refused while any trade
// or cash-flow record, including soft-deleted ones, still references it.
func (s *Service) Delete(id int64) error {
	exists, err := s.repo.ExistsByID(id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.Errorf(domain.KindNotFound, "broker not found, id: %d", id)
	}

	for _, counter := range s.references {
		count, err := counter.CountAnyByBroker(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.Errorf(domain.KindBrokerInUse,
				"broker %d is referenced by %d record(s) and cannot be deleted", id, count)
		}
	}

	return s.repo.Delete(id)
}
