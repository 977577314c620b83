package cashflows

import (
	"github.com/rs/zerolog"

	"github.com/aristath/ledger/internal/domain"
)

// BrokerDirectory is the broker existence check cash-flow validation needs.
type BrokerDirectory interface {
	ExistsByID(id int64) (bool, error)
}

// Service enforces the cash-flow consistency rules: the broker reference
// must resolve and the amount must be strictly positive.
type Service struct {
	repo    *Repository
	brokers BrokerDirectory
	log     zerolog.Logger
}

// NewService creates a new cash-flow service.
func NewService(repo *Repository, brokers BrokerDirectory, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		brokers: brokers,
		log:     log.With().Str("service", "cashflows").Logger(),
	}
}

// FindAll returns every live record, newest first.
func (s *Service) FindAll() ([]CashFlowRecord, error) {
	return s.repo.GetAll()
}

// FindAllWithBroker returns live records enriched with broker names.
func (s *Service) FindAllWithBroker() ([]CashFlowRecordWithBroker, error) {
	return s.repo.GetAllWithBroker()
}

// FindByID returns the live record with the given id, or nil when absent or
// soft-deleted.
func (s *Service) FindByID(id int64) (*CashFlowRecord, error) {
	return s.repo.GetByID(id)
}

// FindByBroker returns live records booked against the given broker.
func (s *Service) FindByBroker(brokerID int64) ([]CashFlowRecord, error) {
	return s.repo.GetByBroker(brokerID)
}

// FindByRecordType returns live records of the given type.
func (s *Service) FindByRecordType(recordType RecordType) ([]CashFlowRecord, error) {
	return s.repo.GetByRecordType(recordType)
}

// FindByDateRange returns live records dated within [start, end] inclusive.
func (s *Service) FindByDateRange(start, end domain.Date) ([]CashFlowRecord, error) {
	return s.repo.GetByDateRange(start, end)
}

// FindByBrokerAndDateRange combines the broker and date-range filters.
func (s *Service) FindByBrokerAndDateRange(brokerID int64, start, end domain.Date) ([]CashFlowRecord, error) {
	return s.repo.GetByBrokerAndDateRange(brokerID, start, end)
}

// Create validates and persists a new cash-flow record. Rules, in order:
// the broker must exist, the record type and currency must hold supported
// values, the amount must be strictly positive. A failed rule leaves storage
// untouched.
func (s *Service) Create(record *CashFlowRecord) (*CashFlowRecord, error) {
	exists, err := s.brokers.ExistsByID(record.BrokerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.Errorf(domain.KindUnknownBroker,
			"broker not found, id: %d", record.BrokerID)
	}

	if !record.RecordType.IsValid() {
		return nil, domain.Errorf(domain.KindInvalidValue,
			"invalid record type: %s", record.RecordType)
	}

	// A blank currency falls through to the default below
	if record.Currency != "" && !record.Currency.IsValid() {
		return nil, domain.Errorf(domain.KindInvalidValue,
			"invalid currency: %s", record.Currency)
	}

	if record.Amount.Sign() <= 0 {
		return nil, domain.Errorf(domain.KindInvalidAmount,
			"amount must be greater than zero")
	}

	if record.Currency == "" {
		record.Currency = domain.DefaultCurrency
	}
	// Monetary amounts carry 2-decimal precision
	record.Amount = record.Amount.Round(2)

	return s.repo.Create(record)
}

// Delete soft-deletes a record. Only a completely unknown id fails; an
// already-deleted record is deleted again without error.
func (s *Service) Delete(id int64) error {
	exists, err := s.repo.ExistsAnyByID(id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.Errorf(domain.KindNotFound, "cash flow record not found, id: %d", id)
	}
	return s.repo.SoftDelete(id)
}
