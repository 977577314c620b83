package trades

import (
	"github.com/rs/zerolog"

	"github.com/aristath/ledger/internal/domain"
)

// BrokerDirectory is the broker existence check trade validation needs.
type BrokerDirectory interface {
	ExistsByID(id int64) (bool, error)
}

// StrategyDirectory resolves strategy references. Existence is checked
// against all rows, deleted or not: retiring a strategy must not invalidate
// the records tagged with it.
type StrategyDirectory interface {
	ExistsAnyByID(id int64) (bool, error)
}

// Service enforces the trade consistency rules: resolvable broker and
// strategy references, a strictly positive quantity, and a non-negative
// price. Create and Update validate identically.
type Service struct {
	repo       *Repository
	brokers    BrokerDirectory
	strategies StrategyDirectory
	log        zerolog.Logger
}

// NewService creates a new trade service.
func NewService(repo *Repository, brokers BrokerDirectory, strategies StrategyDirectory, log zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		brokers:    brokers,
		strategies: strategies,
		log:        log.With().Str("service", "trades").Logger(),
	}
}

// FindAll returns every live trade, newest first.
func (s *Service) FindAll() ([]TradeRecord, error) {
	return s.repo.GetAll()
}

// FindAllWithRefs returns live trades enriched with broker and strategy
// names.
func (s *Service) FindAllWithRefs() ([]TradeRecordWithRefs, error) {
	return s.repo.GetAllWithRefs()
}

// FindByID returns the live trade with the given id, or nil when absent or
// soft-deleted.
func (s *Service) FindByID(id int64) (*TradeRecord, error) {
	return s.repo.GetByID(id)
}

// FindByBroker returns live trades booked against the given broker.
func (s *Service) FindByBroker(brokerID int64) ([]TradeRecord, error) {
	return s.repo.GetByBroker(brokerID)
}

// FindByAssetType returns live trades of the given asset type.
func (s *Service) FindByAssetType(assetType AssetType) ([]TradeRecord, error) {
	return s.repo.GetByAssetType(assetType)
}

// FindByStrategy returns live trades tagged with the given strategy.
func (s *Service) FindByStrategy(strategyID int64) ([]TradeRecord, error) {
	return s.repo.GetByStrategy(strategyID)
}

// FindByUnderlying returns live trades on the given underlying symbol.
func (s *Service) FindByUnderlying(symbol string) ([]TradeRecord, error) {
	return s.repo.GetByUnderlying(symbol)
}

// SearchBySymbol returns live trades whose symbol contains the keyword.
func (s *Service) SearchBySymbol(keyword string) ([]TradeRecord, error) {
	return s.repo.SearchBySymbol(keyword)
}

// FindByDateRange returns live trades dated within [start, end] inclusive.
func (s *Service) FindByDateRange(start, end domain.Date) ([]TradeRecord, error) {
	return s.repo.GetByDateRange(start, end)
}

// Create validates and persists a new trade. Rules, in order: the broker
// must exist, the strategy (when given) must exist, asset type, trade type
// and currency must hold supported values, quantity must be strictly
// positive, price must be non-negative. A zero price is legal - it covers
// expirations and corporate actions. A failed rule leaves storage untouched.
func (s *Service) Create(trade *TradeRecord) (*TradeRecord, error) {
	if err := s.validate(trade); err != nil {
		return nil, err
	}
	s.normalize(trade)
	return s.repo.Create(trade)
}

// Update replaces every mutable field of a live trade. The target must
// exist and not be soft-deleted; the replacement passes the same rule set
// as Create.
func (s *Service) Update(id int64, trade *TradeRecord) (*TradeRecord, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.Errorf(domain.KindNotFound, "trade record not found, id: %d", id)
	}

	if err := s.validate(trade); err != nil {
		return nil, err
	}
	s.normalize(trade)

	trade.ID = id
	return s.repo.Update(trade)
}

// Delete soft-deletes a trade. Only a completely unknown id fails; an
// already-deleted trade is deleted again without error.
func (s *Service) Delete(id int64) error {
	exists, err := s.repo.ExistsAnyByID(id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.Errorf(domain.KindNotFound, "trade record not found, id: %d", id)
	}
	return s.repo.SoftDelete(id)
}

// validate runs the rule set shared by Create and Update. First violation
// wins.
func (s *Service) validate(trade *TradeRecord) error {
	exists, err := s.brokers.ExistsByID(trade.BrokerID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.Errorf(domain.KindUnknownBroker,
			"broker not found, id: %d", trade.BrokerID)
	}

	if trade.StrategyID != nil {
		exists, err := s.strategies.ExistsAnyByID(*trade.StrategyID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.Errorf(domain.KindUnknownStrategy,
				"strategy not found, id: %d", *trade.StrategyID)
		}
	}

	if !trade.AssetType.IsValid() {
		return domain.Errorf(domain.KindInvalidValue,
			"invalid asset type: %s", trade.AssetType)
	}

	if !trade.TradeType.IsValid() {
		return domain.Errorf(domain.KindInvalidValue,
			"invalid trade type: %s", trade.TradeType)
	}

	// A blank currency is filled with the default during normalization
	if trade.Currency != "" && !trade.Currency.IsValid() {
		return domain.Errorf(domain.KindInvalidValue,
			"invalid currency: %s", trade.Currency)
	}

	if trade.Quantity <= 0 {
		return domain.Errorf(domain.KindInvalidQuantity,
			"quantity must be greater than zero")
	}

	if trade.Price.Sign() < 0 {
		return domain.Errorf(domain.KindInvalidPrice,
			"price cannot be negative")
	}

	return nil
}

// normalize fills defaults and pins monetary precision: price 4 decimals,
// amount and fee 2 decimals.
func (s *Service) normalize(trade *TradeRecord) {
	if trade.Currency == "" {
		trade.Currency = domain.DefaultCurrency
	}
	if trade.UnderlyingSymbol == "" && !trade.AssetType.IsOption() {
		trade.UnderlyingSymbol = trade.Symbol
	}
	trade.Price = trade.Price.Round(4)
	trade.Amount = trade.Amount.Round(2)
	trade.Fee = trade.Fee.Round(2)
}
