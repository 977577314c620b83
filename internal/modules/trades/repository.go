package trades

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/ledger/internal/domain"
)

// tradeColumns is the column list for the trade_records table.
// Order must match scanTradeInto.
const tradeColumns = `id, trade_date, broker_id, asset_type, symbol, name, underlying_symbol, trade_type, quantity, price, amount, fee, currency, strategy_id, is_deleted, created_at, updated_at`

// defaultOrder sorts trades by trade date, newest first, ties by insertion
// order.
const defaultOrder = ` ORDER BY trade_date DESC, id ASC`

// Repository handles trade persistence. The soft-delete visibility predicate
// lives here: every default query filters is_deleted = 0.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new trade repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "trades").Logger(),
	}
}

// Create inserts a new trade record, assigning its id and timestamps.
func (r *Repository) Create(trade *TradeRecord) (*TradeRecord, error) {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO trade_records
		(trade_date, broker_id, asset_type, symbol, name, underlying_symbol, trade_type,
		 quantity, price, amount, fee, currency, strategy_id, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		trade.TradeDate.String(),
		trade.BrokerID,
		string(trade.AssetType),
		trade.Symbol,
		nullString(trade.Name),
		trade.UnderlyingSymbol,
		string(trade.TradeType),
		trade.Quantity,
		trade.Price.String(),
		trade.Amount.String(),
		trade.Fee.String(),
		string(trade.Currency),
		nullInt64Ptr(trade.StrategyID),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert trade record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	trade.ID = id
	trade.Deleted = false
	trade.CreatedAt = now
	trade.UpdatedAt = now

	r.log.Info().
		Int64("id", id).
		Str("symbol", trade.Symbol).
		Str("type", string(trade.TradeType)).
		Int64("quantity", trade.Quantity).
		Msg("Trade record created")
	return trade, nil
}

// Update replaces every mutable field of a trade and refreshes the
// modification timestamp.
func (r *Repository) Update(trade *TradeRecord) (*TradeRecord, error) {
	now := time.Now().UTC()

	_, err := r.db.Exec(`
		UPDATE trade_records
		SET trade_date = ?, broker_id = ?, asset_type = ?, symbol = ?, name = ?,
		    underlying_symbol = ?, trade_type = ?, quantity = ?, price = ?,
		    amount = ?, fee = ?, currency = ?, strategy_id = ?, updated_at = ?
		WHERE id = ?`,
		trade.TradeDate.String(),
		trade.BrokerID,
		string(trade.AssetType),
		trade.Symbol,
		nullString(trade.Name),
		trade.UnderlyingSymbol,
		string(trade.TradeType),
		trade.Quantity,
		trade.Price.String(),
		trade.Amount.String(),
		trade.Fee.String(),
		string(trade.Currency),
		nullInt64Ptr(trade.StrategyID),
		now.Format(time.RFC3339),
		trade.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update trade record: %w", err)
	}

	return r.GetByID(trade.ID)
}

// SoftDelete marks a trade as deleted, preserving it for audit history.
func (r *Repository) SoftDelete(id int64) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(
		`UPDATE trade_records SET is_deleted = 1, updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete trade record: %w", err)
	}
	r.log.Info().Int64("id", id).Msg("Trade record soft-deleted")
	return nil
}

// GetByID retrieves a live trade by id, or nil when absent or deleted.
func (r *Repository) GetByID(id int64) (*TradeRecord, error) {
	row := r.db.QueryRow(
		`SELECT `+tradeColumns+` FROM trade_records WHERE id = ? AND is_deleted = 0`, id)
	trade, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade record by id: %w", err)
	}
	return trade, nil
}

// GetAll returns every live trade, newest first.
func (r *Repository) GetAll() ([]TradeRecord, error) {
	return r.queryTrades(
		`SELECT `+tradeColumns+` FROM trade_records WHERE is_deleted = 0`+defaultOrder, nil)
}

// GetByBroker returns live trades booked against the given broker.
func (r *Repository) GetByBroker(brokerID int64) ([]TradeRecord, error) {
	return r.queryTrades(
		`SELECT `+tradeColumns+` FROM trade_records
		 WHERE broker_id = ? AND is_deleted = 0`+defaultOrder,
		[]interface{}{brokerID})
}

// GetByAssetType returns live trades of the given asset type.
func (r *Repository) GetByAssetType(assetType AssetType) ([]TradeRecord, error) {
	return r.queryTrades(
		`SELECT `+tradeColumns+` FROM trade_records
		 WHERE asset_type = ? AND is_deleted = 0`+defaultOrder,
		[]interface{}{string(assetType)})
}

// GetByStrategy returns live trades tagged with the given strategy.
func (r *Repository) GetByStrategy(strategyID int64) ([]TradeRecord, error) {
	return r.queryTrades(
		`SELECT `+tradeColumns+` FROM trade_records
		 WHERE strategy_id = ? AND is_deleted = 0`+defaultOrder,
		[]interface{}{strategyID})
}

// GetByUnderlying returns live trades whose underlying symbol matches
// exactly.
func (r *Repository) GetByUnderlying(symbol string) ([]TradeRecord, error) {
	return r.queryTrades(
		`SELECT `+tradeColumns+` FROM trade_records
		 WHERE underlying_symbol = ? AND is_deleted = 0`+defaultOrder,
		[]interface{}{symbol})
}

// SearchBySymbol returns live trades whose symbol contains the keyword,
// case-insensitively.
func (r *Repository) SearchBySymbol(keyword string) ([]TradeRecord, error) {
	return r.queryTrades(
		`SELECT `+tradeColumns+` FROM trade_records
		 WHERE instr(lower(symbol), lower(?)) > 0 AND is_deleted = 0`+defaultOrder,
		[]interface{}{keyword})
}

// GetByDateRange returns live trades dated within [start, end], inclusive on
// both ends.
func (r *Repository) GetByDateRange(start, end domain.Date) ([]TradeRecord, error) {
	return r.queryTrades(
		`SELECT `+tradeColumns+` FROM trade_records
		 WHERE trade_date >= ? AND trade_date <= ? AND is_deleted = 0`+defaultOrder,
		[]interface{}{start.String(), end.String()})
}

// GetAllWithRefs returns live trades joined with broker and strategy name
// snapshots. The join runs only when the caller asks for enriched rows.
func (r *Repository) GetAllWithRefs() ([]TradeRecordWithRefs, error) {
	rows, err := r.db.Query(`
		SELECT t.id, t.trade_date, t.broker_id, t.asset_type, t.symbol, t.name,
		       t.underlying_symbol, t.trade_type, t.quantity, t.price, t.amount,
		       t.fee, t.currency, t.strategy_id, t.is_deleted, t.created_at, t.updated_at,
		       b.name, s.name
		FROM trade_records t
		JOIN brokers b ON b.id = t.broker_id
		LEFT JOIN strategies s ON s.id = t.strategy_id
		WHERE t.is_deleted = 0
		ORDER BY t.trade_date DESC, t.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade records with refs: %w", err)
	}
	defer rows.Close()

	records := []TradeRecordWithRefs{}
	for rows.Next() {
		var rec TradeRecordWithRefs
		var strategyName sql.NullString
		if err := scanTradeInto(rows, &rec.TradeRecord, &rec.BrokerName, &strategyName); err != nil {
			return nil, fmt.Errorf("failed to scan enriched trade record: %w", err)
		}
		rec.StrategyName = strategyName.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trade records: %w", err)
	}
	return records, nil
}

// ExistsAnyByID checks whether any trade row has the given id, deleted or
// not. The delete path uses it so a second soft delete still succeeds.
func (r *Repository) ExistsAnyByID(id int64) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM trade_records WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check trade record existence: %w", err)
	}
	return true, nil
}

// CountAnyByBroker counts all trades referencing a broker, soft-deleted rows
// included. Used by the broker delete guard.
func (r *Repository) CountAnyByBroker(brokerID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM trade_records WHERE broker_id = ?`, brokerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count trade records by broker: %w", err)
	}
	return count, nil
}

func (r *Repository) queryTrades(query string, args []interface{}) ([]TradeRecord, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade records: %w", err)
	}
	defer rows.Close()

	trades := []TradeRecord{}
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade record: %w", err)
		}
		trades = append(trades, *trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trade records: %w", err)
	}
	return trades, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner) (*TradeRecord, error) {
	var trade TradeRecord
	if err := scanTradeInto(row, &trade); err != nil {
		return nil, err
	}
	return &trade, nil
}

// scanTradeInto scans the tradeColumns into trade, followed by any extra
// destinations appended by join queries.
func scanTradeInto(row rowScanner, trade *TradeRecord, extra ...interface{}) error {
	var tradeDate, assetType, tradeType, price, amount, fee, currency string
	var name sql.NullString
	var strategyID sql.NullInt64
	var deleted int
	var createdAt, updatedAt string

	dest := []interface{}{
		&trade.ID, &tradeDate, &trade.BrokerID, &assetType, &trade.Symbol, &name,
		&trade.UnderlyingSymbol, &tradeType, &trade.Quantity, &price, &amount,
		&fee, &currency, &strategyID, &deleted, &createdAt, &updatedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return err
	}

	parsedDate, err := domain.ParseDate(tradeDate)
	if err != nil {
		return fmt.Errorf("corrupt trade_date: %w", err)
	}
	parsedPrice, err := decimal.NewFromString(price)
	if err != nil {
		return fmt.Errorf("corrupt price: %w", err)
	}
	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("corrupt amount: %w", err)
	}
	parsedFee, err := decimal.NewFromString(fee)
	if err != nil {
		return fmt.Errorf("corrupt fee: %w", err)
	}

	trade.TradeDate = parsedDate
	trade.AssetType = AssetType(assetType)
	trade.Name = name.String
	trade.TradeType = TradeType(tradeType)
	trade.Price = parsedPrice
	trade.Amount = parsedAmount
	trade.Fee = parsedFee
	trade.Currency = domain.Currency(currency)
	if strategyID.Valid {
		trade.StrategyID = &strategyID.Int64
	} else {
		trade.StrategyID = nil
	}
	trade.Deleted = deleted != 0
	trade.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	trade.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt64Ptr(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
