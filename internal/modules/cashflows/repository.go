package cashflows

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/ledger/internal/domain"
)

// cashFlowColumns is the column list for the cash_flow_records table.
// Order must match scanRecord.
const cashFlowColumns = `id, record_date, broker_id, record_type, amount, currency, bank, description, created_by, is_deleted, created_at, updated_at`

// defaultOrder sorts financial records by their domain date, newest first,
// with insertion order breaking ties.
const defaultOrder = ` ORDER BY record_date DESC, id ASC`

// Repository handles cash-flow persistence. Every default query carries the
// is_deleted = 0 predicate; callers never re-apply it.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new cash-flow repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "cashflows").Logger(),
	}
}

// Create inserts a new cash-flow record, assigning its id and timestamps.
func (r *Repository) Create(record *CashFlowRecord) (*CashFlowRecord, error) {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO cash_flow_records
		(record_date, broker_id, record_type, amount, currency, bank, description, created_by, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		record.RecordDate.String(),
		record.BrokerID,
		string(record.RecordType),
		record.Amount.String(),
		string(record.Currency),
		nullString(record.Bank),
		nullString(record.Description),
		nullString(record.CreatedBy),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert cash flow record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	record.ID = id
	record.Deleted = false
	record.CreatedAt = now
	record.UpdatedAt = now

	r.log.Info().
		Int64("id", id).
		Str("type", string(record.RecordType)).
		Str("amount", record.Amount.String()).
		Msg("Cash flow record created")
	return record, nil
}

// SoftDelete marks a record as deleted, preserving it for audit history.
func (r *Repository) SoftDelete(id int64) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(
		`UPDATE cash_flow_records SET is_deleted = 1, updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete cash flow record: %w", err)
	}
	r.log.Info().Int64("id", id).Msg("Cash flow record soft-deleted")
	return nil
}

// GetByID retrieves a live record by id, or nil when absent or deleted.
func (r *Repository) GetByID(id int64) (*CashFlowRecord, error) {
	row := r.db.QueryRow(
		`SELECT `+cashFlowColumns+` FROM cash_flow_records WHERE id = ? AND is_deleted = 0`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cash flow record by id: %w", err)
	}
	return record, nil
}

// GetAll returns every live record, newest first.
func (r *Repository) GetAll() ([]CashFlowRecord, error) {
	return r.queryRecords(
		`SELECT `+cashFlowColumns+` FROM cash_flow_records WHERE is_deleted = 0`+defaultOrder, nil)
}

// GetByBroker returns live records booked against the given broker.
func (r *Repository) GetByBroker(brokerID int64) ([]CashFlowRecord, error) {
	return r.queryRecords(
		`SELECT `+cashFlowColumns+` FROM cash_flow_records
		 WHERE broker_id = ? AND is_deleted = 0`+defaultOrder,
		[]interface{}{brokerID})
}

// GetByRecordType returns live records of the given type.
func (r *Repository) GetByRecordType(recordType RecordType) ([]CashFlowRecord, error) {
	return r.queryRecords(
		`SELECT `+cashFlowColumns+` FROM cash_flow_records
		 WHERE record_type = ? AND is_deleted = 0`+defaultOrder,
		[]interface{}{string(recordType)})
}

// GetByDateRange returns live records dated within [start, end], inclusive
// on both ends.
func (r *Repository) GetByDateRange(start, end domain.Date) ([]CashFlowRecord, error) {
	return r.queryRecords(
		`SELECT `+cashFlowColumns+` FROM cash_flow_records
		 WHERE record_date >= ? AND record_date <= ? AND is_deleted = 0`+defaultOrder,
		[]interface{}{start.String(), end.String()})
}

// GetByBrokerAndDateRange combines the broker and date-range filters.
func (r *Repository) GetByBrokerAndDateRange(brokerID int64, start, end domain.Date) ([]CashFlowRecord, error) {
	return r.queryRecords(
		`SELECT `+cashFlowColumns+` FROM cash_flow_records
		 WHERE broker_id = ? AND record_date >= ? AND record_date <= ? AND is_deleted = 0`+defaultOrder,
		[]interface{}{brokerID, start.String(), end.String()})
}

// GetAllWithBroker returns live records joined with their broker name
// snapshot. The join runs only when the caller asks for enriched rows.
func (r *Repository) GetAllWithBroker() ([]CashFlowRecordWithBroker, error) {
	rows, err := r.db.Query(`
		SELECT c.id, c.record_date, c.broker_id, c.record_type, c.amount, c.currency,
		       c.bank, c.description, c.created_by, c.is_deleted, c.created_at, c.updated_at,
		       b.name
		FROM cash_flow_records c
		JOIN brokers b ON b.id = c.broker_id
		WHERE c.is_deleted = 0
		ORDER BY c.record_date DESC, c.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash flow records with broker: %w", err)
	}
	defer rows.Close()

	records := []CashFlowRecordWithBroker{}
	for rows.Next() {
		var rec CashFlowRecordWithBroker
		if err := scanRecordInto(rows, &rec.CashFlowRecord, &rec.BrokerName); err != nil {
			return nil, fmt.Errorf("failed to scan enriched cash flow record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cash flow records: %w", err)
	}
	return records, nil
}

// ExistsAnyByID checks whether any record row has the given id, deleted or
// not. The delete path uses it so a second soft delete still succeeds.
func (r *Repository) ExistsAnyByID(id int64) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM cash_flow_records WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check cash flow record existence: %w", err)
	}
	return true, nil
}

// CountAnyByBroker counts all records referencing a broker, soft-deleted
// rows included. Used by the broker delete guard.
func (r *Repository) CountAnyByBroker(brokerID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM cash_flow_records WHERE broker_id = ?`, brokerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cash flow records by broker: %w", err)
	}
	return count, nil
}

func (r *Repository) queryRecords(query string, args []interface{}) ([]CashFlowRecord, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash flow records: %w", err)
	}
	defer rows.Close()

	records := []CashFlowRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cash flow record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cash flow records: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*CashFlowRecord, error) {
	var rec CashFlowRecord
	if err := scanRecordInto(row, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// scanRecordInto scans the cashFlowColumns into rec, followed by any extra
// destinations appended by join queries.
func scanRecordInto(row rowScanner, rec *CashFlowRecord, extra ...interface{}) error {
	var recordDate, amount, currency, recordType string
	var bank, description, createdBy sql.NullString
	var deleted int
	var createdAt, updatedAt string

	dest := []interface{}{
		&rec.ID, &recordDate, &rec.BrokerID, &recordType, &amount, &currency,
		&bank, &description, &createdBy, &deleted, &createdAt, &updatedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return err
	}

	parsedDate, err := domain.ParseDate(recordDate)
	if err != nil {
		return fmt.Errorf("corrupt record_date: %w", err)
	}
	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("corrupt amount: %w", err)
	}

	rec.RecordDate = parsedDate
	rec.RecordType = RecordType(recordType)
	rec.Amount = parsedAmount
	rec.Currency = domain.Currency(currency)
	rec.Bank = bank.String
	rec.Description = description.String
	rec.CreatedBy = createdBy.String
	rec.Deleted = deleted != 0
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
