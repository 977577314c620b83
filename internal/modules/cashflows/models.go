// Package cashflows manages deposit and withdrawal records: the money moved
// in and out of brokerage accounts.
package cashflows

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aristath/ledger/internal/domain"
)

// RecordType is the direction of a cash flow.
type RecordType string

const (
	RecordTypeDeposit    RecordType = "DEPOSIT"
	RecordTypeWithdrawal RecordType = "WITHDRAWAL"
)

// IsValid checks if the record type is one of the supported values.
func (rt RecordType) IsValid() bool {
	return rt == RecordTypeDeposit || rt == RecordTypeWithdrawal
}

// RecordTypeFromString creates a RecordType from a string (case-insensitive).
func RecordTypeFromString(value string) (RecordType, error) {
	rt := RecordType(strings.ToUpper(value))
	if !rt.IsValid() {
		return "", fmt.Errorf("invalid record type: %s", value)
	}
	return rt, nil
}

// CashFlowRecord is a single deposit or withdrawal. Financial records are
// never physically deleted; the soft-delete flag hides them from default
// queries while preserving audit history.
type CashFlowRecord struct {
	ID          int64           `json:"id"`
	RecordDate  domain.Date     `json:"record_date"`
	BrokerID    int64           `json:"broker_id"`
	RecordType  RecordType      `json:"record_type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    domain.Currency `json:"currency"`
	Bank        string          `json:"bank,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
	Deleted     bool            `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CashFlowRecordWithBroker is a cash-flow record enriched with a broker name
// snapshot. Produced only by the explicit-join queries; the base record stays
// lean.
type CashFlowRecordWithBroker struct {
	CashFlowRecord
	BrokerName string `json:"broker_name"`
}
