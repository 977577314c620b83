// Package trades manages trade records: stock, ETF and option transactions
// booked against a broker and optionally tagged with a strategy.
package trades

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aristath/ledger/internal/domain"
)

// AssetType classifies the traded instrument.
type AssetType string

const (
	AssetTypeStock      AssetType = "STOCK"
	AssetTypeETF        AssetType = "ETF"
	AssetTypeOptionCall AssetType = "OPTION_CALL"
	AssetTypeOptionPut  AssetType = "OPTION_PUT"
)

// IsValid checks if the asset type is one of the supported values.
func (at AssetType) IsValid() bool {
	switch at {
	case AssetTypeStock, AssetTypeETF, AssetTypeOptionCall, AssetTypeOptionPut:
		return true
	}
	return false
}

// IsOption returns true for derivative asset types.
func (at AssetType) IsOption() bool {
	return at == AssetTypeOptionCall || at == AssetTypeOptionPut
}

// AssetTypeFromString creates an AssetType from a string (case-insensitive).
func AssetTypeFromString(value string) (AssetType, error) {
	at := AssetType(strings.ToUpper(value))
	if !at.IsValid() {
		return "", fmt.Errorf("invalid asset type: %s", value)
	}
	return at, nil
}

// TradeType is the kind of transaction recorded.
type TradeType string

const (
	TradeTypeBuy           TradeType = "BUY"
	TradeTypeSell          TradeType = "SELL"
	TradeTypeOptionExpire  TradeType = "OPTION_EXPIRE"
	TradeTypeExerciseBuy   TradeType = "EXERCISE_BUY"
	TradeTypeExerciseSell  TradeType = "EXERCISE_SELL"
	TradeTypeEarlyExercise TradeType = "EARLY_EXERCISE"
)

// IsValid checks if the trade type is one of the supported values.
func (tt TradeType) IsValid() bool {
	switch tt {
	case TradeTypeBuy, TradeTypeSell, TradeTypeOptionExpire,
		TradeTypeExerciseBuy, TradeTypeExerciseSell, TradeTypeEarlyExercise:
		return true
	}
	return false
}

// TradeTypeFromString creates a TradeType from a string (case-insensitive).
func TradeTypeFromString(value string) (TradeType, error) {
	tt := TradeType(strings.ToUpper(value))
	if !tt.IsValid() {
		return "", fmt.Errorf("invalid trade type: %s", value)
	}
	return tt, nil
}

// TradeRecord is a single executed transaction. The amount's sign and
// magnitude are caller-supplied; the ledger stores what the broker statement
// says rather than deriving it. Trade records are soft-deleted only.
type TradeRecord struct {
	ID        int64       `json:"id"`
	TradeDate domain.Date `json:"trade_date"`
	BrokerID  int64       `json:"broker_id"`
	AssetType AssetType   `json:"asset_type"`
	Symbol    string      `json:"symbol"`
	Name      string      `json:"name,omitempty"`
	// UnderlyingSymbol names the equity an option derives from; for
	// non-derivatives it equals Symbol.
	UnderlyingSymbol string          `json:"underlying_symbol"`
	TradeType        TradeType       `json:"trade_type"`
	Quantity         int64           `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
	Amount           decimal.Decimal `json:"amount"`
	Fee              decimal.Decimal `json:"fee"`
	Currency         domain.Currency `json:"currency"`
	StrategyID       *int64          `json:"strategy_id,omitempty"`
	Deleted          bool            `json:"-"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TradeRecordWithRefs is a trade record enriched with broker and strategy
// name snapshots from an explicit join.
type TradeRecordWithRefs struct {
	TradeRecord
	BrokerName   string `json:"broker_name"`
	StrategyName string `json:"strategy_name,omitempty"`
}
