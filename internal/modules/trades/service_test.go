package trades

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/ledger/internal/domain"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE brokers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			country TEXT NOT NULL,
			description TEXT,
			email TEXT,
			phone TEXT,
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE TABLE strategies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT,
			is_deleted INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE TABLE trade_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			trade_date TEXT NOT NULL,
			broker_id INTEGER NOT NULL REFERENCES brokers(id),
			asset_type TEXT NOT NULL,
			symbol TEXT NOT NULL,
			name TEXT,
			underlying_symbol TEXT NOT NULL,
			trade_type TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			price TEXT NOT NULL,
			amount TEXT NOT NULL,
			fee TEXT NOT NULL,
			currency TEXT NOT NULL,
			strategy_id INTEGER REFERENCES strategies(id),
			is_deleted INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO brokers (id, name, country, active, created_at, updated_at)
		VALUES (1, 'IBKR', 'US', 1, '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z');
		INSERT INTO strategies (id, name, is_deleted, created_at, updated_at)
		VALUES (10, 'wheel', 0, '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z'),
		       (11, 'retired', 1, '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)

	return db
}

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

type memberBrokers struct {
	ids map[int64]bool
}

func (m memberBrokers) ExistsByID(id int64) (bool, error) {
	return m.ids[id], nil
}

type memberStrategies struct {
	ids map[int64]bool
}

func (m memberStrategies) ExistsAnyByID(id int64) (bool, error) {
	return m.ids[id], nil
}

func newTestService(t *testing.T) (*Service, *Repository) {
	repo := NewRepository(setupTestDB(t), testLogger())
	svc := NewService(repo,
		memberBrokers{ids: map[int64]bool{1: true}},
		// Strategy 11 is soft-deleted but still resolvable as a reference
		memberStrategies{ids: map[int64]bool{10: true, 11: true}},
		testLogger())
	return svc, repo
}

func mustDate(t *testing.T, s string) domain.Date {
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func buyTrade(t *testing.T, date, symbol string) *TradeRecord {
	return &TradeRecord{
		TradeDate: mustDate(t, date),
		BrokerID:  1,
		AssetType: AssetTypeStock,
		Symbol:    symbol,
		TradeType: TradeTypeBuy,
		Quantity:  100,
		Price:     decimal.RequireFromString("10.50"),
		Amount:    decimal.RequireFromString("1050"),
		Fee:       decimal.RequireFromString("1.99"),
	}
}

func TestCreate_RoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	strategyID := int64(10)

	created, err := svc.Create(&TradeRecord{
		TradeDate:        mustDate(t, "2024-05-17"),
		BrokerID:         1,
		AssetType:        AssetTypeOptionPut,
		Symbol:           "AAPL240621P00180000",
		Name:             "AAPL Jun 21 '24 $180 Put",
		UnderlyingSymbol: "AAPL",
		TradeType:        TradeTypeSell,
		Quantity:         2,
		Price:            decimal.RequireFromString("3.45"),
		Amount:           decimal.RequireFromString("690"),
		Fee:              decimal.RequireFromString("1.30"),
		Currency:         domain.CurrencyUSD,
		StrategyID:       &strategyID,
	})
	require.NoError(t, err)

	got, err := svc.FindByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "2024-05-17", got.TradeDate.String())
	assert.Equal(t, AssetTypeOptionPut, got.AssetType)
	assert.Equal(t, "AAPL240621P00180000", got.Symbol)
	assert.Equal(t, "AAPL", got.UnderlyingSymbol)
	assert.Equal(t, TradeTypeSell, got.TradeType)
	assert.Equal(t, int64(2), got.Quantity)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("3.45")))
	require.NotNil(t, got.StrategyID)
	assert.Equal(t, strategyID, *got.StrategyID)
}

func TestCreate_UnknownBroker(t *testing.T) {
	svc, _ := newTestService(t)

	trade := buyTrade(t, "2024-05-17", "AAPL")
	trade.BrokerID = 99

	_, err := svc.Create(trade)
	require.Error(t, err)
	assert.Equal(t, domain.KindUnknownBroker, domain.KindOf(err))
}

func TestCreate_UnknownStrategy(t *testing.T) {
	svc, _ := newTestService(t)

	missing := int64(404)
	trade := buyTrade(t, "2024-05-17", "AAPL")
	trade.StrategyID = &missing

	_, err := svc.Create(trade)
	require.Error(t, err)
	assert.Equal(t, domain.KindUnknownStrategy, domain.KindOf(err))
}

func TestCreate_RetiredStrategyStillResolves(t *testing.T) {
	svc, _ := newTestService(t)

	retired := int64(11)
	trade := buyTrade(t, "2024-05-17", "AAPL")
	trade.StrategyID = &retired

	_, err := svc.Create(trade)
	require.NoError(t, err)
}

func TestCreate_InvalidQuantity(t *testing.T) {
	svc, _ := newTestService(t)

	for _, quantity := range []int64{0, -10} {
		trade := buyTrade(t, "2024-05-17", "AAPL")
		trade.Quantity = quantity

		_, err := svc.Create(trade)
		require.Error(t, err)
		assert.Equal(t, domain.KindInvalidQuantity, domain.KindOf(err))
	}
}

func TestCreate_RejectsUnsupportedEnumValues(t *testing.T) {
	svc, repo := newTestService(t)

	trade := buyTrade(t, "2024-05-17", "AAPL")
	trade.AssetType = AssetType("BANANA")
	_, err := svc.Create(trade)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidValue, domain.KindOf(err))

	trade = buyTrade(t, "2024-05-17", "AAPL")
	trade.TradeType = TradeType("NOPE")
	_, err = svc.Create(trade)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidValue, domain.KindOf(err))

	trade = buyTrade(t, "2024-05-17", "AAPL")
	trade.Currency = domain.Currency("XYZ")
	_, err = svc.Create(trade)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidValue, domain.KindOf(err))

	// None of the rejected payloads reached storage
	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdate_RejectsUnsupportedEnumValues(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(buyTrade(t, "2024-05-17", "AAPL"))
	require.NoError(t, err)

	bad := buyTrade(t, "2024-05-18", "AAPL")
	bad.AssetType = AssetType("BANANA")
	_, err = svc.Update(created.ID, bad)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidValue, domain.KindOf(err))

	got, err := svc.FindByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, AssetTypeStock, got.AssetType)
}

func TestCreate_NegativePriceRejected_ZeroAllowed(t *testing.T) {
	svc, _ := newTestService(t)

	trade := buyTrade(t, "2024-05-17", "AAPL")
	trade.Price = decimal.RequireFromString("-0.01")
	_, err := svc.Create(trade)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidPrice, domain.KindOf(err))

	// Zero price covers expirations
	expire := buyTrade(t, "2024-05-17", "AAPL240621P00180000")
	expire.AssetType = AssetTypeOptionPut
	expire.UnderlyingSymbol = "AAPL"
	expire.TradeType = TradeTypeOptionExpire
	expire.Price = decimal.Zero
	expire.Amount = decimal.Zero
	expire.Fee = decimal.Zero
	_, err = svc.Create(expire)
	require.NoError(t, err)
}

func TestCreate_NormalizesDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	trade := buyTrade(t, "2024-05-17", "600519")
	trade.UnderlyingSymbol = ""
	trade.Price = decimal.RequireFromString("1689.12345")

	created, err := svc.Create(trade)
	require.NoError(t, err)

	assert.Equal(t, domain.CurrencyCNY, created.Currency)
	assert.Equal(t, "600519", created.UnderlyingSymbol)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("1689.1235")))
}

func TestCreate_OptionKeepsBlankUnderlying(t *testing.T) {
	svc, _ := newTestService(t)

	trade := buyTrade(t, "2024-05-17", "AAPL240621C00200000")
	trade.AssetType = AssetTypeOptionCall
	trade.UnderlyingSymbol = ""

	created, err := svc.Create(trade)
	require.NoError(t, err)
	assert.Empty(t, created.UnderlyingSymbol)
}

func TestUpdate_ValidatesLikeCreate(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(buyTrade(t, "2024-05-17", "AAPL"))
	require.NoError(t, err)

	bad := buyTrade(t, "2024-05-18", "AAPL")
	bad.Quantity = 0
	_, err = svc.Update(created.ID, bad)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidQuantity, domain.KindOf(err))

	bad = buyTrade(t, "2024-05-18", "AAPL")
	bad.Price = decimal.RequireFromString("-1")
	_, err = svc.Update(created.ID, bad)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidPrice, domain.KindOf(err))

	bad = buyTrade(t, "2024-05-18", "AAPL")
	bad.BrokerID = 99
	_, err = svc.Update(created.ID, bad)
	require.Error(t, err)
	assert.Equal(t, domain.KindUnknownBroker, domain.KindOf(err))

	// A failed update leaves the stored trade untouched
	got, err := svc.FindByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2024-05-17", got.TradeDate.String())
	assert.Equal(t, int64(100), got.Quantity)
}

func TestUpdate_ReplacesFields(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(buyTrade(t, "2024-05-17", "AAPL"))
	require.NoError(t, err)

	replacement := buyTrade(t, "2024-05-20", "MSFT")
	replacement.TradeType = TradeTypeSell
	replacement.Quantity = 50

	updated, err := svc.Update(created.ID, replacement)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "2024-05-20", updated.TradeDate.String())
	assert.Equal(t, "MSFT", updated.Symbol)
	assert.Equal(t, TradeTypeSell, updated.TradeType)
	assert.Equal(t, int64(50), updated.Quantity)
}

func TestUpdate_DeletedIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(buyTrade(t, "2024-05-17", "AAPL"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(created.ID))

	_, err = svc.Update(created.ID, buyTrade(t, "2024-05-18", "AAPL"))
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestDelete_SoftAndIdempotent(t *testing.T) {
	svc, repo := newTestService(t)

	created, err := svc.Create(buyTrade(t, "2024-05-17", "AAPL"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(created.ID))
	require.NoError(t, svc.Delete(created.ID))

	got, err := svc.FindByID(created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Soft-deleted trades still pin their broker
	count, err := repo.CountAnyByBroker(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDelete_UnknownID(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Delete(404)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
