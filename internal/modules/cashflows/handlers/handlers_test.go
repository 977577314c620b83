package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/ledger/internal/modules/cashflows"

	_ "modernc.org/sqlite"
)

type memberBrokers struct {
	ids map[int64]bool
}

func (m memberBrokers) ExistsByID(id int64) (bool, error) {
	return m.ids[id], nil
}

func setupRouter(t *testing.T) chi.Router {
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
		CREATE TABLE cash_flow_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			record_date TEXT NOT NULL,
			broker_id INTEGER NOT NULL REFERENCES brokers(id),
			record_type TEXT NOT NULL,
			amount TEXT NOT NULL,
			currency TEXT NOT NULL,
			bank TEXT,
			description TEXT,
			created_by TEXT,
			is_deleted INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		INSERT INTO brokers (id, name, country, active, created_at, updated_at)
		VALUES (1, 'IBKR', 'US', 1, '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z');
	`)
	require.NoError(t, err)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	repo := cashflows.NewRepository(db, log)
	svc := cashflows.NewService(repo, memberBrokers{ids: map[int64]bool{1: true}}, log)

	r := chi.NewRouter()
	NewHandler(svc, log).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestCreate_Returns201(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/cash-flow-records",
		`{"record_date":"2024-03-15","broker_id":1,"record_type":"DEPOSIT","amount":"1000.00"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	env := decodeEnvelope(t, rec)
	var created cashflows.CashFlowRecord
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "CNY", string(created.Currency))
}

func TestCreate_UnknownBrokerIs400(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/cash-flow-records",
		`{"record_date":"2024-03-15","broker_id":9,"record_type":"DEPOSIT","amount":"1000.00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_NonPositiveAmountIs400(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/cash-flow-records",
		`{"record_date":"2024-03-15","broker_id":1,"record_type":"DEPOSIT","amount":"-5"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_UnsupportedRecordTypeIs400(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/cash-flow-records",
		`{"record_date":"2024-03-15","broker_id":1,"record_type":"TRANSFER","amount":"1000.00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/cash-flow-records", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []cashflows.CashFlowRecord
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &all))
	assert.Empty(t, all)
}

func TestByType_InvalidValueIs400(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/cash-flow-records/type/TRANSFER", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/cash-flow-records/type/deposit", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDateRange_RequiresBothBounds(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/cash-flow-records/date-range?start=2024-01-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet,
		"/cash-flow-records/date-range?start=2024-01-01&end=2024-12-31", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestList_IncludeBrokerCarriesName(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/cash-flow-records",
		`{"record_date":"2024-03-15","broker_id":1,"record_type":"DEPOSIT","amount":"1000.00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/cash-flow-records?include=broker", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var enriched []cashflows.CashFlowRecordWithBroker
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &enriched))
	require.Len(t, enriched, 1)
	assert.Equal(t, "IBKR", enriched[0].BrokerName)
}

func TestDelete_MissingIs404(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodDelete, "/cash-flow-records/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
