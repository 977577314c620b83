package brokers

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
		CREATE UNIQUE INDEX idx_brokers_name ON brokers(name);
	`)
	require.NoError(t, err)

	return db
}

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func TestCreate_AssignsIDAndTimestamps(t *testing.T) {
	repo := NewRepository(setupTestDB(t), testLogger())

	created, err := repo.Create(&Broker{Name: "IBKR", Country: "US", Active: true})
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())
}

func TestCreate_GetByID_RoundTrip(t *testing.T) {
	repo := NewRepository(setupTestDB(t), testLogger())

	created, err := repo.Create(&Broker{
		Name:        "Futu",
		Country:     "HK",
		Description: "moomoo",
		Email:       "support@futu.example",
		Phone:       "+852 0000 0000",
		Active:      true,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Futu", got.Name)
	assert.Equal(t, "HK", got.Country)
	assert.Equal(t, "moomoo", got.Description)
	assert.Equal(t, "support@futu.example", got.Email)
	assert.Equal(t, "+852 0000 0000", got.Phone)
	assert.True(t, got.Active)
}

func TestGetByID_Missing(t *testing.T) {
	repo := NewRepository(setupTestDB(t), testLogger())

	got, err := repo.GetByID(42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetByName_ExactMatch(t *testing.T) {
	repo := NewRepository(setupTestDB(t), testLogger())

	_, err := repo.Create(&Broker{Name: "IBKR", Country: "US", Active: true})
	require.NoError(t, err)

	got, err := repo.GetByName("IBKR")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "IBKR", got.Name)

	got, err = repo.GetByName("ibkr")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExistsByName_CaseSensitive(t *testing.T) {
	repo := NewRepository(setupTestDB(t), testLogger())

	_, err := repo.Create(&Broker{Name: "IBKR", Country: "US", Active: true})
	require.NoError(t, err)

	exists, err := repo.ExistsByName("IBKR")
	require.NoError(t, err)
	assert.True(t, exists)

	// Name uniqueness is case-sensitive
	exists, err = repo.ExistsByName("ibkr")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSearchByName_CaseInsensitive(t *testing.T) {
	repo := NewRepository(setupTestDB(t), testLogger())

	for _, name := range []string{"Interactive Brokers", "Tiger Brokers", "Schwab"} {
		_, err := repo.Create(&Broker{Name: name, Country: "US", Active: true})
		require.NoError(t, err)
	}

	found, err := repo.SearchByName("bRoKeRs")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Interactive Brokers", found[0].Name)
	assert.Equal(t, "Tiger Brokers", found[1].Name)
}

func TestGetByCountry_AndActive(t *testing.T) {
	repo := NewRepository(setupTestDB(t), testLogger())

	_, err := repo.Create(&Broker{Name: "IBKR", Country: "US", Active: true})
	require.NoError(t, err)
	_, err = repo.Create(&Broker{Name: "Futu", Country: "HK", Active: false})
	require.NoError(t, err)

	us, err := repo.GetByCountry("US")
	require.NoError(t, err)
	require.Len(t, us, 1)
	assert.Equal(t, "IBKR", us[0].Name)

	inactive, err := repo.GetByActive(false)
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, "Futu", inactive[0].Name)
}

func TestUpdate_ReplacesFields(t *testing.T) {
	repo := NewRepository(setupTestDB(t), testLogger())

	created, err := repo.Create(&Broker{Name: "IBKR", Country: "US", Active: true})
	require.NoError(t, err)

	updated, err := repo.Update(&Broker{
		ID:      created.ID,
		Name:    "IBKR HK",
		Country: "HK",
		Active:  false,
	})
	require.NoError(t, err)

	assert.Equal(t, "IBKR HK", updated.Name)
	assert.Equal(t, "HK", updated.Country)
	assert.False(t, updated.Active)
	assert.Empty(t, updated.Email)
}

func TestDelete_RemovesRow(t *testing.T) {
	repo := NewRepository(setupTestDB(t), testLogger())

	created, err := repo.Create(&Broker{Name: "IBKR", Country: "US", Active: true})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(created.ID))

	got, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetAll_EmptyIsNotNil(t *testing.T) {
	repo := NewRepository(setupTestDB(t), testLogger())

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}
