package reliability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/ledger/internal/database"
)

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func setupLedgerDB(t *testing.T) *database.DB {
	dir := t.TempDir()
	db, err := database.New(database.Config{Path: filepath.Join(dir, "ledger.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	_, err = db.Conn().Exec(`
		INSERT INTO brokers (name, country, active, created_at, updated_at)
		VALUES ('IBKR', 'US', 1, '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)
	return db
}

func listBackups(t *testing.T, dir string) []string {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "ledger_") && strings.HasSuffix(entry.Name(), ".db") {
			names = append(names, entry.Name())
		}
	}
	return names
}

func TestRun_CreatesVerifiedSnapshot(t *testing.T) {
	db := setupLedgerDB(t)
	backupDir := t.TempDir()

	svc := NewBackupService(db, backupDir, 5, testLogger())
	require.NoError(t, svc.Run())

	backups := listBackups(t, backupDir)
	require.Len(t, backups, 1)

	// The snapshot is a standalone database holding the same rows
	snap, err := database.New(database.Config{Path: filepath.Join(backupDir, backups[0])})
	require.NoError(t, err)
	defer snap.Close()

	var count int
	require.NoError(t, snap.Conn().QueryRow(`SELECT COUNT(*) FROM brokers`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRun_CreatesBackupDirectory(t *testing.T) {
	db := setupLedgerDB(t)
	backupDir := filepath.Join(t.TempDir(), "nested", "backups")

	svc := NewBackupService(db, backupDir, 5, testLogger())
	require.NoError(t, svc.Run())

	assert.Len(t, listBackups(t, backupDir), 1)
}

func TestRun_RotatesOldestBeyondRetention(t *testing.T) {
	db := setupLedgerDB(t)
	backupDir := t.TempDir()

	// Stale snapshots from earlier cycles; names sort chronologically
	stale := []string{
		"ledger_2024-01-01_030000.db",
		"ledger_2024-01-02_030000.db",
		"ledger_2024-01-03_030000.db",
	}
	for _, name := range stale {
		require.NoError(t, os.WriteFile(filepath.Join(backupDir, name), []byte("old"), 0644))
	}

	svc := NewBackupService(db, backupDir, 2, testLogger())
	require.NoError(t, svc.Run())

	remaining := listBackups(t, backupDir)
	require.Len(t, remaining, 2)
	assert.NotContains(t, remaining, "ledger_2024-01-01_030000.db")
	assert.NotContains(t, remaining, "ledger_2024-01-02_030000.db")
	assert.Contains(t, remaining, "ledger_2024-01-03_030000.db")
}

func TestRun_IgnoresForeignFilesDuringRotation(t *testing.T) {
	db := setupLedgerDB(t)
	backupDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(backupDir, "notes.txt"), []byte("keep me"), 0644))

	svc := NewBackupService(db, backupDir, 1, testLogger())
	require.NoError(t, svc.Run())

	_, err := os.Stat(filepath.Join(backupDir, "notes.txt"))
	assert.NoError(t, err)
}

func TestMaintenanceJob_Run(t *testing.T) {
	db := setupLedgerDB(t)

	job := NewMaintenanceJob(db, testLogger())
	assert.Equal(t, "ledger-maintenance", job.Name())
	require.NoError(t, job.Run())
}
