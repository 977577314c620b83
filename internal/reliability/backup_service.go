// Package reliability provides the backup and maintenance jobs that keep the
// ledger database healthy over long unattended runs.
package reliability

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/ledger/internal/database"
)

// BackupService snapshots the ledger database with VACUUM INTO and rotates
// old snapshots. The ledger is the only copy of the user's financial history,
// so backups are verified before older ones are discarded.
type BackupService struct {
	db        *database.DB
	backupDir string
	keep      int
	log       zerolog.Logger
}

// NewBackupService creates a new backup service. keep is the number of
// snapshot files retained after rotation.
func NewBackupService(db *database.DB, backupDir string, keep int, log zerolog.Logger) *BackupService {
	if keep < 1 {
		keep = 1
	}
	return &BackupService{
		db:        db,
		backupDir: backupDir,
		keep:      keep,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// Name implements scheduler.Job.
func (s *BackupService) Name() string {
	return "ledger-backup"
}

// Run performs one backup cycle: snapshot, verify, rotate.
func (s *BackupService) Run() error {
	startTime := time.Now()

	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupName := fmt.Sprintf("ledger_%s.db", time.Now().Format("2006-01-02_150405"))
	backupPath := filepath.Join(s.backupDir, backupName)

	// VACUUM INTO writes a compact, consistent copy without blocking writers
	if _, err := s.db.Conn().Exec(`VACUUM INTO ?`, backupPath); err != nil {
		return fmt.Errorf("failed to snapshot ledger database: %w", err)
	}

	if err := s.verifyBackup(backupPath); err != nil {
		os.Remove(backupPath)
		return fmt.Errorf("backup verification failed: %w", err)
	}

	removed, err := s.rotate()
	if err != nil {
		return err
	}

	s.log.Info().
		Str("backup", backupName).
		Int("removed", removed).
		Dur("duration", time.Since(startTime)).
		Msg("Backup complete")
	return nil
}

// verifyBackup opens the snapshot read-only and runs an integrity check.
func (s *BackupService) verifyBackup(path string) error {
	conn, err := sql.Open("sqlite", path+"?_pragma=query_only(1)")
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer conn.Close()

	var result string
	if err := conn.QueryRow(`PRAGMA integrity_check`).Scan(&result); err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check returned %q", result)
	}
	return nil
}

// rotate removes the oldest snapshots beyond the retention count and returns
// how many files were deleted.
func (s *BackupService) rotate() (int, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), "ledger_") && strings.HasSuffix(entry.Name(), ".db") {
			backups = append(backups, entry.Name())
		}
	}

	if len(backups) <= s.keep {
		return 0, nil
	}

	// Timestamped names sort chronologically
	sort.Strings(backups)

	removed := 0
	for _, name := range backups[:len(backups)-s.keep] {
		if err := os.Remove(filepath.Join(s.backupDir, name)); err != nil {
			s.log.Warn().Err(err).Str("backup", name).Msg("Failed to remove old backup")
			continue
		}
		removed++
	}
	return removed, nil
}
