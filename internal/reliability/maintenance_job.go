package reliability

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/ledger/internal/database"
)

// MaintenanceJob keeps the ledger database healthy: it checkpoints the WAL
// so the log does not grow unbounded, and runs an integrity check so
// corruption is noticed long before a restore is needed.
type MaintenanceJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job.
func NewMaintenanceJob(db *database.DB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:  db,
		log: log.With().Str("job", "maintenance").Logger(),
	}
}

// Name implements scheduler.Job.
func (j *MaintenanceJob) Name() string {
	return "ledger-maintenance"
}

// Run executes one maintenance cycle.
func (j *MaintenanceJob) Run() error {
	var busy, logPages, checkpointed int
	err := j.db.Conn().
		QueryRow(`PRAGMA wal_checkpoint(TRUNCATE)`).
		Scan(&busy, &logPages, &checkpointed)
	if err != nil {
		return fmt.Errorf("WAL checkpoint failed: %w", err)
	}
	if busy != 0 {
		j.log.Warn().Msg("WAL checkpoint could not complete, writers busy")
	}

	var result string
	if err := j.db.Conn().QueryRow(`PRAGMA integrity_check`).Scan(&result); err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check returned %q", result)
	}

	j.log.Info().Int("wal_pages", logPages).Msg("Maintenance complete")
	return nil
}
