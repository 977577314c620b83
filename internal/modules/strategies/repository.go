package strategies

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// strategiesColumns is the column list for the strategies table.
const strategiesColumns = `id, name, description, is_deleted, created_at, updated_at`

// Repository handles strategy persistence. Default reads hide soft-deleted
// rows; only the delete path and the foreign-key existence check look at all
// rows.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new strategy repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "strategies").Logger(),
	}
}

// Create inserts a new strategy, assigning its id and timestamps.
func (r *Repository) Create(strategy *Strategy) (*Strategy, error) {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO strategies (name, description, is_deleted, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?)`,
		strategy.Name,
		nullString(strategy.Description),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert strategy: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	strategy.ID = id
	strategy.Deleted = false
	strategy.CreatedAt = now
	strategy.UpdatedAt = now

	r.log.Info().Int64("id", id).Str("name", strategy.Name).Msg("Strategy created")
	return strategy, nil
}

// Update replaces the name and description of a strategy.
func (r *Repository) Update(strategy *Strategy) (*Strategy, error) {
	now := time.Now().UTC()

	_, err := r.db.Exec(`
		UPDATE strategies SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		strategy.Name,
		nullString(strategy.Description),
		now.Format(time.RFC3339),
		strategy.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update strategy: %w", err)
	}

	return r.GetByID(strategy.ID)
}

// SoftDelete marks a strategy as deleted. Marking an already-deleted row is
// a no-op that still succeeds.
func (r *Repository) SoftDelete(id int64) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(
		`UPDATE strategies SET is_deleted = 1, updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete strategy: %w", err)
	}
	r.log.Info().Int64("id", id).Msg("Strategy soft-deleted")
	return nil
}

// GetByID retrieves a live strategy by id, or nil when absent or deleted.
func (r *Repository) GetByID(id int64) (*Strategy, error) {
	row := r.db.QueryRow(
		`SELECT `+strategiesColumns+` FROM strategies WHERE id = ? AND is_deleted = 0`, id)
	strategy, err := scanStrategy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy by id: %w", err)
	}
	return strategy, nil
}

// GetAnyByID retrieves a strategy regardless of its soft-delete flag.
// Used by the delete path and by audit tooling.
func (r *Repository) GetAnyByID(id int64) (*Strategy, error) {
	row := r.db.QueryRow(
		`SELECT `+strategiesColumns+` FROM strategies WHERE id = ?`, id)
	strategy, err := scanStrategy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy by id: %w", err)
	}
	return strategy, nil
}

// GetAll returns every live strategy, newest first.
func (r *Repository) GetAll() ([]Strategy, error) {
	rows, err := r.db.Query(`
		SELECT ` + strategiesColumns + ` FROM strategies
		WHERE is_deleted = 0
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategies: %w", err)
	}
	defer rows.Close()

	strategies := []Strategy{}
	for rows.Next() {
		strategy, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		strategies = append(strategies, *strategy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate strategies: %w", err)
	}
	return strategies, nil
}

// ExistsAnyByID checks whether any strategy row has the given id, deleted or
// not. Trade records may keep referencing a strategy after it is retired.
func (r *Repository) ExistsAnyByID(id int64) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM strategies WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check strategy existence: %w", err)
	}
	return true, nil
}

// ExistsLiveByName checks whether a live strategy already claims the name.
func (r *Repository) ExistsLiveByName(name string) (bool, error) {
	var one int
	err := r.db.QueryRow(
		`SELECT 1 FROM strategies WHERE name = ? AND is_deleted = 0 LIMIT 1`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check strategy name existence: %w", err)
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStrategy(row rowScanner) (*Strategy, error) {
	var s Strategy
	var description sql.NullString
	var deleted int
	var createdAt, updatedAt string

	err := row.Scan(&s.ID, &s.Name, &description, &deleted, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	s.Description = description.String
	s.Deleted = deleted != 0
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &s, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
