package brokers

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// brokersColumns is the column list for the brokers table.
// Order must match the scan helpers below.
const brokersColumns = `id, name, country, description, email, phone, active, created_at, updated_at`

// Repository handles broker persistence.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new broker repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "brokers").Logger(),
	}
}

// Create inserts a new broker, assigning its id and timestamps.
func (r *Repository) Create(broker *Broker) (*Broker, error) {
	now := time.Now().UTC()

	query := `
		INSERT INTO brokers (name, country, description, email, phone, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		broker.Name,
		broker.Country,
		nullString(broker.Description),
		nullString(broker.Email),
		nullString(broker.Phone),
		boolToInt(broker.Active),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert broker: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	broker.ID = id
	broker.CreatedAt = now
	broker.UpdatedAt = now

	r.log.Info().Int64("id", id).Str("name", broker.Name).Msg("Broker created")
	return broker, nil
}

// Update replaces every mutable field and refreshes the modification
// timestamp. The id and creation timestamp are immutable.
func (r *Repository) Update(broker *Broker) (*Broker, error) {
	now := time.Now().UTC()

	query := `
		UPDATE brokers
		SET name = ?, country = ?, description = ?, email = ?, phone = ?, active = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		broker.Name,
		broker.Country,
		nullString(broker.Description),
		nullString(broker.Email),
		nullString(broker.Phone),
		boolToInt(broker.Active),
		now.Format(time.RFC3339),
		broker.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update broker: %w", err)
	}

	return r.GetByID(broker.ID)
}

// Delete removes a broker row permanently.
func (r *Repository) Delete(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM brokers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete broker: %w", err)
	}
	r.log.Info().Int64("id", id).Msg("Broker deleted")
	return nil
}

// GetByID retrieves a broker by id, or nil when absent.
func (r *Repository) GetByID(id int64) (*Broker, error) {
	row := r.db.QueryRow(`SELECT `+brokersColumns+` FROM brokers WHERE id = ?`, id)
	broker, err := scanBroker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get broker by id: %w", err)
	}
	return broker, nil
}

// GetByName retrieves a broker by its exact (case-sensitive) name.
func (r *Repository) GetByName(name string) (*Broker, error) {
	row := r.db.QueryRow(`SELECT `+brokersColumns+` FROM brokers WHERE name = ?`, name)
	broker, err := scanBroker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get broker by name: %w", err)
	}
	return broker, nil
}

// GetAll returns every broker in insertion order.
func (r *Repository) GetAll() ([]Broker, error) {
	return r.queryBrokers(`SELECT `+brokersColumns+` FROM brokers ORDER BY id`, nil)
}

// GetByActive returns brokers filtered by their active flag.
func (r *Repository) GetByActive(active bool) ([]Broker, error) {
	return r.queryBrokers(
		`SELECT `+brokersColumns+` FROM brokers WHERE active = ? ORDER BY id`,
		[]interface{}{boolToInt(active)})
}

// GetByCountry returns brokers registered in the given country.
func (r *Repository) GetByCountry(country string) ([]Broker, error) {
	return r.queryBrokers(
		`SELECT `+brokersColumns+` FROM brokers WHERE country = ? ORDER BY id`,
		[]interface{}{country})
}

// SearchByName returns brokers whose name contains the keyword,
// case-insensitively.
func (r *Repository) SearchByName(keyword string) ([]Broker, error) {
	return r.queryBrokers(
		`SELECT `+brokersColumns+` FROM brokers
		 WHERE instr(lower(name), lower(?)) > 0 ORDER BY id`,
		[]interface{}{keyword})
}

// ExistsByID checks whether a broker with the given id exists.
func (r *Repository) ExistsByID(id int64) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM brokers WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check broker existence: %w", err)
	}
	return true, nil
}

// ExistsByName checks whether a broker with the exact name exists.
func (r *Repository) ExistsByName(name string) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM brokers WHERE name = ? LIMIT 1`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check broker name existence: %w", err)
	}
	return true, nil
}

func (r *Repository) queryBrokers(query string, args []interface{}) ([]Broker, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query brokers: %w", err)
	}
	defer rows.Close()

	brokers := []Broker{}
	for rows.Next() {
		broker, err := scanBrokerFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan broker: %w", err)
		}
		brokers = append(brokers, *broker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate brokers: %w", err)
	}
	return brokers, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBroker(row rowScanner) (*Broker, error) {
	var b Broker
	var description, email, phone sql.NullString
	var active int
	var createdAt, updatedAt string

	err := row.Scan(&b.ID, &b.Name, &b.Country, &description, &email, &phone,
		&active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	b.Description = description.String
	b.Email = email.String
	b.Phone = phone.String
	b.Active = active != 0
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &b, nil
}

func scanBrokerFromRows(rows *sql.Rows) (*Broker, error) {
	return scanBroker(rows)
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
