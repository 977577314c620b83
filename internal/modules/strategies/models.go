// Package strategies manages the trading strategies trade records are tagged
// with.
package strategies

import "time"

// Strategy is a named trading approach (e.g. "wheel", "covered call").
// Strategies are soft-deleted: a deleted row stays in storage for audit
// history but is hidden from every default query, and its name becomes
// available again.
type Strategy struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Deleted     bool      `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
