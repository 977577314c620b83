// Package brokers manages brokerage accounts: the institutions trades and
// cash flows are booked against.
package brokers

import "time"

// Broker represents a brokerage account provider. Brokers are the only
// entity without a soft-delete flag: they are hard-deleted, and deletion is
// refused while any financial record still references them.
type Broker struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	Description string    `json:"description,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
