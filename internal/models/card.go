package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardStatus represents the lifecycle status of a card
type CardStatus string

const (
	CardStatusActive   CardStatus = "Active"
	CardStatusInactive CardStatus = "Inactive"
)

// Card represents a prepaid card owned by exactly one customer.
// Balance is never persisted negative; the repository layer enforces
// this with a conditional update.
type Card struct {
	CreatedAt  time.Time       `db:"created_at"`
	CardNumber string          `db:"card_number"`
	Status     CardStatus      `db:"status"`
	Balance    decimal.Decimal `db:"balance"`
	ID         int64           `db:"card_id"`
	CustomerID int64           `db:"customer_id"`
}

// OwnedBy reports whether the card belongs to the given customer.
// Every card-scoped operation must pass this check before proceeding.
func (c *Card) OwnedBy(customerID int64) bool {
	return c.CustomerID == customerID
}
