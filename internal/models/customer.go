package models

import "time"

// Customer represents a registered customer identity
type Customer struct {
	CreatedAt      time.Time `db:"created_at"`
	CustomerNumber string    `db:"customer_number"`
	FullName       string    `db:"full_name"`
	Email          string    `db:"email"`
	PasswordHash   string    `db:"password_hash"`
	Verified       bool      `db:"verified"`
	ID             int64     `db:"customer_id"`
}

// Identity is the authenticated caller resolved from a session token.
// It is passed explicitly into every user-scoped service operation;
// services never read identity out of ambient request state.
type Identity struct {
	Email      string
	FullName   string
	CustomerID int64
}
