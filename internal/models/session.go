package models

import "time"

// Session maps an opaque token to a customer identity with an absolute
// expiry. Sessions live in the session store, not the relational store.
type Session struct {
	ExpiresAt  time.Time `json:"expires_at"`
	Token      string    `json:"-"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	CustomerID int64     `json:"customer_id"`
}

// Valid reports whether the session is still usable at the given
// instant. Expiry is checked lazily on every resolve; there is no
// explicit expiration transition.
func (s *Session) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// Identity returns the authenticated identity carried by the session.
func (s *Session) Identity() Identity {
	return Identity{
		CustomerID: s.CustomerID,
		Email:      s.Email,
		FullName:   s.FullName,
	}
}
