package models

import "errors"

// Domain errors that can be returned by repositories
var (
	// ErrNotFound indicates the requested entity was not found
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail indicates a customer with the same email already exists
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrBalanceConstraint indicates a balance update was refused because
	// it would have taken the card balance below zero
	ErrBalanceConstraint = errors.New("balance would go negative")
)
