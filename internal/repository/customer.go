// Package repository provides data access implementations for the
// card and wallet API.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"trkart/internal/db"
	"trkart/internal/models"
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	FindByID(ctx context.Context, id int64) (*models.Customer, error)
}

type customerRepository struct {
	db db.DBTX
}

// NewCustomerRepository creates a CustomerRepository over the given
// pool or transaction.
func NewCustomerRepository(dbtx db.DBTX) CustomerRepository {
	return &customerRepository{db: dbtx}
}

// Create inserts a new customer. A unique-violation on email is
// surfaced as models.ErrDuplicateEmail.
func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (customer_number, full_name, email, password_hash, verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING customer_id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		customer.CustomerNumber,
		customer.FullName,
		customer.Email,
		customer.PasswordHash,
		customer.Verified,
	).Scan(&customer.ID, &customer.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return fmt.Errorf("customer %s: %w", customer.Email, models.ErrDuplicateEmail)
	}
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// FindByEmail retrieves a customer by email address
func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	return r.findBy(ctx, "email = $1", email)
}

// FindByID retrieves a customer by id
func (r *customerRepository) FindByID(ctx context.Context, id int64) (*models.Customer, error) {
	return r.findBy(ctx, "customer_id = $1", id)
}

func (r *customerRepository) findBy(ctx context.Context, where string, arg any) (*models.Customer, error) {
	query := `
		SELECT customer_id, customer_number, full_name, email, password_hash, verified, created_at
		FROM customers
		WHERE ` + where

	var customer models.Customer
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&customer.ID,
		&customer.CustomerNumber,
		&customer.FullName,
		&customer.Email,
		&customer.PasswordHash,
		&customer.Verified,
		&customer.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	return &customer, nil
}
