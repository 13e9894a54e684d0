package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"trkart/internal/db"
	"trkart/internal/models"
)

// CardRepository defines the interface for card data access
type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	FindByID(ctx context.Context, id int64) (*models.Card, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Card, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Card, error)
	Delete(ctx context.Context, id int64) error
	GetBalance(ctx context.Context, id int64) (decimal.Decimal, error)
	ApplyBalanceDelta(ctx context.Context, id int64, delta decimal.Decimal) error
}

type cardRepository struct {
	db db.DBTX
}

// NewCardRepository creates a CardRepository over the given pool or
// transaction.
func NewCardRepository(dbtx db.DBTX) CardRepository {
	return &cardRepository{db: dbtx}
}

const cardColumns = `card_id, card_number, customer_id, balance, status, created_at`

// Create inserts a new card and fills in the generated id and
// creation timestamp.
func (r *cardRepository) Create(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (card_number, customer_id, balance, status)
		VALUES ($1, $2, $3, $4)
		RETURNING card_id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		card.CardNumber,
		card.CustomerID,
		card.Balance,
		card.Status,
	).Scan(&card.ID, &card.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// FindByID retrieves a card by id
func (r *cardRepository) FindByID(ctx context.Context, id int64) (*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_id = $1`
	return r.scanCard(r.db.QueryRowContext(ctx, query, id), id)
}

// FindByIDForUpdate retrieves a card by id with a row lock, so a
// feasibility re-check and the following balance write observe a
// balance no concurrent writer can move underneath them.
func (r *cardRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_id = $1 FOR UPDATE`
	return r.scanCard(r.db.QueryRowContext(ctx, query, id), id)
}

// ListByCustomer retrieves all cards owned by the given customer,
// newest first.
func (r *cardRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE customer_id = $1
		ORDER BY created_at DESC, card_id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var card models.Card
		if err := rows.Scan(
			&card.ID,
			&card.CardNumber,
			&card.CustomerID,
			&card.Balance,
			&card.Status,
			&card.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	return cards, nil
}

// Delete hard-deletes a card. There is no soft-delete state machine.
func (r *cardRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE card_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("card %d: %w", id, models.ErrNotFound)
	}

	return nil
}

// GetBalance retrieves only the balance of a card
func (r *cardRepository) GetBalance(ctx context.Context, id int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRowContext(ctx, `SELECT balance FROM cards WHERE card_id = $1`, id).
		Scan(&balance)

	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("card %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get card balance: %w", err)
	}

	return balance, nil
}

// ApplyBalanceDelta adjusts the card balance by delta in a single
// conditional statement. The WHERE clause carries the non-negative
// balance invariant, so a debit that would overdraw the card matches
// zero rows instead of writing a negative balance. This is what makes
// the check-then-act race between two concurrent debits structurally
// impossible.
func (r *cardRepository) ApplyBalanceDelta(ctx context.Context, id int64, delta decimal.Decimal) error {
	query := `
		UPDATE cards
		SET balance = balance + $2
		WHERE card_id = $1 AND balance + $2 >= 0
	`

	result, err := r.db.ExecContext(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("failed to apply balance delta: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// Zero rows: either the card is gone or the delta would overdraw it.
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("card %d: %w", id, models.ErrBalanceConstraint)
}

func (r *cardRepository) scanCard(row *sql.Row, id int64) (*models.Card, error) {
	var card models.Card
	err := row.Scan(
		&card.ID,
		&card.CardNumber,
		&card.CustomerID,
		&card.Balance,
		&card.Status,
		&card.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find card: %w", err)
	}

	return &card, nil
}
