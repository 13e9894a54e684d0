package repository

import (
	"context"
	"fmt"

	"trkart/internal/db"
	"trkart/internal/models"
)

// TransactionRepository defines the interface for the append-only
// transaction log. Rows are immutable once created; there are no
// update or delete operations.
type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	LinkCounterpart(ctx context.Context, id, counterpartID int64) error
	ListByCard(ctx context.Context, cardID int64) ([]models.Transaction, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Transaction, error)
}

type transactionRepository struct {
	db db.DBTX
}

// NewTransactionRepository creates a TransactionRepository over the
// given pool or transaction.
func NewTransactionRepository(dbtx db.DBTX) TransactionRepository {
	return &transactionRepository{db: dbtx}
}

const transactionColumns = `transaction_id, card_id, counterpart_id, amount,
	transaction_type, description, status, created_at`

// Create appends a transaction row and fills in the generated id,
// status, and creation timestamp.
func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (card_id, counterpart_id, amount, transaction_type, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING transaction_id, status, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		txn.CardID,
		txn.CounterpartID,
		txn.Amount,
		txn.Type,
		txn.Description,
	).Scan(&txn.ID, &txn.Status, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// LinkCounterpart points an existing transfer leg at its counterpart.
// Needed because the first leg of a transfer is inserted before the
// second leg's id exists.
func (r *transactionRepository) LinkCounterpart(ctx context.Context, id, counterpartID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET counterpart_id = $2 WHERE transaction_id = $1`,
		id, counterpartID,
	)
	if err != nil {
		return fmt.Errorf("failed to link counterpart: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("transaction %d: %w", id, models.ErrNotFound)
	}

	return nil
}

// ListByCard retrieves all transactions for a card, newest first.
func (r *transactionRepository) ListByCard(ctx context.Context, cardID int64) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE card_id = $1
		ORDER BY created_at DESC, transaction_id DESC
	`
	return r.list(ctx, query, cardID)
}

// ListByCustomer retrieves all transactions across every card owned by
// the customer, newest first.
func (r *transactionRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.Transaction, error) {
	query := `
		SELECT t.transaction_id, t.card_id, t.counterpart_id, t.amount,
			t.transaction_type, t.description, t.status, t.created_at
		FROM transactions t
		JOIN cards c ON c.card_id = t.card_id
		WHERE c.customer_id = $1
		ORDER BY t.created_at DESC, t.transaction_id DESC
	`
	return r.list(ctx, query, customerID)
}

func (r *transactionRepository) list(ctx context.Context, query string, arg any) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var txn models.Transaction
		if err := rows.Scan(
			&txn.ID,
			&txn.CardID,
			&txn.CounterpartID,
			&txn.Amount,
			&txn.Type,
			&txn.Description,
			&txn.Status,
			&txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, nil
}
