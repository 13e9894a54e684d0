package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trkart/internal/models"
)

func TestTransactionRepository_Create(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	customer := createTestCustomer(t, database)
	card := createTestCard(t, database, customer.ID, "100.00")

	repo := NewTransactionRepository(database)

	txn := &models.Transaction{
		CardID:      card.ID,
		Amount:      decimal.RequireFromString("25.00"),
		Type:        models.TransactionTypePay,
		Description: "Coffee",
	}

	require.NoError(t, repo.Create(context.Background(), txn))

	assert.NotZero(t, txn.ID)
	assert.Equal(t, models.TransactionStatusCompleted, txn.Status)
	assert.False(t, txn.CreatedAt.IsZero())
}

func TestTransactionRepository_LinkCounterpart(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	customer := createTestCustomer(t, database)
	from := createTestCard(t, database, customer.ID, "100.00")
	to := createTestCard(t, database, customer.ID, "0.00")

	repo := NewTransactionRepository(database)
	ctx := context.Background()

	outLeg := &models.Transaction{
		CardID: from.ID,
		Amount: decimal.RequireFromString("30.00"),
		Type:   models.TransactionTypeTransferOut,
	}
	require.NoError(t, repo.Create(ctx, outLeg))

	inLeg := &models.Transaction{
		CardID:        to.ID,
		CounterpartID: &outLeg.ID,
		Amount:        decimal.RequireFromString("30.00"),
		Type:          models.TransactionTypeTransferIn,
	}
	require.NoError(t, repo.Create(ctx, inLeg))

	require.NoError(t, repo.LinkCounterpart(ctx, outLeg.ID, inLeg.ID))

	legs, err := repo.ListByCard(ctx, from.ID)
	require.NoError(t, err)
	require.Len(t, legs, 1)
	if assert.NotNil(t, legs[0].CounterpartID) {
		assert.Equal(t, inLeg.ID, *legs[0].CounterpartID)
	}

	assert.ErrorIs(t, repo.LinkCounterpart(ctx, 999999, inLeg.ID), models.ErrNotFound)
}

func TestTransactionRepository_ListByCustomer(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	owner := createTestCustomer(t, database)
	other := createTestCustomer(t, database)
	ownCard := createTestCard(t, database, owner.ID, "100.00")
	otherCard := createTestCard(t, database, other.ID, "100.00")

	repo := NewTransactionRepository(database)
	ctx := context.Background()

	for _, cardID := range []int64{ownCard.ID, ownCard.ID, otherCard.ID} {
		require.NoError(t, repo.Create(ctx, &models.Transaction{
			CardID: cardID,
			Amount: decimal.RequireFromString("5.00"),
			Type:   models.TransactionTypeLoad,
		}))
	}

	txns, err := repo.ListByCustomer(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, txns, 2)
	for _, txn := range txns {
		assert.Equal(t, ownCard.ID, txn.CardID)
	}
}

func TestCustomerRepository_DuplicateEmail(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	first := createTestCustomer(t, database)

	repo := NewCustomerRepository(database)
	err := repo.Create(context.Background(), &models.Customer{
		CustomerNumber: "9999999999",
		FullName:       "Copycat",
		Email:          first.Email,
		PasswordHash:   "not-a-real-hash",
	})

	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
}
