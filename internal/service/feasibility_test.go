package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"trkart/internal/models"
	"trkart/internal/repository/mocks"
	"trkart/internal/validation"
)

func testCard(id, customerID int64, balance string) *models.Card {
	return &models.Card{
		ID:         id,
		CardNumber: "ABCD1234EFGH5678",
		CustomerID: customerID,
		Balance:    decimal.RequireFromString(balance),
		Status:     models.CardStatusActive,
	}
}

func TestEvaluateFeasibility(t *testing.T) {
	t.Run("debit within balance is feasible", func(t *testing.T) {
		card := testCard(1, 7, "100.00")

		feas := evaluateFeasibility(card, models.TransactionTypePay, decimal.RequireFromString("40.00"))

		assert.True(t, feas.Feasible)
		assert.Equal(t, "Transaction is feasible", feas.Message)
		assert.True(t, feas.CurrentBalance.Equal(decimal.RequireFromString("100.00")))
		assert.True(t, feas.ProjectedBalance.Equal(decimal.RequireFromString("60.00")))
		assert.Equal(t, "ABCD1234EFGH5678", feas.CardNumber)
	})

	t.Run("debit to exactly zero is feasible", func(t *testing.T) {
		card := testCard(1, 7, "100.00")

		feas := evaluateFeasibility(card, models.TransactionTypePay, decimal.RequireFromString("100.00"))

		assert.True(t, feas.Feasible)
		assert.True(t, feas.ProjectedBalance.IsZero())
	})

	t.Run("overdrawing debit is infeasible with balance detail", func(t *testing.T) {
		card := testCard(1, 7, "100.00")

		feas := evaluateFeasibility(card, models.TransactionTypePay, decimal.RequireFromString("150.00"))

		assert.False(t, feas.Feasible)
		assert.Equal(t,
			"Insufficient funds: current balance is 100.00, requested amount is 150.00, projected balance would be -50.00",
			feas.Message)
		assert.True(t, feas.ProjectedBalance.Equal(decimal.RequireFromString("-50.00")))
	})

	t.Run("credit is always feasible", func(t *testing.T) {
		card := testCard(1, 7, "100.00")

		feas := evaluateFeasibility(card, models.TransactionTypeLoad, decimal.RequireFromString("50.00"))

		assert.True(t, feas.Feasible)
		assert.True(t, feas.ProjectedBalance.Equal(decimal.RequireFromString("150.00")))
	})

	t.Run("credit on zero balance is feasible", func(t *testing.T) {
		card := testCard(1, 7, "0.00")

		feas := evaluateFeasibility(card, models.TransactionTypeRefund, decimal.RequireFromString("10.00"))

		assert.True(t, feas.Feasible)
	})

	t.Run("non-positive amount is infeasible", func(t *testing.T) {
		card := testCard(1, 7, "100.00")

		feas := evaluateFeasibility(card, models.TransactionTypePay, decimal.Zero)

		assert.False(t, feas.Feasible)
		assert.Equal(t, "Amount must be greater than zero", feas.Message)
		assert.True(t, feas.ProjectedBalance.Equal(card.Balance))
	})
}

func TestFeasibilityService_Check(t *testing.T) {
	identity := models.Identity{CustomerID: 7}

	t.Run("feasible transaction", func(t *testing.T) {
		mockCardRepo := mocks.NewMockCardRepository(t)
		svc := NewFeasibilityService(mockCardRepo)
		ctx := context.Background()

		mockCardRepo.On("FindByID", ctx, int64(1)).Return(testCard(1, 7, "100.00"), nil)

		feas, err := svc.Check(ctx, identity, validation.TransactionInput{
			CardID:          "1",
			Amount:          "40.00",
			TransactionType: "Pay",
		})

		assert.NoError(t, err)
		assert.True(t, feas.Feasible)
		mockCardRepo.AssertExpectations(t)
	})

	t.Run("invalid input never reaches the repository", func(t *testing.T) {
		mockCardRepo := mocks.NewMockCardRepository(t)
		svc := NewFeasibilityService(mockCardRepo)

		feas, err := svc.Check(context.Background(), identity, validation.TransactionInput{
			CardID:          "abc",
			Amount:          "-5",
			TransactionType: "Pay",
		})

		assert.Nil(t, feas)
		var svcErr *ServiceError
		if assert.ErrorAs(t, err, &svcErr) {
			assert.Equal(t, ErrCodeValidation, svcErr.Code)
			assert.NotEmpty(t, svcErr.Fields)
		}
		mockCardRepo.AssertNotCalled(t, "FindByID")
	})

	t.Run("missing card reports infeasible, not an error", func(t *testing.T) {
		mockCardRepo := mocks.NewMockCardRepository(t)
		svc := NewFeasibilityService(mockCardRepo)
		ctx := context.Background()

		mockCardRepo.On("FindByID", ctx, int64(9)).Return(nil, models.ErrNotFound)

		feas, err := svc.Check(ctx, identity, validation.TransactionInput{
			CardID:          "9",
			Amount:          "10.00",
			TransactionType: "Load",
		})

		assert.NoError(t, err)
		assert.False(t, feas.Feasible)
		assert.Equal(t, "Card not found", feas.Message)
	})

	t.Run("foreign card is forbidden", func(t *testing.T) {
		mockCardRepo := mocks.NewMockCardRepository(t)
		svc := NewFeasibilityService(mockCardRepo)
		ctx := context.Background()

		mockCardRepo.On("FindByID", ctx, int64(1)).Return(testCard(1, 99, "100.00"), nil)

		feas, err := svc.Check(ctx, identity, validation.TransactionInput{
			CardID:          "1",
			Amount:          "10.00",
			TransactionType: "Pay",
		})

		assert.Nil(t, feas)
		var svcErr *ServiceError
		if assert.ErrorAs(t, err, &svcErr) {
			assert.Equal(t, ErrCodeForbidden, svcErr.Code)
			assert.Equal(t, "Access denied. Card does not belong to authenticated user.", svcErr.Message)
		}
	})
}
