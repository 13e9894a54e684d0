package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"trkart/internal/models"
	"trkart/internal/repository"
	"trkart/internal/validation"
)

// Feasibility is the outcome of evaluating a transaction against the
// current card state without applying it.
type Feasibility struct {
	Message          string          `json:"message"`
	CardNumber       string          `json:"cardNumber"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	ProjectedBalance decimal.Decimal `json:"projectedBalance"`
	Feasible         bool            `json:"isFeasible"`
}

// FeasibilityService evaluates transactions without mutating card
// state, for preview use. The commit path re-evaluates with the same
// logic against a locked row, never this service's result.
type FeasibilityService struct {
	cards repository.CardRepository
}

// NewFeasibilityService creates a new FeasibilityService
func NewFeasibilityService(cards repository.CardRepository) *FeasibilityService {
	return &FeasibilityService{cards: cards}
}

// Check validates the raw input, enforces ownership, and evaluates
// feasibility against the card's current balance. Read-only.
func (s *FeasibilityService) Check(ctx context.Context, identity models.Identity, in validation.TransactionInput) (*Feasibility, error) {
	if result := validation.ValidateTransactionInput(in); !result.Valid {
		return nil, newValidationError(result.Errors)
	}

	cardID, err := strconv.ParseInt(in.CardID, 10, 64)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("card id %q passed validation but failed to parse", in.CardID),
		}
	}

	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return &Feasibility{Feasible: false, Message: "Card not found"}, nil
		}
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: "failed to find card",
			Err:     err,
		}
	}

	if !card.OwnedBy(identity.CustomerID) {
		return nil, errForbiddenCard()
	}

	txnType, ok := models.ParseTransactionType(in.TransactionType)
	if !ok {
		// Validation has already vetted the type; this branch guards
		// standalone callers that skip ValidateTransactionInput.
		return &Feasibility{
			Feasible:       false,
			CurrentBalance: card.Balance,
			CardNumber:     card.CardNumber,
			Message:        fmt.Sprintf("Unknown transaction type: %s", in.TransactionType),
		}, nil
	}

	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("amount %q passed validation but failed to parse", in.Amount),
		}
	}

	feas := evaluateFeasibility(card, txnType, amount)
	return &feas, nil
}

// evaluateFeasibility computes the projected balance and the
// accept/reject decision for a parsed transaction against the given
// card snapshot. Pure; shared by the preview path and the commit
// path so the two can never disagree on classification.
func evaluateFeasibility(card *models.Card, txnType models.TransactionType, amount decimal.Decimal) Feasibility {
	feas := Feasibility{
		CurrentBalance: card.Balance,
		CardNumber:     card.CardNumber,
	}

	// Defensive re-check; the input validator rejects non-positive
	// amounts before we get here.
	if !amount.IsPositive() {
		feas.ProjectedBalance = card.Balance
		feas.Message = "Amount must be greater than zero"
		return feas
	}

	feas.ProjectedBalance = card.Balance.Add(txnType.SignedAmount(amount))

	if feas.ProjectedBalance.IsNegative() {
		feas.Message = fmt.Sprintf(
			"Insufficient funds: current balance is %s, requested amount is %s, projected balance would be %s",
			card.Balance.StringFixed(2),
			amount.StringFixed(2),
			feas.ProjectedBalance.StringFixed(2),
		)
		return feas
	}

	feas.Feasible = true
	feas.Message = "Transaction is feasible"
	return feas
}
