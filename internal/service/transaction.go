package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"trkart/internal/db"
	"trkart/internal/models"
	"trkart/internal/repository"
	"trkart/internal/validation"
)

// TransactionService is the transaction engine: it validates input,
// re-checks feasibility against a locked card row, and persists the
// transaction record and the balance change as one atomic unit.
type TransactionService struct {
	db *db.DB
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(database *db.DB) *TransactionService {
	return &TransactionService{db: database}
}

// Create applies a transaction to a card. Processing order is strict:
// input validation, then ownership and feasibility against a FOR
// UPDATE read inside the database transaction, then the ledger insert
// and the conditional balance update. Both writes commit together or
// not at all.
func (s *TransactionService) Create(ctx context.Context, identity models.Identity, in validation.TransactionInput) (*models.Transaction, error) {
	if result := validation.ValidateTransactionInput(in); !result.Valid {
		return nil, newValidationError(result.Errors)
	}

	cardID, txnType, amount, err := parseTransactionInput(in)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("failed to start transaction: %v", err),
		}
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	txCardRepo := repository.NewCardRepository(tx)
	txTransactionRepo := repository.NewTransactionRepository(tx)

	txn, err := s.performCreate(ctx, txCardRepo, txTransactionRepo, identity, cardID, txnType, amount, in.Description)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("failed to commit transaction: %v", err),
		}
	}

	return txn, nil
}

// performCreate contains the core transaction engine logic. The card
// row is locked for the duration, so the feasibility decision and the
// balance write see the same committed balance.
func (s *TransactionService) performCreate(
	ctx context.Context,
	cardRepo repository.CardRepository,
	transactionRepo repository.TransactionRepository,
	identity models.Identity,
	cardID int64,
	txnType models.TransactionType,
	amount decimal.Decimal,
	description string,
) (*models.Transaction, error) {
	card, err := cardRepo.FindByIDForUpdate(ctx, cardID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &ServiceError{
				Code:    ErrCodeCardNotFound,
				Message: "Card not found",
			}
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

	if feas := evaluateFeasibility(card, txnType, amount); !feas.Feasible {
		return nil, &ServiceError{
			Code:    ErrCodeTransactionDenied,
			Message: feas.Message,
		}
	}

	txn := &models.Transaction{
		CardID:      card.ID,
		Amount:      amount,
		Type:        txnType,
		Description: description,
	}

	if err := transactionRepo.Create(ctx, txn); err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("failed to record transaction: %v", err),
		}
	}

	if err := s.applyDelta(ctx, cardRepo, card.ID, txnType.SignedAmount(amount)); err != nil {
		return nil, err
	}

	return txn, nil
}

// Transfer moves funds between two cards as a pair of linked legs:
// TransferOut on the source, TransferIn on the destination. The
// source card must belong to the caller; the destination may belong
// to any customer. Both legs and both balance changes commit as one
// unit.
func (s *TransactionService) Transfer(ctx context.Context, identity models.Identity, in validation.TransferInput) (*models.Transaction, error) {
	if result := validation.ValidateTransferInput(in); !result.Valid {
		return nil, newValidationError(result.Errors)
	}

	fromID, err := strconv.ParseInt(in.FromCardID, 10, 64)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("card id %q passed validation but failed to parse", in.FromCardID),
		}
	}
	toID, err := strconv.ParseInt(in.ToCardID, 10, 64)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("card id %q passed validation but failed to parse", in.ToCardID),
		}
	}
	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("amount %q passed validation but failed to parse", in.Amount),
		}
	}

	if fromID == toID {
		return nil, &ServiceError{
			Code:    ErrCodeTransactionDenied,
			Message: "Cannot transfer to the same card",
		}
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("failed to start transaction: %v", err),
		}
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	txCardRepo := repository.NewCardRepository(tx)
	txTransactionRepo := repository.NewTransactionRepository(tx)

	outLeg, err := s.performTransfer(ctx, txCardRepo, txTransactionRepo, identity, fromID, toID, amount, in.Description)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("failed to commit transaction: %v", err),
		}
	}

	return outLeg, nil
}

// performTransfer contains the core transfer logic. Cards are locked
// in ascending id order so two opposing transfers cannot deadlock.
func (s *TransactionService) performTransfer(
	ctx context.Context,
	cardRepo repository.CardRepository,
	transactionRepo repository.TransactionRepository,
	identity models.Identity,
	fromID, toID int64,
	amount decimal.Decimal,
	description string,
) (*models.Transaction, error) {
	lockOrder := []int64{fromID, toID}
	if toID < fromID {
		lockOrder = []int64{toID, fromID}
	}

	locked := make(map[int64]*models.Card, 2)
	for _, id := range lockOrder {
		card, err := cardRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, &ServiceError{
					Code:    ErrCodeCardNotFound,
					Message: "Card not found",
				}
			}
			return nil, &ServiceError{
				Code:    ErrCodeInternalError,
				Message: "failed to find card",
				Err:     err,
			}
		}
		locked[id] = card
	}

	fromCard := locked[fromID]
	if !fromCard.OwnedBy(identity.CustomerID) {
		return nil, errForbiddenCard()
	}

	if feas := evaluateFeasibility(fromCard, models.TransactionTypeTransferOut, amount); !feas.Feasible {
		return nil, &ServiceError{
			Code:    ErrCodeTransactionDenied,
			Message: feas.Message,
		}
	}

	outLeg := &models.Transaction{
		CardID:      fromID,
		Amount:      amount,
		Type:        models.TransactionTypeTransferOut,
		Description: description,
	}
	if err := transactionRepo.Create(ctx, outLeg); err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("failed to record transfer leg: %v", err),
		}
	}

	inLeg := &models.Transaction{
		CardID:        toID,
		CounterpartID: &outLeg.ID,
		Amount:        amount,
		Type:          models.TransactionTypeTransferIn,
		Description:   description,
	}
	if err := transactionRepo.Create(ctx, inLeg); err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("failed to record transfer leg: %v", err),
		}
	}

	if err := transactionRepo.LinkCounterpart(ctx, outLeg.ID, inLeg.ID); err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("failed to link transfer legs: %v", err),
		}
	}
	outLeg.CounterpartID = &inLeg.ID

	debit := models.TransactionTypeTransferOut.SignedAmount(amount)
	if err := s.applyDelta(ctx, cardRepo, fromID, debit); err != nil {
		return nil, err
	}

	credit := models.TransactionTypeTransferIn.SignedAmount(amount)
	if err := s.applyDelta(ctx, cardRepo, toID, credit); err != nil {
		return nil, err
	}

	return outLeg, nil
}

// ListByCard returns a card's transactions after an ownership check
func (s *TransactionService) ListByCard(ctx context.Context, identity models.Identity, cardID int64) ([]models.Transaction, error) {
	return s.performListByCard(ctx,
		repository.NewCardRepository(s.db),
		repository.NewTransactionRepository(s.db),
		identity, cardID)
}

func (s *TransactionService) performListByCard(
	ctx context.Context,
	cardRepo repository.CardRepository,
	transactionRepo repository.TransactionRepository,
	identity models.Identity,
	cardID int64,
) ([]models.Transaction, error) {
	card, err := cardRepo.FindByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &ServiceError{
				Code:    ErrCodeCardNotFound,
				Message: "Card not found",
			}
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

	txns, err := transactionRepo.ListByCard(ctx, cardID)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: "failed to list transactions",
			Err:     err,
		}
	}
	return txns, nil
}

// ListByCustomer returns every transaction across the caller's cards
func (s *TransactionService) ListByCustomer(ctx context.Context, identity models.Identity) ([]models.Transaction, error) {
	txns, err := repository.NewTransactionRepository(s.db).ListByCustomer(ctx, identity.CustomerID)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: "failed to list transactions",
			Err:     err,
		}
	}
	return txns, nil
}

// applyDelta maps balance-update failures onto the service taxonomy.
// A constraint refusal means a debit lost a race it could not have
// won; it surfaces as the same denial a feasibility check produces.
func (s *TransactionService) applyDelta(ctx context.Context, cardRepo repository.CardRepository, cardID int64, delta decimal.Decimal) error {
	err := cardRepo.ApplyBalanceDelta(ctx, cardID, delta)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, models.ErrBalanceConstraint):
		return &ServiceError{
			Code:    ErrCodeTransactionDenied,
			Message: "Insufficient funds: the requested amount would overdraw the card",
		}
	case errors.Is(err, models.ErrNotFound):
		return &ServiceError{
			Code:    ErrCodeCardNotFound,
			Message: "Card not found",
		}
	default:
		return &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("failed to update card balance: %v", err),
		}
	}
}

// parseTransactionInput converts validated raw input into typed
// values. Failures here mean a validator bug, not bad client input.
func parseTransactionInput(in validation.TransactionInput) (int64, models.TransactionType, decimal.Decimal, error) {
	cardID, err := strconv.ParseInt(in.CardID, 10, 64)
	if err != nil {
		return 0, "", decimal.Zero, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("card id %q passed validation but failed to parse", in.CardID),
		}
	}

	txnType, ok := models.ParseTransactionType(in.TransactionType)
	if !ok {
		return 0, "", decimal.Zero, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("transaction type %q passed validation but failed to parse", in.TransactionType),
		}
	}

	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		return 0, "", decimal.Zero, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("amount %q passed validation but failed to parse", in.Amount),
		}
	}

	return cardID, txnType, amount, nil
}
