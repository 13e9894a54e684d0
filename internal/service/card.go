package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"trkart/internal/models"
	"trkart/internal/repository"
)

// CardService handles card lifecycle and card-scoped reads. Every
// operation takes the authenticated identity and enforces ownership
// before touching the card.
type CardService struct {
	cards repository.CardRepository
}

// NewCardService creates a new CardService
func NewCardService(cards repository.CardRepository) *CardService {
	return &CardService{cards: cards}
}

// cardNumberAlphabet matches the issuing scheme: digits and uppercase
// letters, 16 characters.
const cardNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Create issues a new active card with a zero balance for the caller
func (s *CardService) Create(ctx context.Context, identity models.Identity) (*models.Card, error) {
	cardNumber, err := generateCardNumber()
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("failed to generate card number: %v", err),
		}
	}

	card := &models.Card{
		CardNumber: cardNumber,
		CustomerID: identity.CustomerID,
		Balance:    decimal.Zero,
		Status:     models.CardStatusActive,
	}

	if err := s.cards.Create(ctx, card); err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: "failed to create card",
			Err:     err,
		}
	}

	return card, nil
}

// List returns every card owned by the caller
func (s *CardService) List(ctx context.Context, identity models.Identity) ([]models.Card, error) {
	cards, err := s.cards.ListByCustomer(ctx, identity.CustomerID)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: "failed to list cards",
			Err:     err,
		}
	}
	return cards, nil
}

// Get returns a single card after verifying ownership
func (s *CardService) Get(ctx context.Context, identity models.Identity, cardID int64) (*models.Card, error) {
	return s.ownedCard(ctx, identity, cardID)
}

// Balance returns only the card balance after verifying ownership
func (s *CardService) Balance(ctx context.Context, identity models.Identity, cardID int64) (decimal.Decimal, error) {
	if _, err := s.ownedCard(ctx, identity, cardID); err != nil {
		return decimal.Zero, err
	}

	balance, err := s.cards.GetBalance(ctx, cardID)
	if err != nil {
		return decimal.Zero, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: "failed to get card balance",
			Err:     err,
		}
	}
	return balance, nil
}

// Delete hard-deletes a card owned by the caller
func (s *CardService) Delete(ctx context.Context, identity models.Identity, cardID int64) error {
	if _, err := s.ownedCard(ctx, identity, cardID); err != nil {
		return err
	}

	if err := s.cards.Delete(ctx, cardID); err != nil {
		return &ServiceError{
			Code:    ErrCodeInternalError,
			Message: "failed to delete card",
			Err:     err,
		}
	}
	return nil
}

// ownedCard fetches the card and enforces the ownership invariant.
func (s *CardService) ownedCard(ctx context.Context, identity models.Identity, cardID int64) (*models.Card, error) {
	card, err := s.cards.FindByID(ctx, cardID)
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

	return card, nil
}

// generateCardNumber produces a 16-character card number from the
// issuing alphabet using crypto/rand.
func generateCardNumber() (string, error) {
	number := make([]byte, 16)
	max := big.NewInt(int64(len(cardNumberAlphabet)))
	for i := range number {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		number[i] = cardNumberAlphabet[v.Int64()]
	}
	return string(number), nil
}
