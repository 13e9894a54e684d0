package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"trkart/internal/models"
)

type cardView struct {
	CreatedAt  time.Time       `json:"createdAt"`
	CardNumber string          `json:"cardNumber"`
	Status     string          `json:"status"`
	Balance    decimal.Decimal `json:"balance"`
	ID         int64           `json:"cardId"`
}

func newCardView(card *models.Card) cardView {
	return cardView{
		ID:         card.ID,
		CardNumber: card.CardNumber,
		Balance:    card.Balance,
		Status:     string(card.Status),
		CreatedAt:  card.CreatedAt,
	}
}

// CreateCard handles POST /api/v1/cards
func (h *Handler) CreateCard(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	card, err := h.cardService.Create(c.Request.Context(), identity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Card created successfully", newCardView(card))
}

// ListCards handles GET /api/v1/cards
func (h *Handler) ListCards(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	cards, err := h.cardService.List(c.Request.Context(), identity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	views := make([]cardView, len(cards))
	for i := range cards {
		views[i] = newCardView(&cards[i])
	}
	respondOK(c, http.StatusOK, "", views)
}

// GetCard handles GET /api/v1/cards/:cardId
func (h *Handler) GetCard(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	cardID, ok := pathCardID(c)
	if !ok {
		return
	}

	card, err := h.cardService.Get(c.Request.Context(), identity, cardID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", newCardView(card))
}

// GetCardBalance handles GET /api/v1/cards/:cardId/balance
func (h *Handler) GetCardBalance(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	cardID, ok := pathCardID(c)
	if !ok {
		return
	}

	balance, err := h.cardService.Balance(c.Request.Context(), identity, cardID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", gin.H{
		"cardId":  cardID,
		"balance": balance,
	})
}

// DeleteCard handles DELETE /api/v1/cards/:cardId
func (h *Handler) DeleteCard(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	cardID, ok := pathCardID(c)
	if !ok {
		return
	}

	if err := h.cardService.Delete(c.Request.Context(), identity, cardID); err != nil {
		h.respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Card deleted successfully", nil)
}

// ListCardTransactions handles GET /api/v1/cards/:cardId/transactions
func (h *Handler) ListCardTransactions(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	cardID, ok := pathCardID(c)
	if !ok {
		return
	}

	txns, err := h.transactionService.ListByCard(c.Request.Context(), identity, cardID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", newTransactionViews(txns))
}
