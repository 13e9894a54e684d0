package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"trkart/internal/models"
	"trkart/internal/validation"
)

type transactionView struct {
	CreatedAt     time.Time       `json:"createdAt"`
	Type          string          `json:"transactionType"`
	Status        string          `json:"status"`
	Description   string          `json:"description,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	CounterpartID *int64          `json:"counterpartTransactionId,omitempty"`
	ID            int64           `json:"transactionId"`
	CardID        int64           `json:"cardId"`
}

func newTransactionView(txn *models.Transaction) transactionView {
	return transactionView{
		ID:            txn.ID,
		CardID:        txn.CardID,
		Amount:        txn.Amount,
		Type:          string(txn.Type),
		Status:        string(txn.Status),
		Description:   txn.Description,
		CounterpartID: txn.CounterpartID,
		CreatedAt:     txn.CreatedAt,
	}
}

func newTransactionViews(txns []models.Transaction) []transactionView {
	views := make([]transactionView, len(txns))
	for i := range txns {
		views[i] = newTransactionView(&txns[i])
	}
	return views
}

// CreateTransaction handles POST /api/v1/transactions
func (h *Handler) CreateTransaction(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var in validation.TransactionInput
	if !bindJSON(c, &in) {
		return
	}

	txn, err := h.transactionService.Create(c.Request.Context(), identity, in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Transaction completed successfully", newTransactionView(txn))
}

// CheckFeasibility handles POST /api/v1/transactions/check-feasibility.
// The evaluation is read-only; an infeasible transaction is a valid
// answer, not an error.
func (h *Handler) CheckFeasibility(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var in validation.TransactionInput
	if !bindJSON(c, &in) {
		return
	}

	feas, err := h.feasibilityService.Check(c.Request.Context(), identity, in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", feas)
}

// ListTransactions handles GET /api/v1/transactions, returning every
// transaction across the caller's cards.
func (h *Handler) ListTransactions(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	txns, err := h.transactionService.ListByCustomer(c.Request.Context(), identity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", newTransactionViews(txns))
}

// CreateTransfer handles POST /api/v1/transfers
func (h *Handler) CreateTransfer(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var in validation.TransferInput
	if !bindJSON(c, &in) {
		return
	}

	outLeg, err := h.transactionService.Transfer(c.Request.Context(), identity, in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Transfer completed successfully", newTransactionView(outLeg))
}
