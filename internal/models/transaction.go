package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the closed set of balance-affecting operations.
// Transfers are recorded as two linked legs, one per card.
type TransactionType string

const (
	TransactionTypePay         TransactionType = "Pay"
	TransactionTypeLoad        TransactionType = "Load"
	TransactionTypeRefund      TransactionType = "Refund"
	TransactionTypeTransferIn  TransactionType = "TransferIn"
	TransactionTypeTransferOut TransactionType = "TransferOut"
)

// TransactionTypes lists every valid type, in the order shown to users.
var TransactionTypes = []TransactionType{
	TransactionTypePay,
	TransactionTypeLoad,
	TransactionTypeRefund,
	TransactionTypeTransferIn,
	TransactionTypeTransferOut,
}

// ParseTransactionType matches a raw string against the closed set,
// case-insensitively. The bool result is false for anything outside it.
func ParseTransactionType(raw string) (TransactionType, bool) {
	for _, t := range TransactionTypes {
		if strings.EqualFold(raw, string(t)) {
			return t, true
		}
	}
	return "", false
}

// Direction is the debit/credit classification of a transaction type
type Direction int

const (
	DirectionDebit Direction = iota
	DirectionCredit
)

// Direction classifies the type as a debit or credit. The switch is
// exhaustive over the closed set; a TransactionType constructed any
// other way than ParseTransactionType is a programming error.
func (t TransactionType) Direction() Direction {
	switch t {
	case TransactionTypePay, TransactionTypeTransferOut:
		return DirectionDebit
	case TransactionTypeLoad, TransactionTypeRefund, TransactionTypeTransferIn:
		return DirectionCredit
	}
	panic(fmt.Sprintf("models: unknown transaction type %q", string(t)))
}

// SignedAmount applies the type's direction to a positive amount.
// Both the feasibility evaluator and the commit path sign amounts
// through this single function, so the two can never disagree.
func (t TransactionType) SignedAmount(amount decimal.Decimal) decimal.Decimal {
	if t.Direction() == DirectionDebit {
		return amount.Neg()
	}
	return amount
}

// TransactionStatus represents the settlement status of a transaction
type TransactionStatus string

// TransactionStatusCompleted is the only status currently issued;
// transactions settle immediately against the card balance.
const TransactionStatusCompleted TransactionStatus = "Completed"

// Transaction is an immutable ledger entry against a card. There are
// no update or delete paths; corrections are new transactions.
type Transaction struct {
	CreatedAt     time.Time         `db:"created_at"`
	Type          TransactionType   `db:"transaction_type"`
	Status        TransactionStatus `db:"status"`
	Description   string            `db:"description"`
	Amount        decimal.Decimal   `db:"amount"`
	CounterpartID *int64            `db:"counterpart_id"`
	ID            int64             `db:"transaction_id"`
	CardID        int64             `db:"card_id"`
}
