package validation

// TransferInput is the raw request body for a card-to-card transfer.
// The transfer is recorded as a TransferOut leg on the source card
// and a linked TransferIn leg on the destination card.
type TransferInput struct {
	FromCardID  string `json:"fromCardId"`
	ToCardID    string `json:"toCardId"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// ValidateTransferInput runs every field validator and merges the
// violations, mirroring ValidateTransactionInput.
func ValidateTransferInput(in TransferInput) Result {
	var errs []FieldError

	errs = append(errs, validateCardIDField("FromCardID", in.FromCardID).Errors...)
	errs = append(errs, validateCardIDField("ToCardID", in.ToCardID).Errors...)
	errs = append(errs, ValidateAmount(in.Amount).Errors...)

	if in.Description != "" {
		errs = append(errs, ValidateDescription(in.Description).Errors...)
	}

	return result("Transfer input validation", errs)
}
