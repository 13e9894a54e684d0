// Package validation checks the syntactic validity of transaction
// input. All functions are pure: every rule is evaluated independently,
// every violation is collected, and nothing is read from or written to
// any store.
package validation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"trkart/internal/models"
)

// TransactionInput is the raw, unparsed request body for creating or
// previewing a transaction. Fields stay strings so violations can be
// reported against the exact bytes the caller sent.
type TransactionInput struct {
	CardID          string `json:"cardId"`
	Amount          string `json:"amount"`
	TransactionType string `json:"transactionType"`
	Description     string `json:"description"`
}

// FieldError describes a single rule violation on one field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"error"`
	Value  string `json:"value"`
}

// Result aggregates the outcome of validating one or more fields.
type Result struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
	Valid   bool         `json:"isValid"`
}

// maxAmount is the inclusive upper bound for a single transaction.
var maxAmount = decimal.RequireFromString("999999.99")

var (
	digitsOnly      = regexp.MustCompile(`^[0-9]+$`)
	amountCharset   = regexp.MustCompile(`^[0-9.-]+$`)
	lettersOnly     = regexp.MustCompile(`^[a-zA-Z]+$`)
	descCharset     = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.,!?()]*$`)
	nonDigits       = regexp.MustCompile(`[^0-9]`)
	nonAmountChars  = regexp.MustCompile(`[^0-9.-]`)
	nonLetters      = regexp.MustCompile(`[^a-zA-Z]`)
	nonDescChars    = regexp.MustCompile(`[^a-zA-Z0-9\s\-_.,!?()]`)
	maxDescription  = 500
)

// ValidateTransactionInput runs every field validator and merges the
// violations. A request is valid only when all fields are.
func ValidateTransactionInput(in TransactionInput) Result {
	var errs []FieldError

	errs = append(errs, ValidateCardID(in.CardID).Errors...)
	errs = append(errs, ValidateAmount(in.Amount).Errors...)
	errs = append(errs, ValidateTransactionType(in.TransactionType).Errors...)

	if in.Description != "" {
		errs = append(errs, ValidateDescription(in.Description).Errors...)
	}

	return result("Input validation", errs)
}

// ValidateCardID checks that the raw card id is digits only and parses
// to a positive integer.
func ValidateCardID(raw string) Result {
	return validateCardIDField("CardID", raw)
}

func validateCardIDField(field, raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return result(field+" validation", []FieldError{
			{Field: field, Reason: field + " cannot be empty", Value: raw},
		})
	}

	var errs []FieldError

	if !digitsOnly.MatchString(raw) {
		errs = append(errs, FieldError{
			Field:  field,
			Reason: field + " contains invalid characters: " + distinctChars(nonDigits, raw),
			Value:  raw,
		})
	}

	if id, err := strconv.ParseInt(raw, 10, 64); err != nil {
		errs = append(errs, FieldError{
			Field:  field,
			Reason: field + " is not a valid integer",
			Value:  raw,
		})
	} else if id <= 0 {
		errs = append(errs, FieldError{
			Field:  field,
			Reason: field + " must be a positive number",
			Value:  raw,
		})
	}

	return result(field+" validation", errs)
}

// ValidateAmount checks the amount string: charset, at most one decimal
// point, at most one leading minus, at most two decimal places, and a
// parsed value in (0, 999999.99].
func ValidateAmount(raw string) Result {
	const field = "Amount"

	if strings.TrimSpace(raw) == "" {
		return result(field+" validation", []FieldError{
			{Field: field, Reason: "Amount cannot be empty", Value: raw},
		})
	}

	var errs []FieldError

	if !amountCharset.MatchString(raw) {
		errs = append(errs, FieldError{
			Field:  field,
			Reason: "Amount contains invalid characters: " + distinctChars(nonAmountChars, raw),
			Value:  raw,
		})
	}

	if strings.Count(raw, ".") > 1 {
		errs = append(errs, FieldError{
			Field:  field,
			Reason: "Amount cannot contain multiple decimal points",
			Value:  raw,
		})
	}

	if strings.Count(raw, "-") > 1 {
		errs = append(errs, FieldError{
			Field:  field,
			Reason: "Amount cannot contain multiple minus signs",
			Value:  raw,
		})
	}

	if strings.Contains(raw, "-") && !strings.HasPrefix(raw, "-") {
		errs = append(errs, FieldError{
			Field:  field,
			Reason: "Minus sign must be at the beginning of the amount",
			Value:  raw,
		})
	}

	if dot := strings.Index(raw, "."); dot >= 0 && strings.Count(raw, ".") == 1 {
		if len(raw)-dot-1 > 2 {
			errs = append(errs, FieldError{
				Field:  field,
				Reason: "Amount cannot have more than 2 decimal places",
				Value:  raw,
			})
		}
	}

	if amount, err := decimal.NewFromString(raw); err != nil {
		errs = append(errs, FieldError{
			Field:  field,
			Reason: "Amount is not a valid decimal number",
			Value:  raw,
		})
	} else if !amount.IsPositive() {
		errs = append(errs, FieldError{
			Field:  field,
			Reason: "Amount must be greater than zero",
			Value:  raw,
		})
	} else if amount.GreaterThan(maxAmount) {
		errs = append(errs, FieldError{
			Field:  field,
			Reason: "Amount cannot exceed 999,999.99",
			Value:  raw,
		})
	}

	return result(field+" validation", errs)
}

// ValidateTransactionType checks the type is letters only and a
// case-insensitive member of the closed transaction type set.
func ValidateTransactionType(raw string) Result {
	const field = "TransactionType"

	if strings.TrimSpace(raw) == "" {
		return result(field+" validation", []FieldError{
			{Field: field, Reason: "TransactionType cannot be empty", Value: raw},
		})
	}

	var errs []FieldError

	if !lettersOnly.MatchString(raw) {
		errs = append(errs, FieldError{
			Field:  field,
			Reason: "TransactionType contains invalid characters: " + distinctChars(nonLetters, raw),
			Value:  raw,
		})
	}

	if _, ok := models.ParseTransactionType(raw); !ok {
		names := make([]string, len(models.TransactionTypes))
		for i, t := range models.TransactionTypes {
			names[i] = string(t)
		}
		errs = append(errs, FieldError{
			Field:  field,
			Reason: "TransactionType must be one of: " + strings.Join(names, ", "),
			Value:  raw,
		})
	}

	return result(field+" validation", errs)
}

// ValidateDescription checks the optional description: length and the
// letters/digits/whitespace/basic punctuation allow-list.
func ValidateDescription(raw string) Result {
	const field = "Description"

	var errs []FieldError

	if len(raw) > maxDescription {
		errs = append(errs, FieldError{
			Field:  field,
			Reason: "Description cannot exceed 500 characters",
			Value:  raw,
		})
	}

	if !descCharset.MatchString(raw) {
		errs = append(errs, FieldError{
			Field:  field,
			Reason: "Description contains invalid characters: " + distinctChars(nonDescChars, raw),
			Value:  raw,
		})
	}

	return result(field+" validation", errs)
}

func result(what string, errs []FieldError) Result {
	if len(errs) > 0 {
		return Result{Valid: false, Errors: errs, Message: what + " failed"}
	}
	return Result{Valid: true, Message: what + " passed"}
}

// distinctChars lists each offending character once, comma separated,
// in order of first appearance.
func distinctChars(re *regexp.Regexp, raw string) string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range re.FindAllString(raw, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return strings.Join(out, ", ")
}
