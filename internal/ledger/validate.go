package ledger

import (
	"slices"
	"strings"
)

// Validate checks a candidate before it is allowed to become a transaction.
// It has no side effects; the first failing rule is reported.
func Validate(c Candidate) error {
	if !slices.Contains(Categories, c.Category) {
		return &ValidationError{Field: "category", Reason: "must be one of operational, construction, education, social, ramadan, general"}
	}

	if c.Type != TypeIncome && c.Type != TypeExpense {
		return &ValidationError{Field: "type", Reason: "must be income or expense"}
	}

	if c.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	if c.Amount > maxAmount {
		return &ValidationError{Field: "amount", Reason: "is too large"}
	}

	if strings.TrimSpace(c.Description) == "" {
		return &ValidationError{Field: "description", Reason: "is required"}
	}

	if c.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}

	// A date whose month has no valid period could never be summarised.
	if err := PeriodOf(c.Date).Validate(); err != nil {
		return &ValidationError{Field: "date", Reason: "year must be between 1 and 9999"}
	}

	if c.PaymentMethod != "" && !slices.Contains(PaymentMethods, c.PaymentMethod) {
		return &ValidationError{Field: "payment_method", Reason: "must be one of cash, bank_transfer, digital_wallet, other"}
	}

	return nil
}
