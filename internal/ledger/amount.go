package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a user-entered amount into minor units.
// Dots and spaces are thousands separators, a comma starts the decimal part
// ("500.000" -> 500000, "1.250,00" -> 1250). Fractional rupiah are rejected.
// Failures are reported as *ValidationError on the amount field.
func ParseAmount(s string) (int64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "Rp"), "rp")
	clean = strings.NewReplacer(".", "", " ", "", "\u00a0", "").Replace(clean)
	clean = strings.ReplaceAll(clean, ",", ".")

	if clean == "" {
		return 0, &ValidationError{Field: "amount", Reason: "is required"}
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, &ValidationError{Field: "amount", Reason: fmt.Sprintf("%q is not a number", s)}
	}

	if !d.IsInteger() {
		return 0, &ValidationError{Field: "amount", Reason: "must be a whole rupiah amount"}
	}

	if !d.IsPositive() {
		return 0, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	if d.GreaterThan(decimal.NewFromInt(maxAmount)) {
		return 0, &ValidationError{Field: "amount", Reason: "is too large"}
	}

	return d.IntPart(), nil
}

// maxAmount caps a single entry at 10^15 rupiah. It does not bound a month:
// about 9,200 entries at the cap exceed int64, which summary.Fold reports.
const maxAmount = 1_000_000_000_000_000
