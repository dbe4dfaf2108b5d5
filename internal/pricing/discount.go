package pricing

import (
	"fmt"
	"time"

	"moveis-catalog/internal/domain"

	"github.com/shopspring/decimal"
)

// IsActive reports whether the promotion applies at now. Both window bounds
// are inclusive; a window whose end precedes its start is never active.
func IsActive(p domain.Promotion, now time.Time) bool {
	return p.IsActive && !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// ApplyDiscount returns basePrice reduced by percentage percent.
// Callers validate the percentage range.
func ApplyDiscount(basePrice decimal.Decimal, percentage int) decimal.Decimal {
	return basePrice.Mul(decimal.NewFromInt(int64(100 - percentage))).Shift(-2)
}

// Savings is the amount a customer saves, used for "you save R$X" displays.
func Savings(basePrice, discountedPrice decimal.Decimal) decimal.Decimal {
	return basePrice.Sub(discountedPrice)
}

// CheckSavings returns the savings, or ErrDataInconsistency when they are negative.
func CheckSavings(basePrice, discountedPrice decimal.Decimal) (decimal.Decimal, error) {
	saved := Savings(basePrice, discountedPrice)
	if saved.IsNegative() {
		return saved, fmt.Errorf("%w: discounted price %s exceeds original %s", ErrDataInconsistency, discountedPrice, basePrice)
	}
	return saved, nil
}
