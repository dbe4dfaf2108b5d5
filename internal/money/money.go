// Package money converts between decimal amounts and the Brazilian display
// convention: "." groups thousands and "," separates the cents.
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

var plainNumber = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// ParseAmount parses a localized amount such as "2.890,00".
func ParseAmount(display string) (decimal.Decimal, error) {
	s := strings.TrimSpace(display)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}

	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)

	if !plainNumber.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, display)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, display, err)
	}
	return amount, nil
}

// FormatAmount renders value with two fraction digits and thousands groups,
// the inverse of ParseAmount.
func FormatAmount(value decimal.Decimal) string {
	rounded := value.Round(2)
	fixed := rounded.Abs().StringFixed(2)

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)

	return b.String()
}

// MustParse is ParseAmount for literals known to be valid.
func MustParse(display string) decimal.Decimal {
	amount, err := ParseAmount(display)
	if err != nil {
		panic(err)
	}
	return amount
}
