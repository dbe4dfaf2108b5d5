package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"moveis-catalog/internal/domain"
	"moveis-catalog/internal/money"

	"github.com/shopspring/decimal"
)

// Offer is the pricing attached to a resolved product: either Plain or Discounted.
type Offer interface {
	isOffer()
}

// Plain is the offer of a product without an applicable promotion.
type Plain struct{}

// Discounted is the offer of a product with an active promotion.
type Discounted struct {
	Promotion       domain.Promotion
	OriginalPrice   decimal.Decimal
	DiscountedPrice decimal.Decimal
}

func (Plain) isOffer()      {}
func (Discounted) isOffer() {}

// Savings is the difference between the original and discounted price.
func (d Discounted) Savings() decimal.Decimal {
	return Savings(d.OriginalPrice, d.DiscountedPrice)
}

// ResolvedProduct is a product merged with the promotion that applies to it,
// built fresh for every read.
type ResolvedProduct struct {
	domain.Product
	Offer Offer
}

// HasPromotion reports whether the offer is Discounted.
func (r ResolvedProduct) HasPromotion() bool {
	_, ok := r.Offer.(Discounted)
	return ok
}

// Discount returns the discounted offer, if any.
func (r ResolvedProduct) Discount() (Discounted, bool) {
	d, ok := r.Offer.(Discounted)
	return d, ok
}

// PriceToPay is the localized price the customer pays.
func (r ResolvedProduct) PriceToPay() string {
	if d, ok := r.Discount(); ok {
		return money.FormatAmount(d.DiscountedPrice)
	}
	return r.Price
}

type resolvedProductJSON struct {
	domain.Product
	HasPromotion    bool              `json:"has_promotion"`
	OriginalPrice   string            `json:"original_price,omitempty"`
	DiscountedPrice string            `json:"discounted_price,omitempty"`
	Savings         string            `json:"savings,omitempty"`
	Promotion       *domain.Promotion `json:"promotion,omitempty"`
}

// MarshalJSON flattens the offer into has_promotion, original_price,
// discounted_price and promotion.
func (r ResolvedProduct) MarshalJSON() ([]byte, error) {
	out := resolvedProductJSON{Product: r.Product}
	if d, ok := r.Discount(); ok {
		promotion := d.Promotion
		out.HasPromotion = true
		out.OriginalPrice = r.Price
		out.DiscountedPrice = money.FormatAmount(d.DiscountedPrice)
		out.Savings = money.FormatAmount(d.Savings())
		out.Promotion = &promotion
	}
	return json.Marshal(out)
}

// Resolve joins product with the first promotion in promotions that targets
// it and is active at now. Neither argument is modified.
func Resolve(product domain.Product, promotions []domain.Promotion, now time.Time) (ResolvedProduct, error) {
	resolved := ResolvedProduct{Product: product.Clone(), Offer: Plain{}}

	for _, promotion := range promotions {
		if promotion.ProductID != product.ID || !IsActive(promotion, now) {
			continue
		}

		original, err := money.ParseAmount(product.Price)
		if err != nil {
			if errors.Is(err, money.ErrInvalidAmount) {
				return resolved, domain.NewValidationError("price", fmt.Sprintf("product %s has invalid price %q", product.ID, product.Price))
			}
			return resolved, err
		}

		discounted := ApplyDiscount(original, promotion.DiscountPercentage)
		if _, err := CheckSavings(original, discounted); err != nil {
			return resolved, fmt.Errorf("product %s, promotion %s: %w", product.ID, promotion.ID, err)
		}

		resolved.Offer = Discounted{
			Promotion:       promotion,
			OriginalPrice:   original,
			DiscountedPrice: discounted,
		}
		return resolved, nil
	}

	return resolved, nil
}

// ResolveAll resolves every product. Products that fail fall back to Plain
// pricing; their errors are joined into the returned error.
func ResolveAll(products []domain.Product, promotions []domain.Promotion, now time.Time) ([]ResolvedProduct, error) {
	resolved := make([]ResolvedProduct, 0, len(products))
	var errs []error

	for _, product := range products {
		r, err := Resolve(product, promotions, now)
		if err != nil {
			errs = append(errs, err)
			r.Offer = Plain{}
		}
		resolved = append(resolved, r)
	}

	return resolved, errors.Join(errs...)
}
