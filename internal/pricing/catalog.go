package pricing

import (
	"errors"
	"time"

	"moveis-catalog/internal/domain"
)

// ListResolvedByCategory buckets resolved products by category. Every category
// gets a key, even with no products, and products keep their input order.
// The map is always complete; err joins the resolution failures of products
// that fell back to plain pricing.
func ListResolvedByCategory(products []domain.Product, promotions []domain.Promotion, categories []string, now time.Time) (map[string][]ResolvedProduct, error) {
	byCategory := make(map[string][]ResolvedProduct, len(categories))
	for _, category := range categories {
		byCategory[category] = []ResolvedProduct{}
	}

	var errs []error
	for _, product := range products {
		bucket, ok := byCategory[product.Category]
		if !ok {
			continue
		}

		resolved, err := Resolve(product, promotions, now)
		if err != nil {
			errs = append(errs, err)
			resolved.Offer = Plain{}
		}
		byCategory[product.Category] = append(bucket, resolved)
	}

	return byCategory, errors.Join(errs...)
}

// Section is one category of the storefront, in display order.
type Section struct {
	Category string            `json:"category"`
	Products []ResolvedProduct `json:"products"`
}

// Sections orders byCategory following categories.
func Sections(byCategory map[string][]ResolvedProduct, categories []string) []Section {
	sections := make([]Section, 0, len(categories))
	for _, category := range categories {
		products := byCategory[category]
		if products == nil {
			products = []ResolvedProduct{}
		}
		sections = append(sections, Section{Category: category, Products: products})
	}
	return sections
}
