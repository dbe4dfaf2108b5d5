package domain

import (
	"strings"
	"time"
)

const (
	MinDiscountPercentage = 1
	MaxDiscountPercentage = 99
)

// Promotion is a percentage discount on one product during a time window.
// IsActive is an admin switch independent of the window.
type Promotion struct {
	ID                 string    `json:"id" db:"id"`
	ProductID          string    `json:"product_id" db:"product_id"`
	DiscountPercentage int       `json:"discount_percentage" db:"discount_percentage"`
	StartDate          time.Time `json:"start_date" db:"start_date"`
	EndDate            time.Time `json:"end_date" db:"end_date"`
	IsActive           bool      `json:"is_active" db:"is_active"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// Validate rejects promotions that can never be applied correctly.
func (p *Promotion) Validate() error {
	if strings.TrimSpace(p.ProductID) == "" {
		return NewValidationError("product_id", "product_id is required")
	}
	if p.DiscountPercentage < MinDiscountPercentage || p.DiscountPercentage > MaxDiscountPercentage {
		return NewValidationError("discount_percentage", "discount percentage must be between 1 and 99")
	}
	if p.EndDate.Before(p.StartDate) {
		return NewValidationError("end_date", "end date must not be before start date")
	}
	return nil
}
