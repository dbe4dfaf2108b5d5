package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"moveis-catalog/internal/money"
)

// Categories is the fixed set of catalog sections, in display order.
var Categories = []string{"Sofás", "Mesas", "Camas", "Racks", "Guarda-roupas"}

// IsCategory reports whether name is one of Categories.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Dimensions holds free-text measurements with their units embedded ("180cm", "65kg").
type Dimensions struct {
	Width  string `json:"width"`
	Depth  string `json:"depth"`
	Height string `json:"height"`
	Weight string `json:"weight"`
}

// Value stores dimensions as a JSONB document.
func (d Dimensions) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan reads dimensions from a JSONB column.
func (d *Dimensions) Scan(src interface{}) error {
	return scanJSON(src, d)
}

// StringList is an ordered list of strings stored as a JSONB array.
type StringList []string

// Value stores the list as JSON, never as null.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Scan reads the list from a JSONB column.
func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, (*[]string)(l))
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}

// Product represents a piece of furniture in the catalog.
// Price is kept in its localized display form ("2.890,00").
type Product struct {
	ID                  string     `json:"id" db:"id"`
	Name                string     `json:"name" db:"name"`
	Description         string     `json:"description" db:"description"`
	DetailedDescription string     `json:"detailed_description" db:"detailed_description"`
	Category            string     `json:"category" db:"category"`
	Price               string     `json:"price" db:"price"`
	Materials           StringList `json:"materials" db:"materials"`
	Features            StringList `json:"features" db:"features"`
	Dimensions          Dimensions `json:"dimensions" db:"dimensions"`
	Images              StringList `json:"images" db:"images"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// Validate checks the invariants a product must satisfy before it is stored.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	if !IsCategory(p.Category) {
		return NewValidationError("category", fmt.Sprintf("unknown category %q", p.Category))
	}
	amount, err := money.ParseAmount(p.Price)
	if err != nil {
		if errors.Is(err, money.ErrInvalidAmount) {
			return NewValidationError("price", fmt.Sprintf("invalid price %q", p.Price))
		}
		return err
	}
	if amount.IsNegative() {
		return NewValidationError("price", "price must not be negative")
	}
	return nil
}

// Clone returns a deep copy so callers can hand the product out without sharing slices.
func (p Product) Clone() Product {
	c := p
	c.Materials = cloneList(p.Materials)
	c.Features = cloneList(p.Features)
	c.Images = cloneList(p.Images)
	return c
}

func cloneList(l StringList) StringList {
	if l == nil {
		return nil
	}
	out := make(StringList, len(l))
	copy(out, l)
	return out
}
