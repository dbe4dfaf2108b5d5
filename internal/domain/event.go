package domain

import "time"

// EventType names a storefront interaction.
type EventType string

const (
	EventPageView      EventType = "page_view"
	EventProductView   EventType = "product_view"
	EventImageView     EventType = "image_view"
	EventCategoryView  EventType = "category_view"
	EventWhatsAppClick EventType = "whatsapp_click"
)

// EventTypes lists every recognised event type.
var EventTypes = []EventType{EventPageView, EventProductView, EventImageView, EventCategoryView, EventWhatsAppClick}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Event is one recorded storefront interaction.
type Event struct {
	Type        EventType `json:"type" db:"event_type"`
	Path        string    `json:"path,omitempty" db:"path"`
	ProductID   string    `json:"product_id,omitempty" db:"product_id"`
	ProductName string    `json:"product_name,omitempty" db:"product_name"`
	Category    string    `json:"category,omitempty" db:"category"`
	ImageURL    string    `json:"image_url,omitempty" db:"image_url"`
	OccurredAt  time.Time `json:"occurred_at" db:"occurred_at"`
}

// EventAggregate is the persisted state of the analytics log, folded into counters.
type EventAggregate struct {
	Totals   map[EventType]int
	Products []ProductViewCount
	Pages    []PageViewCount
}

// ProductViewCount counts product_view events for one product.
type ProductViewCount struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Views       int    `json:"views"`
}

// PageViewCount counts page_view events for one path.
type PageViewCount struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}
