package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"moveis-catalog/internal/domain"
	"moveis-catalog/internal/repository"

	"go.uber.org/zap"
)

var ErrUnknownEventType = errors.New("unknown analytics event type")

const (
	// DefaultTopLimit is the length of the "most viewed" lists in a summary.
	DefaultTopLimit = 5
	maxPending      = 10000
)

// Query selects how many entries the ranked lists of a Summary carry.
type Query struct {
	TopProducts int
	TopPages    int
}

// Summary is the dashboard view of the analytics log.
type Summary struct {
	TotalPageViews      int                       `json:"total_page_views"`
	TotalProductViews   int                       `json:"total_product_views"`
	TotalImageViews     int                       `json:"total_image_views"`
	TotalCategoryViews  int                       `json:"total_category_views"`
	TotalWhatsAppClicks int                       `json:"total_whatsapp_clicks"`
	MostViewedProducts  []domain.ProductViewCount `json:"most_viewed_products"`
	MostViewedPages     []domain.PageViewCount    `json:"most_viewed_pages"`
	PendingEvents       int                       `json:"pending_events"`
}

// Tracker records storefront events in memory and persists them in batches.
// Counters reflect both persisted and pending events.
type Tracker struct {
	repo   repository.EventRepository
	logger *zap.Logger
	now    func() time.Time

	// flushMu orders repository writes: Flush and Clear never overlap.
	flushMu sync.Mutex

	mu          sync.Mutex
	initialized bool
	pending     []domain.Event
	totals      map[domain.EventType]int
	products    map[string]*domain.ProductViewCount
	pages       map[string]int
}

func NewTracker(repo repository.EventRepository, logger *zap.Logger) *Tracker {
	t := &Tracker{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	t.reset()
	return t
}

func (t *Tracker) reset() {
	t.totals = make(map[domain.EventType]int)
	t.products = make(map[string]*domain.ProductViewCount)
	t.pages = make(map[string]int)
}

// Init loads the persisted counters. Events recorded before Init are kept.
func (t *Tracker) Init(ctx context.Context) error {
	agg, err := t.repo.Aggregate(ctx)
	if err != nil {
		return fmt.Errorf("failed to load analytics: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for eventType, total := range agg.Totals {
		t.totals[eventType] += total
	}
	for _, c := range agg.Products {
		t.addProductViews(c.ProductID, c.ProductName, c.Views)
	}
	for _, c := range agg.Pages {
		t.pages[c.Path] += c.Views
	}
	t.initialized = true

	t.logger.Info("Analytics tracker initialized",
		zap.Int("page_views", t.totals[domain.EventPageView]),
		zap.Int("product_views", t.totals[domain.EventProductView]),
	)
	return nil
}

func (t *Tracker) addProductViews(productID, productName string, views int) {
	c, ok := t.products[productID]
	if !ok {
		c = &domain.ProductViewCount{ProductID: productID, ProductName: productName}
		t.products[productID] = c
	}
	if c.ProductName == "" {
		c.ProductName = productName
	}
	c.Views += views
}

// Record buffers an event and updates the counters.
func (t *Tracker) Record(e domain.Event) error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, e.Type)
	}
	e.Path = strings.TrimSpace(e.Path)
	if e.OccurredAt.IsZero() {
		e.OccurredAt = t.now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.trimPending(maxPending - 1)
	t.pending = append(t.pending, e)

	t.totals[e.Type]++
	switch e.Type {
	case domain.EventPageView:
		if e.Path != "" {
			t.pages[e.Path]++
		}
	case domain.EventProductView:
		if e.ProductID != "" {
			t.addProductViews(e.ProductID, e.ProductName, 1)
		}
	}
	return nil
}

// trimPending drops the oldest buffered events beyond limit. Counters keep
// them. Callers hold t.mu.
func (t *Tracker) trimPending(limit int) {
	over := len(t.pending) - limit
	if over <= 0 {
		return
	}
	t.logger.Warn("Analytics buffer full, dropping oldest events",
		zap.Int("dropped", over),
		zap.Int("pending", len(t.pending)),
	)
	t.pending = t.pending[over:]
}

// Flush persists the pending events. On failure they stay buffered for the
// next attempt, up to the buffer cap.
func (t *Tracker) Flush(ctx context.Context) error {
	t.flushMu.Lock()
	defer t.flushMu.Unlock()

	t.mu.Lock()
	batch := t.pending
	t.pending = nil
	t.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	if err := t.repo.Append(ctx, batch); err != nil {
		t.mu.Lock()
		t.pending = append(batch, t.pending...)
		t.trimPending(maxPending)
		t.mu.Unlock()
		return fmt.Errorf("failed to flush %d analytics events: %w", len(batch), err)
	}

	t.logger.Debug("Analytics events flushed", zap.Int("count", len(batch)))
	return nil
}

// Summarize returns the totals and the ranked lists. Zero limits fall back
// to DefaultTopLimit.
func (t *Tracker) Summarize(q Query) Summary {
	if q.TopProducts <= 0 {
		q.TopProducts = DefaultTopLimit
	}
	if q.TopPages <= 0 {
		q.TopPages = DefaultTopLimit
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	products := make([]domain.ProductViewCount, 0, len(t.products))
	for _, c := range t.products {
		products = append(products, *c)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Views != products[j].Views {
			return products[i].Views > products[j].Views
		}
		return products[i].ProductID < products[j].ProductID
	})

	pages := make([]domain.PageViewCount, 0, len(t.pages))
	for path, views := range t.pages {
		pages = append(pages, domain.PageViewCount{Path: path, Views: views})
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Views != pages[j].Views {
			return pages[i].Views > pages[j].Views
		}
		return pages[i].Path < pages[j].Path
	})

	return Summary{
		TotalPageViews:      t.totals[domain.EventPageView],
		TotalProductViews:   t.totals[domain.EventProductView],
		TotalImageViews:     t.totals[domain.EventImageView],
		TotalCategoryViews:  t.totals[domain.EventCategoryView],
		TotalWhatsAppClicks: t.totals[domain.EventWhatsAppClick],
		MostViewedProducts:  truncate(products, q.TopProducts),
		MostViewedPages:     truncate(pages, q.TopPages),
		PendingEvents:       len(t.pending),
	}
}

func truncate[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

// PageViews counts page views, for one path or for all when path is empty.
func (t *Tracker) PageViews(path string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if path == "" {
		return t.totals[domain.EventPageView]
	}
	return t.pages[path]
}

// ProductViews counts product views, for one product or for all when productID is empty.
func (t *Tracker) ProductViews(productID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if productID == "" {
		return t.totals[domain.EventProductView]
	}
	if c, ok := t.products[productID]; ok {
		return c.Views
	}
	return 0
}

// Clear drops every stored and pending event.
func (t *Tracker) Clear(ctx context.Context) error {
	t.flushMu.Lock()
	defer t.flushMu.Unlock()

	if err := t.repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear analytics: %w", err)
	}

	t.mu.Lock()
	t.pending = nil
	t.reset()
	t.mu.Unlock()

	t.logger.Info("Analytics events cleared")
	return nil
}

// Initialized reports whether Init has loaded the persisted counters.
func (t *Tracker) Initialized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initialized
}
