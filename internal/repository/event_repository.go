package repository

import (
	"context"
	"database/sql"
	"fmt"

	"moveis-catalog/internal/domain"
)

// EventRepository persists storefront analytics events.
type EventRepository interface {
	Append(ctx context.Context, events []domain.Event) error
	Aggregate(ctx context.Context) (*domain.EventAggregate, error)
	DeleteAll(ctx context.Context) error
}

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

// Append inserts events in a single transaction; either all are stored or none.
func (r *eventRepository) Append(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO analytics_events (event_type, path, product_id, product_name, category, image_url, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, string(e.Type), e.Path, e.ProductID, e.ProductName, e.Category, e.ImageURL, e.OccurredAt); err != nil {
			return fmt.Errorf("failed to insert %s event: %w", e.Type, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	return nil
}

// Aggregate folds the stored log into totals per type, product views per
// product and page views per path. Lists are ordered by views, highest first.
func (r *eventRepository) Aggregate(ctx context.Context) (*domain.EventAggregate, error) {
	agg := &domain.EventAggregate{
		Totals:   make(map[domain.EventType]int),
		Products: []domain.ProductViewCount{},
		Pages:    []domain.PageViewCount{},
	}

	rows, err := r.db.QueryContext(ctx, `SELECT event_type, COUNT(*) FROM analytics_events GROUP BY event_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	for rows.Next() {
		var eventType string
		var total int
		if err := rows.Scan(&eventType, &total); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan event total: %w", err)
		}
		agg.Totals[domain.EventType(eventType)] = total
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event totals: %w", err)
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT product_id, MAX(product_name), COUNT(*) AS views
		FROM analytics_events
		WHERE event_type = $1 AND product_id <> ''
		GROUP BY product_id
		ORDER BY views DESC, product_id
	`, string(domain.EventProductView))
	if err != nil {
		return nil, fmt.Errorf("failed to count product views: %w", err)
	}
	for rows.Next() {
		var c domain.ProductViewCount
		if err := rows.Scan(&c.ProductID, &c.ProductName, &c.Views); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan product views: %w", err)
		}
		agg.Products = append(agg.Products, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product views: %w", err)
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS views
		FROM analytics_events
		WHERE event_type = $1 AND path <> ''
		GROUP BY path
		ORDER BY views DESC, path
	`, string(domain.EventPageView))
	if err != nil {
		return nil, fmt.Errorf("failed to count page views: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c domain.PageViewCount
		if err := rows.Scan(&c.Path, &c.Views); err != nil {
			return nil, fmt.Errorf("failed to scan page views: %w", err)
		}
		agg.Pages = append(agg.Pages, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating page views: %w", err)
	}

	return agg, nil
}

func (r *eventRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM analytics_events`); err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}
	return nil
}
