package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"moveis-catalog/internal/domain"
)

var (
	ErrPromotionNotFound = errors.New("promotion not found")
	// ErrPromotionProductMissing is returned when a promotion targets a product that does not exist.
	ErrPromotionProductMissing = errors.New("promotion references an unknown product")
)

// PromotionRepository defines the interface for promotion data access.
// Every list is ordered newest first, which is the order the pricing core
// uses to pick between overlapping promotions.
type PromotionRepository interface {
	Create(ctx context.Context, promotion *domain.Promotion) error
	Update(ctx context.Context, promotion *domain.Promotion) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Promotion, error)
	List(ctx context.Context) ([]domain.Promotion, error)
	ListEnabled(ctx context.Context) ([]domain.Promotion, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Promotion, error)
}

type promotionRepository struct {
	db *sql.DB
}

func NewPromotionRepository(db *sql.DB) PromotionRepository {
	return &promotionRepository{db: db}
}

const promotionColumns = `id, product_id, discount_percentage, start_date, end_date, is_active, created_at`

func scanPromotion(row rowScanner) (domain.Promotion, error) {
	var p domain.Promotion
	err := row.Scan(
		&p.ID,
		&p.ProductID,
		&p.DiscountPercentage,
		&p.StartDate,
		&p.EndDate,
		&p.IsActive,
		&p.CreatedAt,
	)
	return p, err
}

func (r *promotionRepository) Create(ctx context.Context, promotion *domain.Promotion) error {
	query := `
		INSERT INTO promotions (` + promotionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		promotion.ID,
		promotion.ProductID,
		promotion.DiscountPercentage,
		promotion.StartDate,
		promotion.EndDate,
		promotion.IsActive,
		promotion.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrPromotionProductMissing
		}
		return fmt.Errorf("failed to create promotion: %w", err)
	}

	return nil
}

func (r *promotionRepository) Update(ctx context.Context, promotion *domain.Promotion) error {
	query := `
		UPDATE promotions
		SET product_id = $2, discount_percentage = $3, start_date = $4, end_date = $5, is_active = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		promotion.ID,
		promotion.ProductID,
		promotion.DiscountPercentage,
		promotion.StartDate,
		promotion.EndDate,
		promotion.IsActive,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrPromotionProductMissing
		}
		return fmt.Errorf("failed to update promotion: %w", err)
	}

	return expectAffected(result, ErrPromotionNotFound)
}

func (r *promotionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete promotion: %w", err)
	}

	return expectAffected(result, ErrPromotionNotFound)
}

func (r *promotionRepository) FindByID(ctx context.Context, id string) (*domain.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE id = $1`

	promotion, err := scanPromotion(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPromotionNotFound
		}
		return nil, fmt.Errorf("failed to find promotion by ID: %w", err)
	}

	return &promotion, nil
}

func (r *promotionRepository) List(ctx context.Context) ([]domain.Promotion, error) {
	return r.query(ctx, `SELECT `+promotionColumns+` FROM promotions ORDER BY created_at DESC, id`)
}

// ListEnabled returns promotions whose admin switch is on, regardless of their window.
func (r *promotionRepository) ListEnabled(ctx context.Context) ([]domain.Promotion, error) {
	return r.query(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE is_active ORDER BY created_at DESC, id`)
}

func (r *promotionRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE product_id = $1 ORDER BY created_at DESC, id`
	return r.query(ctx, query, productID)
}

func (r *promotionRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Promotion, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	defer rows.Close()

	promotions := []domain.Promotion{}
	for rows.Next() {
		promotion, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promotion: %w", err)
		}
		promotions = append(promotions, promotion)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating promotions: %w", err)
	}

	return promotions, nil
}
