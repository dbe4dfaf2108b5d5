package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moveis-catalog/internal/domain"
	"moveis-catalog/internal/pricing"
	"moveis-catalog/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PromotionService interface {
	List(ctx context.Context) ([]domain.Promotion, error)
	Get(ctx context.Context, id string) (*domain.Promotion, error)
	Create(ctx context.Context, promotion *domain.Promotion) error
	Update(ctx context.Context, promotion *domain.Promotion) error
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context, now time.Time) ([]domain.Promotion, error)
}

type promotionService struct {
	promotionRepo repository.PromotionRepository
	productRepo   repository.ProductRepository
	logger        *zap.Logger
	now           func() time.Time
}

func NewPromotionService(
	promotionRepo repository.PromotionRepository,
	productRepo repository.ProductRepository,
	logger *zap.Logger,
) PromotionService {
	return &promotionService{
		promotionRepo: promotionRepo,
		productRepo:   productRepo,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *promotionService) List(ctx context.Context) ([]domain.Promotion, error) {
	return s.promotionRepo.List(ctx)
}

func (s *promotionService) Get(ctx context.Context, id string) (*domain.Promotion, error) {
	return s.promotionRepo.FindByID(ctx, id)
}

// checkProduct rejects promotions on products that do not exist.
func (s *promotionService) checkProduct(ctx context.Context, productID string) error {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return domain.NewValidationError("product_id", fmt.Sprintf("product %s does not exist", productID))
		}
		return err
	}
	return nil
}

func (s *promotionService) Create(ctx context.Context, promotion *domain.Promotion) error {
	if err := promotion.Validate(); err != nil {
		return err
	}
	if err := s.checkProduct(ctx, promotion.ProductID); err != nil {
		return err
	}

	promotion.ID = uuid.NewString()
	promotion.CreatedAt = s.now()

	if err := s.promotionRepo.Create(ctx, promotion); err != nil {
		return err
	}

	s.logger.Info("Promotion created",
		zap.String("promotion_id", promotion.ID),
		zap.String("product_id", promotion.ProductID),
		zap.Int("discount_percentage", promotion.DiscountPercentage),
	)
	return nil
}

func (s *promotionService) Update(ctx context.Context, promotion *domain.Promotion) error {
	if err := promotion.Validate(); err != nil {
		return err
	}

	existing, err := s.promotionRepo.FindByID(ctx, promotion.ID)
	if err != nil {
		return err
	}
	if existing.ProductID != promotion.ProductID {
		if err := s.checkProduct(ctx, promotion.ProductID); err != nil {
			return err
		}
	}
	promotion.CreatedAt = existing.CreatedAt

	if err := s.promotionRepo.Update(ctx, promotion); err != nil {
		return err
	}

	s.logger.Info("Promotion updated", zap.String("promotion_id", promotion.ID))
	return nil
}

func (s *promotionService) Delete(ctx context.Context, id string) error {
	if err := s.promotionRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Promotion deleted", zap.String("promotion_id", id))
	return nil
}

// ListActive returns the promotions applicable at now, newest first.
func (s *promotionService) ListActive(ctx context.Context, now time.Time) ([]domain.Promotion, error) {
	enabled, err := s.promotionRepo.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]domain.Promotion, 0, len(enabled))
	for _, p := range enabled {
		if pricing.IsActive(p, now) {
			active = append(active, p)
		}
	}
	return active, nil
}
