package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moveis-catalog/internal/domain"
	"moveis-catalog/internal/pricing"
	"moveis-catalog/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CatalogService serves the storefront: products merged with their active
// promotion at request time.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]pricing.ResolvedProduct, error)
	ListByCategory(ctx context.Context) ([]pricing.Section, error)
	ProductsInCategory(ctx context.Context, category string) ([]pricing.ResolvedProduct, error)
	GetProduct(ctx context.Context, id string) (*pricing.ResolvedProduct, error)
	Categories() []string
}

type catalogService struct {
	productRepo   repository.ProductRepository
	promotionRepo repository.PromotionRepository
	categories    []string
	logger        *zap.Logger
	now           func() time.Time
}

// NewCatalogService creates a catalog showing categories in the given order.
// Names outside the fixed category set are ignored; an empty list means all.
func NewCatalogService(
	productRepo repository.ProductRepository,
	promotionRepo repository.PromotionRepository,
	categories []string,
	logger *zap.Logger,
) CatalogService {
	ordered := make([]string, 0, len(domain.Categories))
	for _, c := range categories {
		if !domain.IsCategory(c) {
			logger.Warn("Ignoring unknown category in display order", zap.String("category", c))
			continue
		}
		ordered = append(ordered, c)
	}
	if len(ordered) == 0 {
		ordered = append(ordered, domain.Categories...)
	}

	return &catalogService{
		productRepo:   productRepo,
		promotionRepo: promotionRepo,
		categories:    ordered,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *catalogService) Categories() []string {
	return append([]string(nil), s.categories...)
}

// fetch loads products and enabled promotions concurrently. A failure of
// either is reported as a *pricing.FetchError.
func (s *catalogService) fetch(ctx context.Context, category string) ([]domain.Product, []domain.Promotion, error) {
	var (
		products   []domain.Product
		promotions []domain.Promotion
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if category == "" {
			products, err = s.productRepo.List(gctx)
		} else {
			products, err = s.productRepo.ListByCategory(gctx, category)
		}
		if err != nil {
			return &pricing.FetchError{Source: "products", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		promotions, err = s.promotionRepo.ListEnabled(gctx)
		if err != nil {
			return &pricing.FetchError{Source: "promotions", Err: err}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return products, promotions, nil
}

// logDegraded reports products that fell back to their plain price.
func (s *catalogService) logDegraded(err error) {
	if err != nil {
		s.logger.Warn("Some products were served without their promotion", zap.Error(err))
	}
}

func (s *catalogService) ListProducts(ctx context.Context) ([]pricing.ResolvedProduct, error) {
	products, promotions, err := s.fetch(ctx, "")
	if err != nil {
		return nil, err
	}

	resolved, err := pricing.ResolveAll(products, promotions, s.now())
	s.logDegraded(err)
	return resolved, nil
}

func (s *catalogService) ListByCategory(ctx context.Context) ([]pricing.Section, error) {
	products, promotions, err := s.fetch(ctx, "")
	if err != nil {
		return nil, err
	}

	byCategory, err := pricing.ListResolvedByCategory(products, promotions, s.categories, s.now())
	s.logDegraded(err)
	return pricing.Sections(byCategory, s.categories), nil
}

func (s *catalogService) ProductsInCategory(ctx context.Context, category string) ([]pricing.ResolvedProduct, error) {
	if !domain.IsCategory(category) {
		return nil, domain.NewValidationError("category", fmt.Sprintf("unknown category %q", category))
	}

	products, promotions, err := s.fetch(ctx, category)
	if err != nil {
		return nil, err
	}

	resolved, err := pricing.ResolveAll(products, promotions, s.now())
	s.logDegraded(err)
	return resolved, nil
}

// GetProduct resolves a single product against its own promotions.
func (s *catalogService) GetProduct(ctx context.Context, id string) (*pricing.ResolvedProduct, error) {
	var (
		product    *domain.Product
		promotions []domain.Promotion
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		product, err = s.productRepo.FindByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		promotions, err = s.promotionRepo.ListByProduct(gctx, id)
		if err != nil {
			return &pricing.FetchError{Source: "promotions", Err: err}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		var fetchErr *pricing.FetchError
		if errors.Is(err, repository.ErrProductNotFound) || errors.As(err, &fetchErr) {
			return nil, err
		}
		return nil, &pricing.FetchError{Source: "products", Err: err}
	}

	resolved, err := pricing.Resolve(*product, promotions, s.now())
	if err != nil {
		s.logDegraded(err)
		resolved.Offer = pricing.Plain{}
	}
	return &resolved, nil
}
