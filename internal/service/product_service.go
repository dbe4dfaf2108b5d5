package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"moveis-catalog/internal/domain"
	"moveis-catalog/internal/repository"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ProductService is the back-office view of the catalog: raw products,
// without promotion resolution.
type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	ExportCSV(ctx context.Context, w io.Writer) error
}

type productService struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
	now         func() time.Time
}

func NewProductService(productRepo repository.ProductRepository, logger *zap.Logger) ProductService {
	return &productService{productRepo: productRepo, logger: logger, now: time.Now}
}

func (s *productService) List(ctx context.Context) ([]domain.Product, error) {
	return s.productRepo.List(ctx)
}

func (s *productService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// Create validates the product and stores it. A missing id is generated from
// the category slug and the creation time.
func (s *productService) Create(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	now := s.now()
	product.ID = strings.TrimSpace(product.ID)
	if product.ID == "" {
		product.ID = GenerateProductID(product.Category, now)
	}
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.productRepo.Create(ctx, product); err != nil {
		return err
	}

	s.logger.Info("Product created", zap.String("product_id", product.ID), zap.String("category", product.Category))
	return nil
}

// Update replaces every editable field and refreshes updated_at.
func (s *productService) Update(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	existing, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		return err
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = s.now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}

	s.logger.Info("Product updated", zap.String("product_id", product.ID))
	return nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

// productCSV is one row of the catalog export. Lists are joined with " | ".
type productCSV struct {
	ID                  string `csv:"id"`
	Name                string `csv:"name"`
	Category            string `csv:"category"`
	Price               string `csv:"price"`
	Description         string `csv:"description"`
	DetailedDescription string `csv:"detailed_description"`
	Materials           string `csv:"materials"`
	Features            string `csv:"features"`
	Width               string `csv:"width"`
	Depth               string `csv:"depth"`
	Height              string `csv:"height"`
	Weight              string `csv:"weight"`
	Images              string `csv:"images"`
	CreatedAt           string `csv:"created_at"`
	UpdatedAt           string `csv:"updated_at"`
}

func (s *productService) ExportCSV(ctx context.Context, w io.Writer) error {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return err
	}

	rows := make([]*productCSV, 0, len(products))
	for _, p := range products {
		rows = append(rows, &productCSV{
			ID:                  p.ID,
			Name:                p.Name,
			Category:            p.Category,
			Price:               p.Price,
			Description:         p.Description,
			DetailedDescription: p.DetailedDescription,
			Materials:           strings.Join(p.Materials, " | "),
			Features:            strings.Join(p.Features, " | "),
			Width:               p.Dimensions.Width,
			Depth:               p.Dimensions.Depth,
			Height:              p.Dimensions.Height,
			Weight:              p.Dimensions.Weight,
			Images:              strings.Join(p.Images, " | "),
			CreatedAt:           p.CreatedAt.Format(time.RFC3339),
			UpdatedAt:           p.UpdatedAt.Format(time.RFC3339),
		})
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// Slugify lowercases s, drops accents and replaces every other character
// outside [a-z0-9] with "-".
func Slugify(s string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripMarks, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(plain) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// GenerateProductID returns "<category slug>-<unix millis>", e.g. "sofas-1718000000000".
func GenerateProductID(category string, at time.Time) string {
	return fmt.Sprintf("%s-%d", Slugify(category), at.UnixMilli())
}
