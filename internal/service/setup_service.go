package service

import (
	"context"
	"strings"

	"moveis-catalog/internal/repository"
	"moveis-catalog/internal/storage"

	"go.uber.org/zap"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SetupReport is the result of the back-office installation check.
type SetupReport struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Details map[string]bool `json:"details"`
	Errors  []string        `json:"errors,omitempty"`
}

// SetupService verifies that the database, tables, storage bucket and
// catalog data are in place.
type SetupService interface {
	Check(ctx context.Context) SetupReport
}

type setupService struct {
	db            Pinger
	productRepo   repository.ProductRepository
	promotionRepo repository.PromotionRepository
	store         storage.ObjectStore
	logger        *zap.Logger
}

func NewSetupService(
	db Pinger,
	productRepo repository.ProductRepository,
	promotionRepo repository.PromotionRepository,
	store storage.ObjectStore,
	logger *zap.Logger,
) SetupService {
	return &setupService{
		db:            db,
		productRepo:   productRepo,
		promotionRepo: promotionRepo,
		store:         store,
		logger:        logger,
	}
}

const setupProbePath = ".setup-probe"

func (s *setupService) Check(ctx context.Context) SetupReport {
	details := map[string]bool{
		"database":            false,
		"products_table":      false,
		"promotions_table":    false,
		"storage_bucket":      false,
		"storage_permissions": false,
		"sample_data":         false,
	}
	var errs []string
	fail := func(check string, err error) {
		errs = append(errs, check+": "+err.Error())
		s.logger.Warn("Setup check failed", zap.String("check", check), zap.Error(err))
	}

	if err := s.db.PingContext(ctx); err != nil {
		fail("database", err)
	} else {
		details["database"] = true
	}

	if count, err := s.productRepo.Count(ctx); err != nil {
		fail("products_table", err)
	} else {
		details["products_table"] = true
		details["sample_data"] = count > 0
	}

	if _, err := s.promotionRepo.List(ctx); err != nil {
		fail("promotions_table", err)
	} else {
		details["promotions_table"] = true
	}

	if err := s.store.Ping(ctx); err != nil {
		fail("storage_bucket", err)
	} else {
		details["storage_bucket"] = true
	}

	if _, err := s.store.Put(ctx, setupProbePath, strings.NewReader("ok")); err != nil {
		fail("storage_permissions", err)
	} else if err := s.store.Delete(ctx, setupProbePath); err != nil {
		fail("storage_permissions", err)
	} else {
		details["storage_permissions"] = true
	}

	success := true
	for _, ok := range details {
		success = success && ok
	}

	report := SetupReport{Success: success, Details: details, Errors: errs}
	if success {
		report.Message = "Setup complete, everything is working."
	} else {
		report.Message = "Problems found, run the migrations and check the storage bucket."
	}
	return report
}
