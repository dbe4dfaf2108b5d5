package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"moveis-catalog/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newTestProduct(id, category string, createdAt time.Time) *domain.Product {
	return &domain.Product{
		ID:                  id,
		Name:                "Mesa de Jantar " + id,
		Description:         "Mesa de jantar em madeira maciça",
		DetailedDescription: "Mesa de jantar para 6 lugares em madeira maciça de carvalho",
		Category:            category,
		Price:               "1.890,00",
		Materials:           domain.StringList{"Carvalho maciço", "Verniz fosco"},
		Features:            domain.StringList{"6 lugares"},
		Dimensions:          domain.Dimensions{Width: "180cm", Depth: "90cm", Height: "76cm", Weight: "55kg"},
		Images:              domain.StringList{"products/mesa-1.jpg"},
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}
}

func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	requireDB(t)
	resetTables(t)

	productRepo := NewProductRepository(testDB)
	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(name, description, price string, materials []string, categoryIndex int) bool {
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Microsecond)

			product := newTestProduct(fmt.Sprintf("produto-%d", now.UnixNano()), domain.Categories[categoryIndex], now)
			product.Name = name
			product.Description = description
			product.Price = price
			product.Materials = materials

			if err := productRepo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}
			defer productRepo.Delete(ctx, product.ID)

			retrieved, err := productRepo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			// A nil list is stored as an empty JSON array.
			if product.Materials == nil {
				product.Materials = domain.StringList{}
			}
			if !retrieved.CreatedAt.Equal(product.CreatedAt) {
				t.Logf("FAIL: CreatedAt mismatch. Expected %s, got %s", product.CreatedAt, retrieved.CreatedAt)
				return false
			}
			retrieved.CreatedAt, retrieved.UpdatedAt = product.CreatedAt, product.UpdatedAt

			if !reflect.DeepEqual(*retrieved, *product) {
				t.Logf("FAIL: attribute mismatch.\nExpected %+v\n     got %+v", *product, *retrieved)
				return false
			}

			return true
		},
		gen.RegexMatch(`[A-Za-zÀ-ú0-9 ]{3,50}`),
		gen.RegexMatch(`[A-Za-z0-9 .,!?]{10,200}`),
		gen.RegexMatch(`[1-9][0-9]{0,2}(\.[0-9]{3}){0,2},[0-9]{2}`),
		gen.SliceOf(gen.AlphaString()),
		gen.IntRange(0, len(domain.Categories)-1),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ProductUpdatesAreReflected(t *testing.T) {
	requireDB(t)
	resetTables(t)

	productRepo := NewProductRepository(testDB)
	properties := gopter.NewProperties(nil)

	properties.Property("updated attributes are returned by FindByID", prop.ForAll(
		func(newName, newPrice string, images []string) bool {
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Microsecond)

			product := newTestProduct(fmt.Sprintf("mesa-%d", now.UnixNano()), "Mesas", now)
			if err := productRepo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}
			defer productRepo.Delete(ctx, product.ID)

			product.Name = newName
			product.Price = newPrice
			product.Images = images
			product.UpdatedAt = now.Add(time.Minute)
			if err := productRepo.Update(ctx, product); err != nil {
				t.Logf("FAIL: Failed to update product: %v", err)
				return false
			}

			retrieved, err := productRepo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			return retrieved.Name == newName &&
				retrieved.Price == newPrice &&
				len(retrieved.Images) == len(images) &&
				!retrieved.UpdatedAt.Before(product.UpdatedAt)
		},
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`),
		gen.RegexMatch(`[1-9][0-9]{0,2},[0-9]{2}`),
		gen.SliceOf(gen.RegexMatch(`products/[a-z0-9]{4,12}\.jpg`)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductListOrderAndCategoryFilter(t *testing.T) {
	requireDB(t)
	resetTables(t)

	ctx := context.Background()
	repo := NewProductRepository(testDB)
	base := time.Now().UTC().Truncate(time.Second)

	fixtures := []*domain.Product{
		newTestProduct("sofa-old", "Sofás", base.Add(-2*time.Hour)),
		newTestProduct("mesa-mid", "Mesas", base.Add(-time.Hour)),
		newTestProduct("sofa-new", "Sofás", base),
	}
	for _, p := range fixtures {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Failed to create %s: %v", p.ID, err)
		}
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if got := ids(all); !reflect.DeepEqual(got, []string{"sofa-new", "mesa-mid", "sofa-old"}) {
		t.Errorf("List order = %v, want newest first", got)
	}

	sofas, err := repo.ListByCategory(ctx, "Sofás")
	if err != nil {
		t.Fatalf("ListByCategory failed: %v", err)
	}
	if got := ids(sofas); !reflect.DeepEqual(got, []string{"sofa-new", "sofa-old"}) {
		t.Errorf("ListByCategory = %v", got)
	}

	camas, err := repo.ListByCategory(ctx, "Camas")
	if err != nil {
		t.Fatalf("ListByCategory failed: %v", err)
	}
	if camas == nil || len(camas) != 0 {
		t.Errorf("empty category should return an empty list, got %#v", camas)
	}

	count, err := repo.Count(ctx)
	if err != nil || count != 3 {
		t.Errorf("Count = %d, %v; want 3", count, err)
	}
}

func TestProductRepositoryNotFoundAndDuplicate(t *testing.T) {
	requireDB(t)
	resetTables(t)

	ctx := context.Background()
	repo := NewProductRepository(testDB)

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("FindByID missing = %v, want ErrProductNotFound", err)
	}
	if err := repo.Update(ctx, newTestProduct("missing", "Mesas", time.Now())); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Update missing = %v, want ErrProductNotFound", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Delete missing = %v, want ErrProductNotFound", err)
	}

	p := newTestProduct("rack-tv", "Racks", time.Now().UTC())
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, p); !errors.Is(err, ErrProductAlreadyExists) {
		t.Errorf("duplicate Create = %v, want ErrProductAlreadyExists", err)
	}
}

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}
