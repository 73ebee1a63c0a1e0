package service

import (
	"context"
	"testing"
	"time"

	"rads-market/internal/domain"
	"rads-market/internal/repository"
	"rads-market/internal/storage"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

type catalogFixture struct {
	service  CatalogService
	products *mockProductRepository
	objects  *storage.MemoryObjectStore
}

func newCatalogFixture() *catalogFixture {
	products := newMockProductRepository()
	objects := storage.NewMemoryObjectStore()

	return &catalogFixture{
		service:  NewCatalogService(products, objects, zap.NewNop()),
		products: products,
		objects:  objects,
	}
}

func (f *catalogFixture) addProduct(t *testing.T, title, category string, withImage bool) *domain.Product {
	t.Helper()

	product := &domain.Product{
		ID:          uuid.New(),
		Title:       title,
		Description: "description of " + title,
		Price:       9.99,
		Category:    category,
		SellerID:    uuid.New(),
		SellerEmail: "seller@example.com",
		ApprovedAt:  time.Now(),
		CreatedAt:   time.Now(),
	}

	if withImage {
		key := storage.ObjectKey(product.SellerID, "item.jpg")
		if err := f.objects.Upload(context.Background(), key, []byte("bytes"), "image/jpeg"); err != nil {
			t.Fatalf("Failed to seed image: %v", err)
		}
		product.ImageKey = key
		product.ImageURL = f.objects.PublicURL(key)
	}

	f.products.products[product.ID] = product
	return product
}

// Feature: affiliate-marketplace, Property 20: Catalog paging is always well-formed
// Validates: Requirements 1.2
func TestProperty_CatalogPagingIsWellFormed(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("any page/pageSize input yields a consistent page", prop.ForAll(
		func(productCount int, page int, pageSize int) bool {
			fixture := newCatalogFixture()
			ctx := context.Background()

			for i := 0; i < productCount; i++ {
				fixture.addProduct(t, "Item", "home", false)
			}

			result, err := fixture.service.ListProducts(ctx, "", page, pageSize, "approved_at", repository.SortOrderDesc)
			if err != nil {
				t.Logf("FAIL: ListProducts failed: %v", err)
				return false
			}

			if result.Total != productCount {
				t.Logf("FAIL: Total should be %d, got %d", productCount, result.Total)
				return false
			}
			if result.Page < 1 || result.PageSize < 1 || result.PageSize > MaxPageSize {
				t.Logf("FAIL: Paging not normalized: page=%d pageSize=%d", result.Page, result.PageSize)
				return false
			}
			if len(result.Products) > result.PageSize {
				t.Logf("FAIL: Page holds %d products, page size is %d", len(result.Products), result.PageSize)
				return false
			}

			expectedPages := 0
			if productCount > 0 {
				expectedPages = (productCount + result.PageSize - 1) / result.PageSize
			}
			if result.TotalPages != expectedPages {
				t.Logf("FAIL: TotalPages should be %d, got %d", expectedPages, result.TotalPages)
				return false
			}

			return true
		},
		gen.IntRange(0, 50),
		gen.IntRange(-2, 10),
		gen.IntRange(-5, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestSearchProducts_MatchesTitleAndDescription(t *testing.T) {
	fixture := newCatalogFixture()
	ctx := context.Background()

	fixture.addProduct(t, "Walnut Desk", "home", false)
	fixture.addProduct(t, "Steel Chair", "home", false)

	result, err := fixture.service.SearchProducts(ctx, "walnut", 1, 10)
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("Expected 1 match, got %d", result.Total)
	}
	if result.Products[0].Title != "Walnut Desk" {
		t.Errorf("Expected Walnut Desk, got %s", result.Products[0].Title)
	}

	// Description text matches too
	result, err = fixture.service.SearchProducts(ctx, "description of steel", 1, 10)
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("Expected 1 description match, got %d", result.Total)
	}
}

func TestListProducts_FiltersByCategory(t *testing.T) {
	fixture := newCatalogFixture()
	ctx := context.Background()

	fixture.addProduct(t, "Walnut Desk", "home", false)
	fixture.addProduct(t, "Trail Tent", "outdoors", false)

	result, err := fixture.service.ListProducts(ctx, "outdoors", 1, 10, "approved_at", repository.SortOrderDesc)
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("Expected 1 product in outdoors, got %d", result.Total)
	}
	if result.Products[0].Category != "outdoors" {
		t.Errorf("Expected outdoors category, got %s", result.Products[0].Category)
	}
}

func TestRemoveProduct_DeletesListingAndImage(t *testing.T) {
	fixture := newCatalogFixture()
	ctx := context.Background()

	product := fixture.addProduct(t, "Walnut Desk", "home", true)

	if err := fixture.service.RemoveProduct(ctx, product.ID); err != nil {
		t.Fatalf("RemoveProduct failed: %v", err)
	}

	if _, err := fixture.service.GetProduct(ctx, product.ID); err != repository.ErrProductNotFound {
		t.Errorf("Expected ErrProductNotFound after removal, got %v", err)
	}

	exists, err := fixture.objects.Exists(ctx, product.ImageKey)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Removed product's image should be deleted from storage")
	}
}

func TestRemoveProduct_UnknownIDFails(t *testing.T) {
	fixture := newCatalogFixture()

	if err := fixture.service.RemoveProduct(context.Background(), uuid.New()); err != repository.ErrProductNotFound {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}
