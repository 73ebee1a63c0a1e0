package service

import (
	"context"

	"rads-market/internal/domain"
	"rads-market/internal/repository"
	"rads-market/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CatalogPage is one page of the public product listing
type CatalogPage struct {
	Products   []*domain.Product `json:"products"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// CatalogService defines the interface for storefront catalog logic. The
// products table only ever contains approved listings, so every read here
// is public.
type CatalogService interface {
	ListProducts(ctx context.Context, category string, page, pageSize int, sortBy string, sortOrder repository.SortOrder) (*CatalogPage, error)
	SearchProducts(ctx context.Context, query string, page, pageSize int) (*CatalogPage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListSellerProducts(ctx context.Context, sellerID uuid.UUID) ([]*domain.Product, error)

	// RemoveProduct takes a live listing off the storefront and deletes its
	// stored image.
	RemoveProduct(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	productRepo repository.ProductRepository
	objects     storage.ObjectStore
	logger      *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, objects storage.ObjectStore, logger *zap.Logger) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		objects:     objects,
		logger:      logger,
	}
}

// ListProducts returns a page of the catalog with optional category filter
func (s *catalogService) ListProducts(ctx context.Context, category string, page, pageSize int, sortBy string, sortOrder repository.SortOrder) (*CatalogPage, error) {
	page, pageSize = normalizePaging(page, pageSize)

	products, total, err := s.productRepo.List(ctx, category, page, pageSize, sortBy, sortOrder)
	if err != nil {
		return nil, err
	}

	return newCatalogPage(products, total, page, pageSize), nil
}

// SearchProducts matches the query against product titles and descriptions
func (s *catalogService) SearchProducts(ctx context.Context, query string, page, pageSize int) (*CatalogPage, error) {
	page, pageSize = normalizePaging(page, pageSize)

	products, total, err := s.productRepo.Search(ctx, query, page, pageSize)
	if err != nil {
		return nil, err
	}

	return newCatalogPage(products, total, page, pageSize), nil
}

// GetProduct retrieves a single live listing
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// ListSellerProducts returns a seller's live listings
func (s *catalogService) ListSellerProducts(ctx context.Context, sellerID uuid.UUID) ([]*domain.Product, error) {
	return s.productRepo.ListBySeller(ctx, sellerID)
}

// RemoveProduct deletes the listing and then its image. The image delete is
// best-effort: once the row is gone the listing is off the storefront, and
// a leaked object is only a storage cost.
func (s *catalogService) RemoveProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	if product.ImageKey != "" {
		if err := s.objects.Delete(ctx, product.ImageKey); err != nil {
			s.logger.Warn("Failed to delete product image",
				zap.String("product_id", id.String()),
				zap.String("image_key", product.ImageKey),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Product removed from catalog",
		zap.String("product_id", id.String()),
		zap.String("title", product.Title),
	)

	return nil
}

func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func newCatalogPage(products []*domain.Product, total, page, pageSize int) *CatalogPage {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return &CatalogPage{
		Products:   products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
