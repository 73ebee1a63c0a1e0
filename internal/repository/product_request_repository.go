package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rads-market/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductRequestNotFound = errors.New("product request not found")
)

// ProductRequestRepository defines the interface for product request data access
type ProductRequestRepository interface {
	Create(ctx context.Context, request *domain.ProductRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductRequest, error)
	ListPending(ctx context.Context) ([]*domain.ProductRequest, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.ProductRequest, error)
}

type productRequestRepository struct {
	db *sql.DB
}

// NewProductRequestRepository creates a new instance of ProductRequestRepository
func NewProductRequestRepository(db *sql.DB) ProductRequestRepository {
	return &productRequestRepository{db: db}
}

const productRequestColumns = `id, seller_id, seller_email, title, description, price, category, affiliate_link, image_key, image_url, status, created_at`

type productRequestScanner interface {
	Scan(dest ...any) error
}

func scanProductRequest(row productRequestScanner) (*domain.ProductRequest, error) {
	request := &domain.ProductRequest{}
	err := row.Scan(
		&request.ID,
		&request.SellerID,
		&request.SellerEmail,
		&request.Title,
		&request.Description,
		&request.Price,
		&request.Category,
		&request.AffiliateLink,
		&request.ImageKey,
		&request.ImageURL,
		&request.Status,
		&request.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Create inserts a new product request
func (r *productRequestRepository) Create(ctx context.Context, request *domain.ProductRequest) error {
	query := `
		INSERT INTO product_requests (id, seller_id, seller_email, title, description, price, category, affiliate_link, image_key, image_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		request.ID,
		request.SellerID,
		request.SellerEmail,
		request.Title,
		request.Description,
		request.Price,
		request.Category,
		request.AffiliateLink,
		request.ImageKey,
		request.ImageURL,
		request.Status,
		request.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product request: %w", err)
	}

	return nil
}

// FindByID retrieves a product request by ID
func (r *productRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductRequest, error) {
	query := `SELECT ` + productRequestColumns + ` FROM product_requests WHERE id = $1`

	request, err := scanProductRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductRequestNotFound
		}
		return nil, fmt.Errorf("failed to find product request by ID: %w", err)
	}

	return request, nil
}

// ListPending retrieves all product requests awaiting an admin decision
func (r *productRequestRepository) ListPending(ctx context.Context) ([]*domain.ProductRequest, error) {
	query := `
		SELECT ` + productRequestColumns + `
		FROM product_requests
		WHERE status = 'pending'
		ORDER BY created_at ASC
	`

	return r.list(ctx, query)
}

// ListBySeller retrieves a seller's own submitted requests
func (r *productRequestRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.ProductRequest, error) {
	query := `
		SELECT ` + productRequestColumns + `
		FROM product_requests
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`

	return r.list(ctx, query, sellerID)
}

func (r *productRequestRepository) list(ctx context.Context, query string, args ...any) ([]*domain.ProductRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list product requests: %w", err)
	}
	defer rows.Close()

	requests := []*domain.ProductRequest{}
	for rows.Next() {
		request, err := scanProductRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product request: %w", err)
		}
		requests = append(requests, request)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product requests: %w", err)
	}

	return requests, nil
}
