package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rads-market/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrSellerRequestNotFound = errors.New("seller request not found")
	ErrSellerRequestPending  = errors.New("account already has a pending seller request")
)

// SellerRequestRepository defines the interface for seller request data access
type SellerRequestRepository interface {
	Create(ctx context.Context, request *domain.SellerRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.SellerRequest, error)
	ListPending(ctx context.Context) ([]*domain.SellerRequest, error)
	HasPending(ctx context.Context, accountID uuid.UUID) (bool, error)
}

type sellerRequestRepository struct {
	db *sql.DB
}

// NewSellerRequestRepository creates a new instance of SellerRequestRepository
func NewSellerRequestRepository(db *sql.DB) SellerRequestRepository {
	return &sellerRequestRepository{db: db}
}

const sellerRequestColumns = `id, account_id, email, brand_name, brand_description, business_type, website, contact_email, contact_phone, status, created_at, updated_at`

type sellerRequestScanner interface {
	Scan(dest ...any) error
}

func scanSellerRequest(row sellerRequestScanner) (*domain.SellerRequest, error) {
	request := &domain.SellerRequest{}
	err := row.Scan(
		&request.ID,
		&request.AccountID,
		&request.Email,
		&request.BrandName,
		&request.BrandDescription,
		&request.BusinessType,
		&request.Website,
		&request.ContactEmail,
		&request.ContactPhone,
		&request.Status,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Create inserts a new seller request. The partial unique index on pending
// requests enforces the one-outstanding-request invariant at the database
// level, so a concurrent double submission surfaces as ErrSellerRequestPending.
func (r *sellerRequestRepository) Create(ctx context.Context, request *domain.SellerRequest) error {
	query := `
		INSERT INTO seller_requests (id, account_id, email, brand_name, brand_description, business_type, website, contact_email, contact_phone, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		request.ID,
		request.AccountID,
		request.Email,
		request.BrandName,
		request.BrandDescription,
		request.BusinessType,
		request.Website,
		request.ContactEmail,
		request.ContactPhone,
		request.Status,
		request.CreatedAt,
		request.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSellerRequestPending
		}
		return fmt.Errorf("failed to create seller request: %w", err)
	}

	return nil
}

// FindByID retrieves a seller request by ID
func (r *sellerRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.SellerRequest, error) {
	query := `SELECT ` + sellerRequestColumns + ` FROM seller_requests WHERE id = $1`

	request, err := scanSellerRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSellerRequestNotFound
		}
		return nil, fmt.Errorf("failed to find seller request by ID: %w", err)
	}

	return request, nil
}

// ListPending retrieves all seller requests awaiting an admin decision
func (r *sellerRequestRepository) ListPending(ctx context.Context) ([]*domain.SellerRequest, error) {
	query := `
		SELECT ` + sellerRequestColumns + `
		FROM seller_requests
		WHERE status = 'pending'
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending seller requests: %w", err)
	}
	defer rows.Close()

	requests := []*domain.SellerRequest{}
	for rows.Next() {
		request, err := scanSellerRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seller request: %w", err)
		}
		requests = append(requests, request)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seller requests: %w", err)
	}

	return requests, nil
}

// HasPending reports whether the account has an outstanding request
func (r *sellerRequestRepository) HasPending(ctx context.Context, accountID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM seller_requests WHERE account_id = $1 AND status = 'pending')`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pending seller request: %w", err)
	}

	return exists, nil
}
