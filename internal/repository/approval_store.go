package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rads-market/internal/database"
	"rads-market/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrRequestNotPending = errors.New("request is not pending")
)

// ApprovalStore executes the multi-table transitions of the approval
// workflow. Each operation runs in a single transaction: if any statement
// fails, the request stays pending and the admin action can be retried
// without duplicating side effects.
type ApprovalStore interface {
	// CreateSellerAccount persists a new seller/pending account together
	// with its seller request, atomically.
	CreateSellerAccount(ctx context.Context, account *domain.Account, request *domain.SellerRequest) error

	// SubmitSellerRequest files a seller application for an existing
	// account and moves the account to seller/pending, atomically.
	SubmitSellerRequest(ctx context.Context, request *domain.SellerRequest) error

	// ApproveSellerRequest marks the request approved and promotes the
	// linked account to seller/approved, carrying over the brand name.
	ApproveSellerRequest(ctx context.Context, requestID uuid.UUID) (*domain.SellerRequest, error)

	// RejectSellerRequest deletes the request and reverts the linked
	// account to a plain customer.
	RejectSellerRequest(ctx context.Context, requestID uuid.UUID) (*domain.SellerRequest, error)

	// ApproveProductRequest copies the request into the products table
	// with an approval timestamp and deletes the request.
	ApproveProductRequest(ctx context.Context, requestID uuid.UUID) (*domain.Product, error)

	// RejectProductRequest deletes the request without creating a product.
	RejectProductRequest(ctx context.Context, requestID uuid.UUID) (*domain.ProductRequest, error)
}

type approvalStore struct {
	db *sql.DB
}

// NewApprovalStore creates a new instance of ApprovalStore
func NewApprovalStore(db *sql.DB) ApprovalStore {
	return &approvalStore{db: db}
}

// CreateSellerAccount inserts the account row and the pending seller request
// in one transaction so a signup can never leave one without the other.
func (s *approvalStore) CreateSellerAccount(ctx context.Context, account *domain.Account, request *domain.SellerRequest) error {
	return database.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, email, password_hash, role, seller_status, brand_name, last_login_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			account.ID,
			account.Email,
			account.PasswordHash,
			account.Role,
			account.SellerStatus,
			account.BrandName,
			account.LastLoginAt,
			account.CreatedAt,
			account.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return ErrAccountAlreadyExists
			}
			return fmt.Errorf("create account: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO seller_requests (id, account_id, email, brand_name, brand_description, business_type, website, contact_email, contact_phone, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
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
			return fmt.Errorf("create seller request: %w", err)
		}

		return nil
	})
}

// SubmitSellerRequest inserts the application and flips the account to
// seller/pending in one transaction. The partial unique index on pending
// requests turns a concurrent double submission into ErrSellerRequestPending.
func (s *approvalStore) SubmitSellerRequest(ctx context.Context, request *domain.SellerRequest) error {
	return database.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO seller_requests (id, account_id, email, brand_name, brand_description, business_type, website, contact_email, contact_phone, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
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
			return fmt.Errorf("create seller request: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE users
			SET role = $2, seller_status = $3, updated_at = $4
			WHERE id = $1
		`, request.AccountID, domain.RoleSeller, domain.SellerStatusPending, time.Now())
		if err != nil {
			return fmt.Errorf("move account to pending: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrAccountNotFound
		}

		return nil
	})
}

// lockPendingSellerRequest loads the request row for update, failing when it
// is missing or already resolved. Locking serializes two admins deciding the
// same request: the loser of the race sees it as no longer pending.
func lockPendingSellerRequest(ctx context.Context, tx *sql.Tx, requestID uuid.UUID) (*domain.SellerRequest, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+sellerRequestColumns+`
		FROM seller_requests
		WHERE id = $1
		FOR UPDATE
	`, requestID)

	request, err := scanSellerRequest(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSellerRequestNotFound
		}
		return nil, fmt.Errorf("lock seller request: %w", err)
	}

	if request.Status != domain.RequestStatusPending {
		return nil, ErrRequestNotPending
	}

	return request, nil
}

// ApproveSellerRequest promotes request and account together
func (s *approvalStore) ApproveSellerRequest(ctx context.Context, requestID uuid.UUID) (*domain.SellerRequest, error) {
	var approved *domain.SellerRequest

	err := database.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		request, err := lockPendingSellerRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}

		now := time.Now()

		_, err = tx.ExecContext(ctx, `
			UPDATE seller_requests
			SET status = $2, updated_at = $3
			WHERE id = $1
		`, request.ID, domain.RequestStatusApproved, now)
		if err != nil {
			return fmt.Errorf("approve seller request: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE users
			SET role = $2, seller_status = $3, brand_name = $4, updated_at = $5
			WHERE id = $1
		`, request.AccountID, domain.RoleSeller, domain.SellerStatusApproved, request.BrandName, now)
		if err != nil {
			return fmt.Errorf("promote account: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrAccountNotFound
		}

		request.Status = domain.RequestStatusApproved
		request.UpdatedAt = now
		approved = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	return approved, nil
}

// RejectSellerRequest removes the request and demotes the account
func (s *approvalStore) RejectSellerRequest(ctx context.Context, requestID uuid.UUID) (*domain.SellerRequest, error) {
	var rejected *domain.SellerRequest

	err := database.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		request, err := lockPendingSellerRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM seller_requests WHERE id = $1`, request.ID)
		if err != nil {
			return fmt.Errorf("delete seller request: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET role = $2, seller_status = $3, updated_at = $4
			WHERE id = $1
		`, request.AccountID, domain.RoleCustomer, domain.SellerStatusNone, time.Now())
		if err != nil {
			return fmt.Errorf("demote account: %w", err)
		}

		request.Status = domain.RequestStatusRejected
		rejected = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rejected, nil
}

// ApproveProductRequest materializes the request into a product and removes
// the request in the same transaction, so a retry after failure can never
// produce a duplicate listing.
func (s *approvalStore) ApproveProductRequest(ctx context.Context, requestID uuid.UUID) (*domain.Product, error) {
	var product *domain.Product

	err := database.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT `+productRequestColumns+`
			FROM product_requests
			WHERE id = $1
			FOR UPDATE
		`, requestID)

		request, err := scanProductRequest(row)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrProductRequestNotFound
			}
			return fmt.Errorf("lock product request: %w", err)
		}

		if request.Status != domain.RequestStatusPending {
			return ErrRequestNotPending
		}

		candidate := domain.FromRequest(request, time.Now())

		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (id, title, description, price, category, affiliate_link, image_key, image_url, seller_id, seller_email, approved_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
			candidate.ID,
			candidate.Title,
			candidate.Description,
			candidate.Price,
			candidate.Category,
			candidate.AffiliateLink,
			candidate.ImageKey,
			candidate.ImageURL,
			candidate.SellerID,
			candidate.SellerEmail,
			candidate.ApprovedAt,
			candidate.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM product_requests WHERE id = $1`, request.ID)
		if err != nil {
			return fmt.Errorf("delete product request: %w", err)
		}

		product = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

// RejectProductRequest deletes the request, leaving the catalog untouched
func (s *approvalStore) RejectProductRequest(ctx context.Context, requestID uuid.UUID) (*domain.ProductRequest, error) {
	var rejected *domain.ProductRequest

	err := database.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT `+productRequestColumns+`
			FROM product_requests
			WHERE id = $1
			FOR UPDATE
		`, requestID)

		request, err := scanProductRequest(row)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrProductRequestNotFound
			}
			return fmt.Errorf("lock product request: %w", err)
		}

		if request.Status != domain.RequestStatusPending {
			return ErrRequestNotPending
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM product_requests WHERE id = $1`, request.ID)
		if err != nil {
			return fmt.Errorf("delete product request: %w", err)
		}

		rejected = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rejected, nil
}
