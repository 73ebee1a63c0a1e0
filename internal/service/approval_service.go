package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rads-market/internal/domain"
	"rads-market/internal/notify"
	"rads-market/internal/repository"
	"rads-market/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotAuthorized = errors.New("account is not authorized for this action")
	ErrInvalidPrice  = errors.New("price must be zero or greater")
	ErrImageMissing  = errors.New("referenced product image was not uploaded")
)

// ProductSubmission carries the fields a seller supplies for a candidate
// listing. ImageKey must reference an object already uploaded to storage.
type ProductSubmission struct {
	Title         string
	Description   string
	Price         float64
	Category      string
	AffiliateLink string
	ImageKey      string
}

// ApprovalService drives the request/approve/reject workflow on both
// request kinds. Every submission re-reads the acting account so revoked
// access takes effect immediately, not at token expiry.
type ApprovalService interface {
	// SubmitSellerRequest files a seller application for an existing
	// customer account and moves it to the pending state.
	SubmitSellerRequest(ctx context.Context, accountID uuid.UUID, application SellerApplication) (*domain.SellerRequest, error)

	// SubmitProductRequest files a candidate listing for an approved seller.
	SubmitProductRequest(ctx context.Context, sellerID uuid.UUID, submission ProductSubmission) (*domain.ProductRequest, error)

	ApproveSellerRequest(ctx context.Context, requestID uuid.UUID) (*domain.SellerRequest, error)
	RejectSellerRequest(ctx context.Context, requestID uuid.UUID) (*domain.SellerRequest, error)
	ApproveProductRequest(ctx context.Context, requestID uuid.UUID) (*domain.Product, error)
	RejectProductRequest(ctx context.Context, requestID uuid.UUID) (*domain.ProductRequest, error)

	ListPendingSellerRequests(ctx context.Context) ([]*domain.SellerRequest, error)
	ListPendingProductRequests(ctx context.Context) ([]*domain.ProductRequest, error)
	ListSellerProductRequests(ctx context.Context, sellerID uuid.UUID) ([]*domain.ProductRequest, error)
}

type approvalService struct {
	accountRepo        repository.AccountRepository
	sellerRequestRepo  repository.SellerRequestRepository
	productRequestRepo repository.ProductRequestRepository
	store              repository.ApprovalStore
	objects            storage.ObjectStore
	publisher          notify.Publisher
	logger             *zap.Logger
}

// NewApprovalService creates a new instance of ApprovalService
func NewApprovalService(
	accountRepo repository.AccountRepository,
	sellerRequestRepo repository.SellerRequestRepository,
	productRequestRepo repository.ProductRequestRepository,
	store repository.ApprovalStore,
	objects storage.ObjectStore,
	publisher notify.Publisher,
	logger *zap.Logger,
) ApprovalService {
	return &approvalService{
		accountRepo:        accountRepo,
		sellerRequestRepo:  sellerRequestRepo,
		productRequestRepo: productRequestRepo,
		store:              store,
		objects:            objects,
		publisher:          publisher,
		logger:             logger,
	}
}

// SubmitSellerRequest files a seller application for an existing account
func (s *approvalService) SubmitSellerRequest(ctx context.Context, accountID uuid.UUID, application SellerApplication) (*domain.SellerRequest, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if !domain.HasCapability(account.Role, account.SellerStatus, domain.CapSubmitSellerRequest) {
		return nil, ErrNotAuthorized
	}

	now := time.Now()
	request := &domain.SellerRequest{
		ID:               uuid.New(),
		AccountID:        account.ID,
		Email:            account.Email,
		BrandName:        application.BrandName,
		BrandDescription: application.BrandDescription,
		BusinessType:     application.BusinessType,
		Website:          application.Website,
		ContactEmail:     application.ContactEmail,
		ContactPhone:     application.ContactPhone,
		Status:           domain.RequestStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.SubmitSellerRequest(ctx, request); err != nil {
		return nil, err
	}

	s.publish(ctx, notify.Event{
		Kind:       notify.KindSellerRequest,
		Action:     notify.ActionAdded,
		RequestID:  request.ID,
		Email:      request.Email,
		OccurredAt: now,
	})

	return request, nil
}

// SubmitProductRequest files a candidate listing. The referenced image must
// already exist in object storage, and the price must be non-negative.
func (s *approvalService) SubmitProductRequest(ctx context.Context, sellerID uuid.UUID, submission ProductSubmission) (*domain.ProductRequest, error) {
	account, err := s.accountRepo.FindByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	if !domain.HasCapability(account.Role, account.SellerStatus, domain.CapSubmitProductRequest) {
		return nil, ErrNotAuthorized
	}

	if submission.Price < 0 {
		return nil, ErrInvalidPrice
	}

	// Every listing needs an image, and the referenced upload must actually
	// be in the object store before the request is accepted.
	if submission.ImageKey == "" {
		return nil, ErrImageMissing
	}
	exists, err := s.objects.Exists(ctx, submission.ImageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check product image: %w", err)
	}
	if !exists {
		return nil, ErrImageMissing
	}

	now := time.Now()
	request := &domain.ProductRequest{
		ID:            uuid.New(),
		SellerID:      account.ID,
		SellerEmail:   account.Email,
		Title:         submission.Title,
		Description:   submission.Description,
		Price:         submission.Price,
		Category:      submission.Category,
		AffiliateLink: submission.AffiliateLink,
		ImageKey:      submission.ImageKey,
		ImageURL:      s.imageURL(submission.ImageKey),
		Status:        domain.RequestStatusPending,
		CreatedAt:     now,
	}

	if err := s.productRequestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.publish(ctx, notify.Event{
		Kind:       notify.KindProductRequest,
		Action:     notify.ActionAdded,
		RequestID:  request.ID,
		Email:      request.SellerEmail,
		OccurredAt: now,
	})

	return request, nil
}

// ApproveSellerRequest promotes the applicant to an approved seller
func (s *approvalService) ApproveSellerRequest(ctx context.Context, requestID uuid.UUID) (*domain.SellerRequest, error) {
	request, err := s.store.ApproveSellerRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Seller request approved",
		zap.String("request_id", request.ID.String()),
		zap.String("email", request.Email),
	)

	s.publish(ctx, notify.Event{
		Kind:       notify.KindSellerRequest,
		Action:     notify.ActionApproved,
		RequestID:  request.ID,
		Email:      request.Email,
		OccurredAt: time.Now(),
	})

	return request, nil
}

// RejectSellerRequest removes the application and reverts the applicant to
// a plain customer, free to apply again
func (s *approvalService) RejectSellerRequest(ctx context.Context, requestID uuid.UUID) (*domain.SellerRequest, error) {
	request, err := s.store.RejectSellerRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Seller request rejected",
		zap.String("request_id", request.ID.String()),
		zap.String("email", request.Email),
	)

	s.publish(ctx, notify.Event{
		Kind:       notify.KindSellerRequest,
		Action:     notify.ActionRejected,
		RequestID:  request.ID,
		Email:      request.Email,
		OccurredAt: time.Now(),
	})

	return request, nil
}

// ApproveProductRequest turns the candidate listing into a live product
func (s *approvalService) ApproveProductRequest(ctx context.Context, requestID uuid.UUID) (*domain.Product, error) {
	product, err := s.store.ApproveProductRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product request approved",
		zap.String("request_id", requestID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("title", product.Title),
	)

	s.publish(ctx, notify.Event{
		Kind:       notify.KindProductRequest,
		Action:     notify.ActionApproved,
		RequestID:  requestID,
		Email:      product.SellerEmail,
		OccurredAt: time.Now(),
	})

	return product, nil
}

// RejectProductRequest discards the candidate listing. The uploaded image
// is deleted since nothing references it anymore.
func (s *approvalService) RejectProductRequest(ctx context.Context, requestID uuid.UUID) (*domain.ProductRequest, error) {
	request, err := s.store.RejectProductRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.ImageKey != "" {
		if err := s.objects.Delete(ctx, request.ImageKey); err != nil {
			// The listing decision already committed; an orphaned object is
			// only a storage leak.
			s.logger.Warn("Failed to delete rejected product image",
				zap.String("image_key", request.ImageKey),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Product request rejected",
		zap.String("request_id", request.ID.String()),
		zap.String("title", request.Title),
	)

	s.publish(ctx, notify.Event{
		Kind:       notify.KindProductRequest,
		Action:     notify.ActionRejected,
		RequestID:  request.ID,
		Email:      request.SellerEmail,
		OccurredAt: time.Now(),
	})

	return request, nil
}

// ListPendingSellerRequests returns seller applications awaiting a decision
func (s *approvalService) ListPendingSellerRequests(ctx context.Context) ([]*domain.SellerRequest, error) {
	return s.sellerRequestRepo.ListPending(ctx)
}

// ListPendingProductRequests returns candidate listings awaiting a decision
func (s *approvalService) ListPendingProductRequests(ctx context.Context) ([]*domain.ProductRequest, error) {
	return s.productRequestRepo.ListPending(ctx)
}

// ListSellerProductRequests returns a seller's own submitted listings
func (s *approvalService) ListSellerProductRequests(ctx context.Context, sellerID uuid.UUID) ([]*domain.ProductRequest, error) {
	return s.productRequestRepo.ListBySeller(ctx, sellerID)
}

// publish sends a workflow event, logging rather than failing on error. The
// state change has already committed, so delivery is best-effort.
func (s *approvalService) publish(ctx context.Context, event notify.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish request event",
			zap.String("kind", string(event.Kind)),
			zap.Error(err),
		)
	}
}

// imageURL resolves the durable public URL for a stored image key
func (s *approvalService) imageURL(key string) string {
	if key == "" {
		return ""
	}
	return s.objects.PublicURL(key)
}
