package transport

import (
	"io"
	"net/http"
	"strings"

	"rads-market/internal/domain"
	"rads-market/internal/middleware"
	"rads-market/internal/repository"
	"rads-market/internal/service"
	"rads-market/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxUploadBytes bounds product image uploads
const maxUploadBytes = 10 << 20 // 10 MiB

// ProductRequestPayload represents a candidate listing submission
type ProductRequestPayload struct {
	Title         string  `json:"title" validate:"required,min=3,max=120"`
	Description   string  `json:"description" validate:"max=4000"`
	Price         float64 `json:"price" validate:"gte=0"`
	Category      string  `json:"category" validate:"required"`
	AffiliateLink string  `json:"affiliate_link" validate:"required,url"`
	ImageKey      string  `json:"image_key" validate:"required"`
}

// UploadResponse returns the stored object key and its durable URL
type UploadResponse struct {
	ImageKey string `json:"image_key"`
	ImageURL string `json:"image_url"`
}

// SellerHandler handles HTTP requests for seller operations
type SellerHandler struct {
	approvalService service.ApprovalService
	catalogService  service.CatalogService
	objects         storage.ObjectStore
	logger          *zap.Logger
}

// NewSellerHandler creates a new SellerHandler
func NewSellerHandler(
	approvalService service.ApprovalService,
	catalogService service.CatalogService,
	objects storage.ObjectStore,
	logger *zap.Logger,
) *SellerHandler {
	return &SellerHandler{
		approvalService: approvalService,
		catalogService:  catalogService,
		objects:         objects,
		logger:          logger,
	}
}

// RegisterRoutes registers all seller routes. Everything requires
// authentication; the dashboard and submission routes additionally require
// the matching capability against fresh account state.
func (h *SellerHandler) RegisterRoutes(
	r chi.Router,
	authMiddleware func(http.Handler) http.Handler,
	requireCapability func(domain.Capability) func(http.Handler) http.Handler,
) {
	r.Route("/api/seller", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(requireCapability(domain.CapSubmitSellerRequest))
			r.Post("/apply", h.Apply)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireCapability(domain.CapSubmitProductRequest))
			r.Post("/requests", h.SubmitProductRequest)
			r.Post("/uploads", h.UploadImage)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireCapability(domain.CapViewSellerDashboard))
			r.Get("/products", h.ListProducts)
			r.Get("/requests", h.ListProductRequests)
		})
	})
}

// Apply handles a seller application from an existing account
func (h *SellerHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req SellerApplication

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Seller application validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	request, err := h.approvalService.SubmitSellerRequest(r.Context(), accountID, service.SellerApplication{
		BrandName:        req.BrandName,
		BrandDescription: req.BrandDescription,
		BusinessType:     req.BusinessType,
		Website:          req.Website,
		ContactEmail:     req.ContactEmail,
		ContactPhone:     req.ContactPhone,
	})
	if err != nil {
		h.logger.Debug("Seller application failed", zap.Error(err))

		switch err {
		case service.ErrNotAuthorized:
			middleware.RespondWithError(w, http.StatusForbidden, "account cannot apply to become a seller")
		case repository.ErrSellerRequestPending:
			middleware.RespondWithError(w, http.StatusConflict, "a seller application is already pending")
		default:
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to submit seller application")
		}
		return
	}

	h.logger.Info("Seller application submitted",
		zap.String("request_id", request.ID.String()),
		zap.String("account_id", accountID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, request)
}

// SubmitProductRequest handles a candidate listing submission
func (h *SellerHandler) SubmitProductRequest(w http.ResponseWriter, r *http.Request) {
	var req ProductRequestPayload

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	request, err := h.approvalService.SubmitProductRequest(r.Context(), accountID, service.ProductSubmission{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		Category:      req.Category,
		AffiliateLink: req.AffiliateLink,
		ImageKey:      req.ImageKey,
	})
	if err != nil {
		h.logger.Debug("Product request submission failed", zap.Error(err))

		switch err {
		case service.ErrNotAuthorized:
			middleware.RespondWithError(w, http.StatusForbidden, "only approved sellers can submit listings")
		case service.ErrInvalidPrice:
			middleware.RespondWithError(w, http.StatusBadRequest, "price must be zero or greater")
		case service.ErrImageMissing:
			middleware.RespondWithError(w, http.StatusBadRequest, "referenced image was not uploaded")
		default:
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to submit product request")
		}
		return
	}

	h.logger.Info("Product request submitted",
		zap.String("request_id", request.ID.String()),
		zap.String("seller_id", accountID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, request)
}

// UploadImage stores a product image and returns its key and durable URL
func (h *SellerHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		middleware.RespondWithError(w, http.StatusBadRequest, "only image uploads are accepted")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read upload", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	key := storage.ObjectKey(accountID, header.Filename)
	if err := h.objects.Upload(r.Context(), key, data, contentType); err != nil {
		h.logger.Error("Failed to store upload", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	h.logger.Info("Product image uploaded",
		zap.String("seller_id", accountID.String()),
		zap.String("image_key", key),
		zap.Int("bytes", len(data)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, UploadResponse{
		ImageKey: key,
		ImageURL: h.objects.PublicURL(key),
	})
}

// ListProducts returns the seller's live listings
func (h *SellerHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	products, err := h.catalogService.ListSellerProducts(r.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to list seller products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// ListProductRequests returns the seller's submitted listing requests
func (h *SellerHandler) ListProductRequests(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requests, err := h.approvalService.ListSellerProductRequests(r.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to list product requests", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list product requests")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, requests)
}
