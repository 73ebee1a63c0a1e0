package transport

import (
	"encoding/json"
	"net/http"

	"rads-market/internal/domain"
	"rads-market/internal/middleware"
	"rads-market/internal/repository"
	"rads-market/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload. Supplying
// the seller block opts the account into the seller application flow.
type RegisterRequest struct {
	Email    string             `json:"email" validate:"required,email"`
	Password string             `json:"password" validate:"required,min=8"`
	Seller   *SellerApplication `json:"seller,omitempty"`
}

// SellerApplication carries the brand details of a seller signup
type SellerApplication struct {
	BrandName        string `json:"brand_name" validate:"required,min=2,max=120"`
	BrandDescription string `json:"brand_description"`
	BusinessType     string `json:"business_type"`
	Website          string `json:"website" validate:"omitempty,url"`
	ContactEmail     string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone     string `json:"contact_phone"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FederatedLoginRequest carries an identity-gateway ID token
type FederatedLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// RefreshRequest represents the token refresh request payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// PasswordResetRequest asks for a reset link
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirm consumes a reset token
type PasswordResetConfirm struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Account      AccountProfile `json:"account"`
}

// RefreshResponse represents the token refresh response
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// AccountProfile represents account profile data, including the derived
// capability set the frontend uses to decide which surfaces to render.
type AccountProfile struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	Role         string              `json:"role"`
	SellerStatus string              `json:"seller_status"`
	BrandName    string              `json:"brand_name,omitempty"`
	Capabilities []domain.Capability `json:"capabilities"`
}

func newAccountProfile(account *domain.Account) AccountProfile {
	return AccountProfile{
		ID:           account.ID.String(),
		Email:        account.Email,
		Role:         string(account.Role),
		SellerStatus: string(account.SellerStatus),
		BrandName:    account.BrandName,
		Capabilities: domain.Capabilities(account.Role, account.SellerStatus),
	}
}

// AuthHandler handles HTTP requests for identity operations
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		// Public routes
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/login/federated", h.LoginFederated)
		r.Post("/refresh", h.RefreshToken)
		r.Post("/password-reset/request", h.RequestPasswordReset)
		r.Post("/password-reset/confirm", h.ConfirmPasswordReset)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/logout", h.Logout)
			r.Get("/profile", h.GetProfile)
		})
	})
}

// Register handles account registration, with or without a seller application
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var account *domain.Account
	var err error

	if req.Seller != nil {
		account, err = h.authService.RegisterSeller(r.Context(), req.Email, req.Password, service.SellerApplication{
			BrandName:        req.Seller.BrandName,
			BrandDescription: req.Seller.BrandDescription,
			BusinessType:     req.Seller.BusinessType,
			Website:          req.Seller.Website,
			ContactEmail:     req.Seller.ContactEmail,
			ContactPhone:     req.Seller.ContactPhone,
		})
	} else {
		account, err = h.authService.Register(r.Context(), req.Email, req.Password)
	}

	if err != nil {
		h.logger.Error("Registration failed", zap.Error(err))

		if err == repository.ErrAccountAlreadyExists {
			middleware.RespondWithError(w, http.StatusConflict, "account with this email already exists")
			return
		}
		if err == service.ErrEmailReserved {
			middleware.RespondWithError(w, http.StatusForbidden, "this email is reserved for admin accounts")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register account")
		return
	}

	h.logger.Info("Account registered successfully",
		zap.String("account_id", account.ID.String()),
		zap.String("role", string(account.Role)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, newAccountProfile(account))
}

// Login handles password authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, refreshToken, account, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug("Login failed", zap.Error(err))

		if err == service.ErrInvalidCredentials {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	response := LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      newAccountProfile(account),
	}

	h.logger.Info("Account logged in successfully", zap.String("account_id", account.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// LoginFederated handles identity-gateway sign-in
func (h *AuthHandler) LoginFederated(w http.ResponseWriter, r *http.Request) {
	var req FederatedLoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Federated login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, refreshToken, account, err := h.authService.LoginFederated(r.Context(), req.IDToken)
	if err != nil {
		h.logger.Debug("Federated login failed", zap.Error(err))

		if err == service.ErrInvalidToken {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid identity token")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	response := LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      newAccountProfile(account),
	}

	h.logger.Info("Federated login succeeded", zap.String("account_id", account.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// Logout handles session termination
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("Logout decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	h.logger.Info("Account logged out successfully")
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Refresh token validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newAccessToken, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Debug("Token refresh failed", zap.Error(err))

		if err == service.ErrInvalidToken {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		if err == service.ErrTokenExpired {
			middleware.RespondWithError(w, http.StatusUnauthorized, "refresh token expired")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RefreshResponse{AccessToken: newAccessToken})
}

// RequestPasswordReset dispatches a reset link
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error("Password reset request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to request password reset")
		return
	}

	// Same response whether or not the email is registered
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "if the email is registered, a reset link has been sent",
	})
}

// ConfirmPasswordReset consumes a reset token
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetConfirm

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		h.logger.Debug("Password reset confirmation failed", zap.Error(err))

		if err == service.ErrInvalidToken || err == service.ErrTokenExpired {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid or expired reset token")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "password updated successfully"})
}

// GetProfile handles getting the current account profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		h.logger.Error("Account ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	account, err := h.authService.GetAccountByID(r.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to get account profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get account profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newAccountProfile(account))
}
