package middleware

import (
	"context"
	"net/http"

	"rads-market/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountSource loads the current account state for a capability check.
// Guards fetch fresh state instead of trusting token claims, so a demotion
// takes effect on the next request rather than at token expiry.
type AccountSource interface {
	GetAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
}

// RequireCapability gates a route on one capability derived from the
// account's current role and seller status. Unknown accounts and lookup
// failures both deny.
func RequireCapability(capability domain.Capability, accounts AccountSource, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, ok := GetAccountID(r.Context())
			if !ok {
				logger.Warn("Account ID not found in context")
				RespondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			account, err := accounts.GetAccountByID(r.Context(), accountID)
			if err != nil {
				logger.Warn("Failed to load account for capability check",
					zap.String("account_id", accountID.String()),
					zap.Error(err),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !domain.HasCapability(account.Role, account.SellerStatus, capability) {
				logger.Warn("Account lacks required capability",
					zap.String("account_id", accountID.String()),
					zap.String("role", string(account.Role)),
					zap.String("seller_status", string(account.SellerStatus)),
					zap.String("capability", string(capability)),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates a route on the admin dashboard capability
func RequireAdmin(accounts AccountSource, logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireCapability(domain.CapViewAdminDashboard, accounts, logger)
}
