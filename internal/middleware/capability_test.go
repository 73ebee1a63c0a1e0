package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"rads-market/internal/domain"
	"rads-market/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

type stubAccountSource struct {
	accounts map[uuid.UUID]*domain.Account
}

func (s *stubAccountSource) GetAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, ok := s.accounts[accountID]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return account, nil
}

func requestWithAccount(accountID uuid.UUID) *http.Request {
	req := httptest.NewRequest("GET", "/test", nil)
	ctx := context.WithValue(req.Context(), AccountIDKey, accountID)
	return req.WithContext(ctx)
}

// Feature: affiliate-marketplace, Property 33: Capability guards enforce the capability table
// Validates: Requirements 1.1, 5.4
func TestProperty_CapabilityGuardMatchesCapabilityTable(t *testing.T) {
	properties := gopter.NewProperties(nil)

	roleStatusPairs := gen.OneConstOf(
		[2]string{"customer", "none"},
		[2]string{"seller", "pending"},
		[2]string{"seller", "approved"},
		[2]string{"seller", "rejected"},
		[2]string{"admin", "none"},
	)

	capabilities := gen.OneConstOf(
		domain.CapViewCustomerPages,
		domain.CapSubmitSellerRequest,
		domain.CapSubmitProductRequest,
		domain.CapViewSellerDashboard,
		domain.CapViewAdminDashboard,
	)

	properties.Property("the guard allows exactly what the capability table grants", prop.ForAll(
		func(pair [2]string, capability domain.Capability) bool {
			logger, _ := zap.NewDevelopment()

			role := domain.Role(pair[0])
			status := domain.SellerStatus(pair[1])

			account := &domain.Account{
				ID:           uuid.New(),
				Email:        "account@example.com",
				Role:         role,
				SellerStatus: status,
			}
			source := &stubAccountSource{accounts: map[uuid.UUID]*domain.Account{account.ID: account}}

			handler := RequireCapability(capability, source, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, requestWithAccount(account.ID))

			if domain.HasCapability(role, status, capability) {
				return w.Code == http.StatusOK
			}
			return w.Code == http.StatusForbidden
		},
		roleStatusPairs,
		capabilities,
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRequireCapability_UsesFreshAccountState(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	// The stored account is a plain customer even if an old token claimed more
	account := &domain.Account{
		ID:           uuid.New(),
		Role:         domain.RoleCustomer,
		SellerStatus: domain.SellerStatusNone,
	}
	source := &stubAccountSource{accounts: map[uuid.UUID]*domain.Account{account.ID: account}}

	handler := RequireCapability(domain.CapViewSellerDashboard, source, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := requestWithAccount(account.ID)
	ctx := context.WithValue(req.Context(), RoleKey, domain.RoleSeller)
	ctx = context.WithValue(ctx, SellerStatusKey, domain.SellerStatusApproved)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req.WithContext(ctx))

	if w.Code != http.StatusForbidden {
		t.Errorf("Guard should use stored state, not token claims; got %d", w.Code)
	}
}

func TestRequireCapability_UnknownAccountDenied(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	source := &stubAccountSource{accounts: map[uuid.UUID]*domain.Account{}}

	handler := RequireCapability(domain.CapViewCustomerPages, source, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithAccount(uuid.New()))

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for unknown account, got %d", w.Code)
	}
}

func TestRequireCapability_MissingAuthContextDenied(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	source := &stubAccountSource{accounts: map[uuid.UUID]*domain.Account{}}

	handler := RequireAdmin(source, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without auth context, got %d", w.Code)
	}
}
