package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"rads-market/internal/domain"
	"rads-market/internal/notify"
	"rads-market/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing

type mockAccountRepository struct {
	accounts map[string]*domain.Account
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *mockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if _, exists := m.accounts[account.Email]; exists {
		return repository.ErrAccountAlreadyExists
	}
	m.accounts[account.Email] = account
	return nil
}

func (m *mockAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	account, exists := m.accounts[email]
	if !exists {
		return nil, repository.ErrAccountNotFound
	}
	return account, nil
}

func (m *mockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	for _, account := range m.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (m *mockAccountRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role, status domain.SellerStatus) error {
	account, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	account.Role = role
	account.SellerStatus = status
	return nil
}

func (m *mockAccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	account, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	account.PasswordHash = passwordHash
	return nil
}

func (m *mockAccountRepository) RecordLogin(ctx context.Context, id uuid.UUID, role domain.Role, at time.Time) error {
	account, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	account.Role = role
	account.LastLoginAt = at
	return nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

type mockResetTokenRepository struct {
	tokens map[string]*domain.PasswordResetToken
}

func newMockResetTokenRepository() *mockResetTokenRepository {
	return &mockResetTokenRepository{
		tokens: make(map[string]*domain.PasswordResetToken),
	}
}

func (m *mockResetTokenRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockResetTokenRepository) FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	resetToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrResetTokenNotFound
	}
	if resetToken.Used {
		return nil, repository.ErrResetTokenUsed
	}
	return resetToken, nil
}

func (m *mockResetTokenRepository) MarkUsed(ctx context.Context, token string) error {
	resetToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrResetTokenNotFound
	}
	resetToken.Used = true
	return nil
}

type mockSellerRequestRepository struct {
	requests map[uuid.UUID]*domain.SellerRequest
}

func newMockSellerRequestRepository() *mockSellerRequestRepository {
	return &mockSellerRequestRepository{
		requests: make(map[uuid.UUID]*domain.SellerRequest),
	}
}

func (m *mockSellerRequestRepository) Create(ctx context.Context, request *domain.SellerRequest) error {
	for _, existing := range m.requests {
		if existing.AccountID == request.AccountID && existing.Status == domain.RequestStatusPending {
			return repository.ErrSellerRequestPending
		}
	}
	m.requests[request.ID] = request
	return nil
}

func (m *mockSellerRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.SellerRequest, error) {
	request, exists := m.requests[id]
	if !exists {
		return nil, repository.ErrSellerRequestNotFound
	}
	return request, nil
}

func (m *mockSellerRequestRepository) ListPending(ctx context.Context) ([]*domain.SellerRequest, error) {
	pending := []*domain.SellerRequest{}
	for _, request := range m.requests {
		if request.Status == domain.RequestStatusPending {
			pending = append(pending, request)
		}
	}
	return pending, nil
}

func (m *mockSellerRequestRepository) HasPending(ctx context.Context, accountID uuid.UUID) (bool, error) {
	for _, request := range m.requests {
		if request.AccountID == accountID && request.Status == domain.RequestStatusPending {
			return true, nil
		}
	}
	return false, nil
}

type mockProductRequestRepository struct {
	requests map[uuid.UUID]*domain.ProductRequest
}

func newMockProductRequestRepository() *mockProductRequestRepository {
	return &mockProductRequestRepository{
		requests: make(map[uuid.UUID]*domain.ProductRequest),
	}
}

func (m *mockProductRequestRepository) Create(ctx context.Context, request *domain.ProductRequest) error {
	m.requests[request.ID] = request
	return nil
}

func (m *mockProductRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductRequest, error) {
	request, exists := m.requests[id]
	if !exists {
		return nil, repository.ErrProductRequestNotFound
	}
	return request, nil
}

func (m *mockProductRequestRepository) ListPending(ctx context.Context) ([]*domain.ProductRequest, error) {
	pending := []*domain.ProductRequest{}
	for _, request := range m.requests {
		if request.Status == domain.RequestStatusPending {
			pending = append(pending, request)
		}
	}
	return pending, nil
}

func (m *mockProductRequestRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.ProductRequest, error) {
	mine := []*domain.ProductRequest{}
	for _, request := range m.requests {
		if request.SellerID == sellerID {
			mine = append(mine, request)
		}
	}
	return mine, nil
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
	}
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) List(ctx context.Context, category string, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	matched := []*domain.Product{}
	for _, product := range m.products {
		if category == "" || product.Category == category {
			matched = append(matched, product)
		}
	}
	return paginate(matched, page, pageSize), len(matched), nil
}

func (m *mockProductRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	matched := []*domain.Product{}
	needle := strings.ToLower(query)
	for _, product := range m.products {
		if strings.Contains(strings.ToLower(product.Title), needle) ||
			strings.Contains(strings.ToLower(product.Description), needle) {
			matched = append(matched, product)
		}
	}
	return paginate(matched, page, pageSize), len(matched), nil
}

func (m *mockProductRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.Product, error) {
	mine := []*domain.Product{}
	for _, product := range m.products {
		if product.SellerID == sellerID {
			mine = append(mine, product)
		}
	}
	return mine, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func paginate(products []*domain.Product, page, pageSize int) []*domain.Product {
	start := (page - 1) * pageSize
	if start >= len(products) {
		return []*domain.Product{}
	}
	end := start + pageSize
	if end > len(products) {
		end = len(products)
	}
	return products[start:end]
}

// mockApprovalStore executes the workflow transitions against the in-memory
// mocks, mirroring what the transactional store does against Postgres.
type mockApprovalStore struct {
	accounts        *mockAccountRepository
	sellerRequests  *mockSellerRequestRepository
	productRequests *mockProductRequestRepository
	products        *mockProductRepository
}

func newMockApprovalStore(
	accounts *mockAccountRepository,
	sellerRequests *mockSellerRequestRepository,
	productRequests *mockProductRequestRepository,
	products *mockProductRepository,
) *mockApprovalStore {
	return &mockApprovalStore{
		accounts:        accounts,
		sellerRequests:  sellerRequests,
		productRequests: productRequests,
		products:        products,
	}
}

func (m *mockApprovalStore) CreateSellerAccount(ctx context.Context, account *domain.Account, request *domain.SellerRequest) error {
	if err := m.accounts.Create(ctx, account); err != nil {
		return err
	}
	return m.sellerRequests.Create(ctx, request)
}

func (m *mockApprovalStore) SubmitSellerRequest(ctx context.Context, request *domain.SellerRequest) error {
	if err := m.sellerRequests.Create(ctx, request); err != nil {
		return err
	}
	return m.accounts.UpdateRole(ctx, request.AccountID, domain.RoleSeller, domain.SellerStatusPending)
}

func (m *mockApprovalStore) ApproveSellerRequest(ctx context.Context, requestID uuid.UUID) (*domain.SellerRequest, error) {
	request, err := m.sellerRequests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.RequestStatusPending {
		return nil, repository.ErrRequestNotPending
	}
	request.Status = domain.RequestStatusApproved
	request.UpdatedAt = time.Now()
	if err := m.accounts.UpdateRole(ctx, request.AccountID, domain.RoleSeller, domain.SellerStatusApproved); err != nil {
		return nil, err
	}
	return request, nil
}

func (m *mockApprovalStore) RejectSellerRequest(ctx context.Context, requestID uuid.UUID) (*domain.SellerRequest, error) {
	request, err := m.sellerRequests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.RequestStatusPending {
		return nil, repository.ErrRequestNotPending
	}
	delete(m.sellerRequests.requests, requestID)
	if err := m.accounts.UpdateRole(ctx, request.AccountID, domain.RoleCustomer, domain.SellerStatusNone); err != nil {
		return nil, err
	}
	request.Status = domain.RequestStatusRejected
	return request, nil
}

func (m *mockApprovalStore) ApproveProductRequest(ctx context.Context, requestID uuid.UUID) (*domain.Product, error) {
	request, err := m.productRequests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.RequestStatusPending {
		return nil, repository.ErrRequestNotPending
	}
	product := domain.FromRequest(request, time.Now())
	m.products.products[product.ID] = product
	delete(m.productRequests.requests, requestID)
	return product, nil
}

func (m *mockApprovalStore) RejectProductRequest(ctx context.Context, requestID uuid.UUID) (*domain.ProductRequest, error) {
	request, err := m.productRequests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.RequestStatusPending {
		return nil, repository.ErrRequestNotPending
	}
	delete(m.productRequests.requests, requestID)
	return request, nil
}

// mockPublisher records published events for assertions
type mockPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event notify.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockPublisher) published() []notify.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Event{}, m.events...)
}
