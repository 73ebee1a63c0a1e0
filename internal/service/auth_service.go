package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rads-market/internal/config"
	"rads-market/internal/domain"
	"rads-market/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// PasswordResetExpiration bounds how long a reset link stays valid
	PasswordResetExpiration = 1 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrEmailReserved      = errors.New("email is reserved for admin accounts")
)

// AdminDirectory answers whether an email belongs to a platform operator.
// It is consulted on every login, so allow-list changes apply at the next
// sign-in without touching stored accounts.
type AdminDirectory interface {
	IsAdmin(email string) bool
}

// StaticAdminDirectory matches emails against a fixed allow-list. Matching
// is exact and case-sensitive.
type StaticAdminDirectory struct {
	emails map[string]struct{}
}

// NewStaticAdminDirectory builds a directory from the configured list
func NewStaticAdminDirectory(emails []string) *StaticAdminDirectory {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		set[email] = struct{}{}
	}
	return &StaticAdminDirectory{emails: set}
}

func (d *StaticAdminDirectory) IsAdmin(email string) bool {
	_, ok := d.emails[email]
	return ok
}

// Mailer delivers password reset links out of band.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer writes reset tokens to the log instead of sending mail. It
// stands in until an SMTP or provider integration is configured.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.logger.Info("Password reset requested",
		zap.String("email", email),
		zap.String("token", token),
	)
	return nil
}

// SellerApplication carries the brand details a seller supplies at signup
// or when applying for an upgrade from an existing customer account.
type SellerApplication struct {
	BrandName        string
	BrandDescription string
	BusinessType     string
	Website          string
	ContactEmail     string
	ContactPhone     string
}

// AuthService defines the interface for identity and session business logic
type AuthService interface {
	// Register creates a plain customer account.
	Register(ctx context.Context, email, password string) (*domain.Account, error)

	// RegisterSeller creates an account that starts in the seller-pending
	// state, together with its seller request.
	RegisterSeller(ctx context.Context, email, password string, application SellerApplication) (*domain.Account, error)

	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, account *domain.Account, err error)

	// LoginFederated accepts an identity-gateway ID token instead of a
	// password. A first-time federated login creates the account.
	LoginFederated(ctx context.Context, idToken string) (accessToken, refreshToken string, account *domain.Account, err error)

	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	GetAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)

	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

// Claims represents the JWT claims
type Claims struct {
	AccountID    uuid.UUID           `json:"account_id"`
	Role         domain.Role         `json:"role"`
	SellerStatus domain.SellerStatus `json:"seller_status"`
	jwt.RegisteredClaims
}

type authService struct {
	accountRepo      repository.AccountRepository
	refreshTokenRepo repository.RefreshTokenRepository
	resetTokenRepo   repository.ResetTokenRepository
	approvalStore    repository.ApprovalStore
	adminDirectory   AdminDirectory
	mailer           Mailer
	jwtSecret        string
	federatedSecret  string
	accessExpiry     time.Duration
	refreshExpiry    time.Duration
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(
	accountRepo repository.AccountRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	resetTokenRepo repository.ResetTokenRepository,
	approvalStore repository.ApprovalStore,
	adminDirectory AdminDirectory,
	mailer Mailer,
	jwtCfg config.JWTConfig,
) AuthService {
	return &authService{
		accountRepo:      accountRepo,
		refreshTokenRepo: refreshTokenRepo,
		resetTokenRepo:   resetTokenRepo,
		approvalStore:    approvalStore,
		adminDirectory:   adminDirectory,
		mailer:           mailer,
		jwtSecret:        jwtCfg.Secret,
		federatedSecret:  jwtCfg.FederatedSecret,
		accessExpiry:     time.Duration(jwtCfg.AccessExpiry) * time.Minute,
		refreshExpiry:    time.Duration(jwtCfg.RefreshExpiry) * 24 * time.Hour,
	}
}

// Register creates a new customer account with hashed password. Allow-listed
// admin emails cannot sign up; admin accounts are provisioned out of band.
func (s *authService) Register(ctx context.Context, email, password string) (*domain.Account, error) {
	if s.adminDirectory.IsAdmin(email) {
		return nil, ErrEmailReserved
	}

	hashedPassword, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	account := &domain.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         domain.RoleCustomer,
		SellerStatus: domain.SellerStatusNone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// RegisterSeller creates a seller-pending account together with its seller
// request. The two rows are written atomically so a signup can never leave
// a pending seller without a request for admins to decide.
func (s *authService) RegisterSeller(ctx context.Context, email, password string, application SellerApplication) (*domain.Account, error) {
	if s.adminDirectory.IsAdmin(email) {
		return nil, ErrEmailReserved
	}

	hashedPassword, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	account := &domain.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         domain.RoleSeller,
		SellerStatus: domain.SellerStatusPending,
		BrandName:    application.BrandName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	request := &domain.SellerRequest{
		ID:               uuid.New(),
		AccountID:        account.ID,
		Email:            email,
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

	if err := s.approvalStore.CreateSellerAccount(ctx, account, request); err != nil {
		return nil, err
	}

	return account, nil
}

// Login authenticates an account and returns JWT tokens. The admin
// allow-list is checked on every successful login: a listed email is
// promoted to admin before tokens are minted, and the promotion is
// idempotent for accounts that are already admins.
func (s *authService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, account *domain.Account, err error) {
	account, err = s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrAccountNotFound {
			return "", "", nil, ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("failed to find account: %w", err)
	}

	if err := s.verifyPassword(account.PasswordHash, password); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	return s.establishSession(ctx, account)
}

// LoginFederated validates an identity-gateway ID token, finds or creates
// the matching account, and establishes a session for it.
func (s *authService) LoginFederated(ctx context.Context, idToken string) (accessToken, refreshToken string, account *domain.Account, err error) {
	email, err := s.verifyFederatedToken(idToken)
	if err != nil {
		return "", "", nil, err
	}

	account, err = s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if err != repository.ErrAccountNotFound {
			return "", "", nil, fmt.Errorf("failed to find account: %w", err)
		}

		// First federated sign-in creates a customer account with no local
		// password.
		now := time.Now()
		account = &domain.Account{
			ID:           uuid.New(),
			Email:        email,
			Role:         domain.RoleCustomer,
			SellerStatus: domain.SellerStatusNone,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.accountRepo.Create(ctx, account); err != nil {
			return "", "", nil, err
		}
	}

	return s.establishSession(ctx, account)
}

// establishSession applies the allow-list promotion, records the login, and
// mints the token pair.
func (s *authService) establishSession(ctx context.Context, account *domain.Account) (string, string, *domain.Account, error) {
	if s.adminDirectory != nil && s.adminDirectory.IsAdmin(account.Email) {
		account.Role = domain.RoleAdmin
	}

	if err := s.accountRepo.RecordLogin(ctx, account.ID, account.Role, time.Now()); err != nil {
		return "", "", nil, fmt.Errorf("failed to record login: %w", err)
	}

	accessToken, err := s.generateAccessToken(account)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.generateRefreshToken(ctx, account)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, account, nil
}

// Logout invalidates the refresh token
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.Revoke(ctx, refreshToken); err != nil {
		if err == repository.ErrRefreshTokenNotFound {
			// Token doesn't exist, consider it already logged out
			return nil
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken generates a new access token using a valid refresh token.
// The account is reloaded so the token reflects the current role, not the
// role at session start.
func (s *authService) RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, err error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if err == repository.ErrRefreshTokenNotFound || err == repository.ErrRefreshTokenRevoked {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find refresh token: %w", err)
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		return "", ErrTokenExpired
	}

	account, err := s.accountRepo.FindByID(ctx, refreshToken.AccountID)
	if err != nil {
		return "", fmt.Errorf("failed to find account: %w", err)
	}

	newAccessToken, err = s.generateAccessToken(account)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return newAccessToken, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetAccountByID retrieves an account by ID
func (s *authService) GetAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// RequestPasswordReset issues a single-use reset token and dispatches it.
// An unknown email is treated as success so the endpoint cannot be used to
// probe which addresses are registered.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrAccountNotFound {
			return nil
		}
		return fmt.Errorf("failed to find account: %w", err)
	}

	now := time.Now()
	token := &domain.PasswordResetToken{
		ID:        uuid.New(),
		AccountID: account.ID,
		Token:     uuid.New().String(),
		ExpiresAt: now.Add(PasswordResetExpiration),
		CreatedAt: now,
	}

	if err := s.resetTokenRepo.Create(ctx, token); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, account.Email, token.Token); err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}

	return nil
}

// ConfirmPasswordReset consumes a reset token and replaces the password
func (s *authService) ConfirmPasswordReset(ctx context.Context, tokenString, newPassword string) error {
	token, err := s.resetTokenRepo.FindByToken(ctx, tokenString)
	if err != nil {
		if err == repository.ErrResetTokenNotFound || err == repository.ErrResetTokenUsed {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to find reset token: %w", err)
	}

	if time.Now().After(token.ExpiresAt) {
		return ErrTokenExpired
	}

	hashedPassword, err := s.hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accountRepo.UpdatePassword(ctx, token.AccountID, hashedPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.resetTokenRepo.MarkUsed(ctx, tokenString); err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	return nil
}

// verifyFederatedToken checks the gateway ID token signature and extracts
// the subject email.
func (s *authService) verifyFederatedToken(idToken string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.federatedSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrInvalidToken
	}

	return email, nil
}

// hashPassword hashes a password using bcrypt
func (s *authService) hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// verifyPassword verifies a password against a bcrypt hash
func (s *authService) verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// generateAccessToken generates a JWT access token carrying the account ID,
// role, and seller status
func (s *authService) generateAccessToken(account *domain.Account) (string, error) {
	expirationTime := time.Now().Add(s.accessExpiry)
	claims := &Claims{
		AccountID:    account.ID,
		Role:         account.Role,
		SellerStatus: account.SellerStatus,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// generateRefreshToken generates a refresh token and stores it in the database
func (s *authService) generateRefreshToken(ctx context.Context, account *domain.Account) (string, error) {
	tokenString := uuid.New().String()

	refreshToken := &domain.RefreshToken{
		ID:        uuid.New(),
		AccountID: account.ID,
		Token:     tokenString,
		ExpiresAt: time.Now().Add(s.refreshExpiry),
		CreatedAt: time.Now(),
		Revoked:   false,
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}

	return tokenString, nil
}
