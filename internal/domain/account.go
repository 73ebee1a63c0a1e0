package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the coarse account role stored on every account.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// SellerStatus qualifies the seller role. It is meaningful only when the
// account role is RoleSeller; every other role carries SellerStatusNone.
type SellerStatus string

const (
	SellerStatusNone     SellerStatus = "none"
	SellerStatusPending  SellerStatus = "pending"
	SellerStatusApproved SellerStatus = "approved"
	SellerStatusRejected SellerStatus = "rejected"
)

// Account represents a registered identity in the marketplace
type Account struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	Email        string       `json:"email" db:"email"`
	PasswordHash string       `json:"-" db:"password_hash"`
	Role         Role         `json:"role" db:"role"`
	SellerStatus SellerStatus `json:"seller_status" db:"seller_status"`
	BrandName    string       `json:"brand_name,omitempty" db:"brand_name"`
	LastLoginAt  time.Time    `json:"last_login_at" db:"last_login_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}
