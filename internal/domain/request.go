package domain

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus tracks where a submitted request sits in the approval
// workflow. Rejected requests are deleted rather than stored, so the value
// is only ever persisted as pending or approved.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// SellerRequest is a customer's application to become a seller. At most one
// pending request may exist per account.
type SellerRequest struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	AccountID        uuid.UUID     `json:"account_id" db:"account_id"`
	Email            string        `json:"email" db:"email"`
	BrandName        string        `json:"brand_name" db:"brand_name"`
	BrandDescription string        `json:"brand_description" db:"brand_description"`
	BusinessType     string        `json:"business_type" db:"business_type"`
	Website          string        `json:"website" db:"website"`
	ContactEmail     string        `json:"contact_email" db:"contact_email"`
	ContactPhone     string        `json:"contact_phone" db:"contact_phone"`
	Status           RequestStatus `json:"status" db:"status"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// ProductRequest is a candidate listing submitted by an approved seller.
// Approval copies it into the products table and deletes it; rejection just
// deletes it.
type ProductRequest struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	SellerID      uuid.UUID     `json:"seller_id" db:"seller_id"`
	SellerEmail   string        `json:"seller_email" db:"seller_email"`
	Title         string        `json:"title" db:"title"`
	Description   string        `json:"description" db:"description"`
	Price         float64       `json:"price" db:"price"`
	Category      string        `json:"category" db:"category"`
	AffiliateLink string        `json:"affiliate_link" db:"affiliate_link"`
	ImageKey      string        `json:"image_key" db:"image_key"`
	ImageURL      string        `json:"image_url" db:"image_url"`
	Status        RequestStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}
