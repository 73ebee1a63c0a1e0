package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a live, publicly listable entry in the catalog. Presence in the
// products table is what makes a listing approved; there is no status column.
// The originating seller is kept for attribution only.
type Product struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	Price         float64   `json:"price" db:"price"`
	Category      string    `json:"category" db:"category"`
	AffiliateLink string    `json:"affiliate_link" db:"affiliate_link"`
	ImageKey      string    `json:"image_key" db:"image_key"`
	ImageURL      string    `json:"image_url" db:"image_url"`
	SellerID      uuid.UUID `json:"seller_id" db:"seller_id"`
	SellerEmail   string    `json:"seller_email" db:"seller_email"`
	ApprovedAt    time.Time `json:"approved_at" db:"approved_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// FromRequest builds a Product by copying every listing field from an
// approved ProductRequest and stamping the approval time.
func FromRequest(req *ProductRequest, approvedAt time.Time) *Product {
	return &Product{
		ID:            uuid.New(),
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		Category:      req.Category,
		AffiliateLink: req.AffiliateLink,
		ImageKey:      req.ImageKey,
		ImageURL:      req.ImageURL,
		SellerID:      req.SellerID,
		SellerEmail:   req.SellerEmail,
		ApprovedAt:    approvedAt,
		CreatedAt:     req.CreatedAt,
	}
}
