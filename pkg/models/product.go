package models

import "time"

// ProductStatus is the listing state of a product.
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

// Valid reports whether s is a known status.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusArchived:
		return true
	}
	return false
}

// Product is a seller's catalog listing.
type Product struct {
	ID          string        `json:"id" yaml:"id"`
	SellerID    string        `json:"sellerId" yaml:"seller_id"`
	SKU         string        `json:"sku" yaml:"sku"`
	Name        string        `json:"name" yaml:"name"`
	Category    string        `json:"category" yaml:"category"`
	Status      ProductStatus `json:"status" yaml:"status"`
	PriceCents  int64         `json:"priceCents" yaml:"price_cents"`
	Currency    string        `json:"currency" yaml:"currency"`
	Stock       int           `json:"stock" yaml:"stock"`
	MinOrderQty int           `json:"minOrderQty" yaml:"min_order_qty"`
	CreatedAt   time.Time     `json:"createdAt" yaml:"-"`
	UpdatedAt   time.Time     `json:"updatedAt" yaml:"-"`
}
