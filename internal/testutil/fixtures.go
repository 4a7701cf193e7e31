package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/HerbHall/tradeboard/pkg/models"
)

var fixtureSeq atomic.Int64

// NewProduct returns an active Product with a unique SKU, suitable for test
// fixtures. Override individual fields with options.
func NewProduct(opts ...func(*models.Product)) models.Product {
	n := fixtureSeq.Add(1)
	p := models.Product{
		ID:          uuid.New().String(),
		SellerID:    "seller-1",
		SKU:         fmt.Sprintf("SKU-%05d", n),
		Name:        "Test Product",
		Category:    "fasteners",
		Status:      models.ProductStatusActive,
		PriceCents:  1000,
		Currency:    "USD",
		Stock:       100,
		MinOrderQty: 1,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithName sets the product name.
func WithName(name string) func(*models.Product) {
	return func(p *models.Product) { p.Name = name }
}

// WithSKU sets the product SKU.
func WithSKU(sku string) func(*models.Product) {
	return func(p *models.Product) { p.SKU = sku }
}

// WithProductStatus sets the product status.
func WithProductStatus(s models.ProductStatus) func(*models.Product) {
	return func(p *models.Product) { p.Status = s }
}

// WithCategory sets the product category.
func WithCategory(c string) func(*models.Product) {
	return func(p *models.Product) { p.Category = c }
}

// WithSeller sets the seller of a product.
func WithSeller(id string) func(*models.Product) {
	return func(p *models.Product) { p.SellerID = id }
}

// WithPrice sets the product price in cents.
func WithPrice(cents int64) func(*models.Product) {
	return func(p *models.Product) { p.PriceCents = cents }
}

// NewOrder returns a pending Order with a unique number.
func NewOrder(opts ...func(*models.Order)) models.Order {
	n := fixtureSeq.Add(1)
	o := models.Order{
		ID:         uuid.New().String(),
		Number:     fmt.Sprintf("PO-%05d", n),
		BuyerID:    "buyer-1",
		SellerID:   "seller-1",
		Status:     models.OrderStatusPending,
		TotalCents: 5000,
		Currency:   "USD",
		ItemCount:  1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithOrderStatus sets the order status.
func WithOrderStatus(s models.OrderStatus) func(*models.Order) {
	return func(o *models.Order) { o.Status = s }
}

// WithBuyer sets the buyer of an order.
func WithBuyer(id string) func(*models.Order) {
	return func(o *models.Order) { o.BuyerID = id }
}

// WithOrderSeller sets the seller of an order.
func WithOrderSeller(id string) func(*models.Order) {
	return func(o *models.Order) { o.SellerID = id }
}

// WithTotal sets the order total in cents.
func WithTotal(cents int64) func(*models.Order) {
	return func(o *models.Order) { o.TotalCents = cents }
}
