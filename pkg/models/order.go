package models

import "time"

// OrderStatus tracks an order through fulfillment.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a buyer's purchase from one seller.
type Order struct {
	ID         string      `json:"id" yaml:"id"`
	Number     string      `json:"number" yaml:"number"`
	BuyerID    string      `json:"buyerId" yaml:"buyer_id"`
	SellerID   string      `json:"sellerId" yaml:"seller_id"`
	Status     OrderStatus `json:"status" yaml:"status"`
	TotalCents int64       `json:"totalCents" yaml:"total_cents"`
	Currency   string      `json:"currency" yaml:"currency"`
	ItemCount  int         `json:"itemCount" yaml:"item_count"`
	CreatedAt  time.Time   `json:"createdAt" yaml:"-"`
	UpdatedAt  time.Time   `json:"updatedAt" yaml:"-"`
}
