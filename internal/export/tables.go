package export

import (
	"strconv"
	"time"

	"github.com/HerbHall/tradeboard/pkg/models"
)

// Products is the CSV layout of the product list.
var Products = Table[models.Product]{
	Header: []string{
		"id", "seller_id", "sku", "name", "category", "status",
		"price", "currency", "stock", "min_order_qty", "created_at", "updated_at",
	},
	Row: func(p models.Product) []string {
		return []string{
			p.ID,
			p.SellerID,
			p.SKU,
			p.Name,
			p.Category,
			string(p.Status),
			formatCents(p.PriceCents),
			p.Currency,
			strconv.Itoa(p.Stock),
			strconv.Itoa(p.MinOrderQty),
			p.CreatedAt.Format(time.RFC3339),
			p.UpdatedAt.Format(time.RFC3339),
		}
	},
}

// Orders is the CSV layout of the order list.
var Orders = Table[models.Order]{
	Header: []string{
		"id", "number", "buyer_id", "seller_id", "status",
		"total", "currency", "item_count", "created_at", "updated_at",
	},
	Row: func(o models.Order) []string {
		return []string{
			o.ID,
			o.Number,
			o.BuyerID,
			o.SellerID,
			string(o.Status),
			formatCents(o.TotalCents),
			o.Currency,
			strconv.Itoa(o.ItemCount),
			o.CreatedAt.Format(time.RFC3339),
			o.UpdatedAt.Format(time.RFC3339),
		}
	},
}

// formatCents renders 12345 as "123.45".
func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	frac := strconv.FormatInt(c%100, 10)
	if len(frac) < 2 {
		frac = "0" + frac
	}
	return sign + strconv.FormatInt(c/100, 10) + "." + frac
}
