package orders

import "time"

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode,omitempty"`
}

// PaymentDetails is present only for gateway payments. TransactionID is the
// provider's payment identifier and is unique across orders; it is the key
// that makes checkout confirmation idempotent.
type PaymentDetails struct {
	TransactionID string `json:"transactionId"`
}

// OrderItem captures the variant as it was at purchase time. Price and
// display fields are snapshots, never re-read from the catalog.
type OrderItem struct {
	ProductID  string `json:"productId"`
	VariantID  string `json:"variantId"`
	Name       string `json:"name"`
	Size       string `json:"size,omitempty"`
	Color      string `json:"color,omitempty"`
	Image      string `json:"image,omitempty"`
	Qty        int    `json:"quantity"`
	PriceCents int64  `json:"priceAtPurchase"`
}

// Order is the consistency boundary for a purchase: line items are immutable
// after creation, only Status changes (through the transition service).
// Every item in one order belongs to a single seller.
type Order struct {
	ID            string          `json:"id"`
	OrderBy       string          `json:"orderBy"`
	SellerID      string          `json:"seller"`
	Items         []OrderItem     `json:"orderItems"`
	TotalCents    int64           `json:"totalAmount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Payment       *PaymentDetails `json:"paymentDetails,omitempty"`
	Status        Status          `json:"status"`
	Shipping      ShippingAddress `json:"shippingAddress"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// StockDelta is a signed inventory adjustment for one variant. Stock applies
// to the variant row, Sold and CountInStock to the owning product row. All
// ledger mutation goes through deltas; nothing read-modifies-writes a row.
type StockDelta struct {
	ProductID    string
	VariantID    string
	Stock        int
	Sold         int
	CountInStock int
}

// deltasFor builds the inventory adjustments for applying (sign = -1 deducts)
// or reverting (sign = +1 restores) an order's line items.
func deltasFor(items []OrderItem, sign int) []StockDelta {
	out := make([]StockDelta, 0, len(items))
	for _, it := range items {
		out = append(out, StockDelta{
			ProductID:    it.ProductID,
			VariantID:    it.VariantID,
			Stock:        sign * it.Qty,
			Sold:         -sign * it.Qty,
			CountInStock: sign * it.Qty,
		})
	}
	return out
}
