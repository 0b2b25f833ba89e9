package catalog

import "time"

type Product struct {
	ID           string    `json:"id"`
	SellerID     string    `json:"seller"`
	Name         string    `json:"name"`
	Sold         int       `json:"sold"`
	CountInStock int       `json:"countInStock"`
	Variants     []Variant `json:"variants,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Variant struct {
	ProductID       string `json:"productId"`
	VariantID       string `json:"variantId"`
	Size            string `json:"size,omitempty"`
	Color           string `json:"color,omitempty"`
	Image           string `json:"image,omitempty"`
	PriceCents      int64  `json:"priceCents"`
	DiscountedCents int64  `json:"discountedCents,omitempty"`
	Stock           int    `json:"stock"`

	// SellerID and ProductName are denormalized from the owning product on reads.
	SellerID    string `json:"-"`
	ProductName string `json:"-"`
}

// EffectivePriceCents is the unit price a buyer pays: the discounted price
// when one is set, the list price otherwise.
func (v Variant) EffectivePriceCents() int64 {
	if v.DiscountedCents > 0 {
		return v.DiscountedCents
	}
	return v.PriceCents
}
