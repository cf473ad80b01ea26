package models

import "github.com/shopspring/decimal"

// CartItem is one product line in a user's cart. IDs are unique per cart.
type CartItem struct {
	ID        int     `json:"id"`
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

// Subtotal returns unit price times quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.UnitPrice).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartSummary is the cart contents with a freshly computed total.
type CartSummary struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

// Carts is the persisted cart document: user email to ordered items.
type Carts map[string][]CartItem

type AddCartItemRequest struct {
	ProductID int  `json:"product_id" binding:"required"`
	Quantity  *int `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type CartCheckoutRequest struct {
	Gateway    string `json:"gateway" binding:"required"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}
