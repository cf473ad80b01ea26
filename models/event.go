package models

import "time"

const (
	EventCheckoutSessionCreated = "checkout_session_created"
	EventPaymentVerified        = "payment_verified"
	EventPaymentWebhook         = "payment_webhook"
	EventOrderCreated           = "order_created"
)

// PaymentEvent is published for checkout and verification outcomes.
type PaymentEvent struct {
	Type          string    `json:"type"`
	Gateway       string    `json:"gateway"`
	SessionID     string    `json:"session_id"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	Status        string    `json:"status"`
	Amount        int64     `json:"amount"` // smallest currency unit
	Currency      string    `json:"currency"`
	Simulated     bool      `json:"simulated"`
	Timestamp     time.Time `json:"timestamp"`
}

// OrderEvent is published when an order is placed from a cart.
type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"order_id"`
	CustomerEmail string    `json:"customer_email"`
	Total         float64   `json:"total"`
	ItemCount     int       `json:"item_count"`
	Timestamp     time.Time `json:"timestamp"`
}
