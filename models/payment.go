package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session status values.
const (
	StatusCreated   = "created"
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// PaymentSession is the provider-agnostic result of starting or verifying a checkout.
type PaymentSession struct {
	Gateway        string `json:"gateway"`
	SessionID      string `json:"session_id,omitempty"`
	OrderID        string `json:"order_id,omitempty"`
	URL            string `json:"url,omitempty"`
	Status         string `json:"status"`
	Simulated      bool   `json:"simulated"`
	AmountTotal    *int64 `json:"amount_total,omitempty"`
	Currency       string `json:"currency,omitempty"`
	ProviderStatus string `json:"provider_status,omitempty"`
}

// Reference returns the provider-assigned id, whichever field carries it.
func (s *PaymentSession) Reference() string {
	if s.SessionID != "" {
		return s.SessionID
	}
	return s.OrderID
}

type ProductData struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}

type PriceData struct {
	Currency    string      `json:"currency" binding:"required,len=3"`
	UnitAmount  int64       `json:"unit_amount" binding:"gte=0"`
	ProductData ProductData `json:"product_data" binding:"required"`
}

// LineItem is one priced entry of a checkout request. Amounts are minor units.
type LineItem struct {
	PriceData PriceData `json:"price_data" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"gt=0"`
}

type CheckoutRequest struct {
	Gateway    string     `json:"gateway" binding:"required"`
	LineItems  []LineItem `json:"line_items"`
	SuccessURL string     `json:"success_url"`
	CancelURL  string     `json:"cancel_url"`
}

type RefundRequest struct {
	Gateway   string  `json:"gateway" binding:"required"`
	SessionID string  `json:"session_id" binding:"required"`
	Amount    float64 `json:"amount"`
}

// Refund describes a simulated refund; no provider is called.
type Refund struct {
	Gateway   string  `json:"gateway"`
	RefundID  string  `json:"refund_id"`
	SessionID string  `json:"session_id"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Simulated bool    `json:"simulated"`
}

// Payment is the audit row kept for every checkout session created.
type Payment struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Gateway       string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_gateway_session"`
	SessionID     string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_gateway_session"`
	CustomerEmail string    `gorm:"type:varchar(255);index;not null"`
	Amount        int64     `gorm:"not null"` // minor units
	Currency      string    `gorm:"type:varchar(10);not null"`
	Status        string    `gorm:"type:varchar(20);not null"`
	CheckoutURL   *string   `gorm:"type:varchar(2048)"`
	Simulated     bool      `gorm:"not null;default:false"`
	CompletedAt   *time.Time
	FailedAt      *time.Time
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}
