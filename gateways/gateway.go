package gateways

import (
	"context"
	"errors"

	"github.com/codmenta/Merify/config"
	"github.com/codmenta/Merify/models"
	"go.uber.org/zap"
)

// Gateway defines the contract every payment provider integration implements.
type Gateway interface {
	// Name is the lowercase registry key, e.g. "stripe".
	Name() string

	// CreatePaymentSession creates a checkout resource at the provider and
	// returns where the customer should be redirected.
	CreatePaymentSession(ctx context.Context, lineItems []models.LineItem, customerEmail, successURL, cancelURL string) (*models.PaymentSession, error)

	// VerifyTransaction re-reads the session from the provider.
	VerifyTransaction(ctx context.Context, sessionID string) (*models.PaymentSession, error)

	// IsAvailable reports whether the required credentials were present at
	// construction. It performs no I/O.
	IsAvailable() bool
}

// ErrInvalidReference marks a session or order id the provider does not know.
// It is a caller mistake, so it does not count against the circuit breaker.
var ErrInvalidReference = errors.New("unknown payment reference")

// ErrRejected marks a request the provider refused as malformed, such as an
// unsupported currency or an amount over its limit. Like ErrInvalidReference
// it does not count against the circuit breaker.
var ErrRejected = errors.New("payment request rejected by provider")

// Factory constructs one gateway. A factory may fail or even panic; the
// registry skips it and keeps going.
type Factory func() (Gateway, error)

// DefaultFactories returns the factories of every known provider, in
// registration order.
func DefaultFactories(cfg *config.Config, logger *zap.Logger) []Factory {
	return []Factory{
		func() (Gateway, error) {
			return NewStripeGateway(StripeConfig{
				SecretKey:     cfg.StripeSecretKey,
				WebhookSecret: cfg.StripeWebhookSecret,
				APIURL:        cfg.StripeAPIURL,
				Timeout:       cfg.GatewayTimeout,
			}, logger)
		},
		func() (Gateway, error) {
			return NewPayPalGateway(PayPalConfig{
				ClientID:     cfg.PayPalClientID,
				ClientSecret: cfg.PayPalClientSecret,
				Mode:         cfg.PayPalMode,
			}, logger), nil
		},
	}
}

// TotalMinor sums unit amount times quantity over the line items.
func TotalMinor(lineItems []models.LineItem) int64 {
	var total int64
	for _, li := range lineItems {
		total += li.PriceData.UnitAmount * li.Quantity
	}
	return total
}

func currencyOf(lineItems []models.LineItem) string {
	if len(lineItems) == 0 {
		return ""
	}
	return lineItems[0].PriceData.Currency
}
