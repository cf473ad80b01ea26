package gateways

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/codmenta/Merify/models"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	// APIURL overrides the Stripe API base URL; empty means api.stripe.com.
	APIURL  string
	Timeout time.Duration
}

// StripeGateway creates Stripe Checkout sessions in payment mode. It owns its
// own API client, so the package-level stripe.Key is never touched.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	available     bool
	logger        *zap.Logger
}

func NewStripeGateway(cfg StripeConfig, logger *zap.Logger) (*StripeGateway, error) {
	g := &StripeGateway{
		webhookSecret: cfg.WebhookSecret,
		available:     cfg.SecretKey != "",
		logger:        logger.With(zap.String("gateway", "stripe")),
	}
	if !g.available {
		return g, nil
	}
	if strings.HasPrefix(cfg.SecretKey, "pk_") {
		return nil, fmt.Errorf("stripe secret key looks like a publishable key")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     logger.Sugar(),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	g.api = &client.API{}
	g.api.Init(cfg.SecretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return g, nil
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) IsAvailable() bool { return g.available }

func (g *StripeGateway) CreatePaymentSession(ctx context.Context, lineItems []models.LineItem, customerEmail, successURL, cancelURL string) (*models.PaymentSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(successURL),
		CancelURL:     stripe.String(cancelURL),
		CustomerEmail: stripe.String(customerEmail),
	}
	for _, li := range lineItems {
		item := &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(li.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(li.PriceData.Currency)),
				UnitAmount: stripe.Int64(li.PriceData.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.PriceData.ProductData.Name),
				},
			},
		}
		if d := li.PriceData.ProductData.Description; d != "" {
			item.PriceData.ProductData.Description = stripe.String(d)
		}
		params.LineItems = append(params.LineItems, item)
	}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, classifyStripeError("create checkout session", err)
	}

	g.logger.Info("Checkout session created",
		zap.String("session_id", s.ID),
		zap.Int64("amount_total", s.AmountTotal),
	)

	amount := s.AmountTotal
	return &models.PaymentSession{
		Gateway:        g.Name(),
		SessionID:      s.ID,
		URL:            s.URL,
		Status:         models.StatusCreated,
		AmountTotal:    &amount,
		Currency:       string(s.Currency),
		ProviderStatus: string(s.Status),
	}, nil
}

func (g *StripeGateway) VerifyTransaction(ctx context.Context, sessionID string) (*models.PaymentSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, classifyStripeError("retrieve checkout session "+sessionID, err)
	}

	amount := s.AmountTotal
	return &models.PaymentSession{
		Gateway:        g.Name(),
		SessionID:      s.ID,
		URL:            s.URL,
		Status:         stripeStatus(s.PaymentStatus, s.Status),
		AmountTotal:    &amount,
		Currency:       string(s.Currency),
		ProviderStatus: string(s.PaymentStatus),
	}, nil
}

// classifyStripeError separates requests Stripe refused from provider
// outages. Auth failures and rate limiting still count as outages.
func classifyStripeError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		code := stripeErr.HTTPStatusCode
		switch {
		case stripeErr.Code == stripe.ErrorCodeResourceMissing:
			return fmt.Errorf("stripe %s: %w: %v", op, ErrInvalidReference, err)
		case code >= 400 && code < 500 &&
			code != http.StatusUnauthorized &&
			code != http.StatusForbidden &&
			code != http.StatusTooManyRequests:
			return fmt.Errorf("stripe %s: %w: %v", op, ErrRejected, err)
		}
	}
	return fmt.Errorf("stripe %s: %w", op, err)
}

// stripeStatus maps Stripe's payment_status and session status to ours.
func stripeStatus(payment stripe.CheckoutSessionPaymentStatus, session stripe.CheckoutSessionStatus) string {
	switch {
	case payment == stripe.CheckoutSessionPaymentStatusPaid,
		payment == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return models.StatusCompleted
	case session == stripe.CheckoutSessionStatusExpired:
		return models.StatusFailed
	default:
		return models.StatusPending
	}
}

// WebhookEnabled reports whether signed webhooks can be verified.
func (g *StripeGateway) WebhookEnabled() bool {
	return g.webhookSecret != ""
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event.
// Events rendered with another account API version are still accepted.
func (g *StripeGateway) ParseWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	if g.webhookSecret == "" {
		return stripe.Event{}, fmt.Errorf("stripe webhook secret not configured")
	}
	return webhook.ConstructEventWithOptions(payload, sigHeader, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
