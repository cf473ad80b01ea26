package gateways

import (
	"context"
	"fmt"
	"strings"

	"github.com/codmenta/Merify/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const payPalOrderPrefix = "PAYPAL-"

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	Mode         string // sandbox or live
}

// PayPalGateway is a simulated wallet integration. It never calls PayPal;
// every session it returns is flagged Simulated.
type PayPalGateway struct {
	available    bool
	checkoutHost string
	logger       *zap.Logger
}

func NewPayPalGateway(cfg PayPalConfig, logger *zap.Logger) *PayPalGateway {
	host := "https://www.sandbox.paypal.com"
	if cfg.Mode == "live" {
		host = "https://www.paypal.com"
	}
	return &PayPalGateway{
		available:    cfg.ClientID != "" && cfg.ClientSecret != "",
		checkoutHost: host,
		logger:       logger.With(zap.String("gateway", "paypal")),
	}
}

func (g *PayPalGateway) Name() string { return "paypal" }

func (g *PayPalGateway) IsAvailable() bool { return g.available }

func (g *PayPalGateway) CreatePaymentSession(_ context.Context, lineItems []models.LineItem, customerEmail, _, _ string) (*models.PaymentSession, error) {
	orderID := payPalOrderPrefix + uuid.NewString()
	totalMinor := TotalMinor(lineItems)
	currency := currencyOf(lineItems)

	g.logger.Info("Simulated PayPal order created",
		zap.String("order_id", orderID),
		zap.String("customer_email", customerEmail),
		zap.String("total", decimal.New(totalMinor, -2).StringFixed(2)),
		zap.String("currency", currency),
	)

	return &models.PaymentSession{
		Gateway:     g.Name(),
		OrderID:     orderID,
		URL:         fmt.Sprintf("%s/checkoutnow?token=%s", g.checkoutHost, orderID),
		Status:      models.StatusCreated,
		Simulated:   true,
		AmountTotal: &totalMinor,
		Currency:    currency,
	}, nil
}

// VerifyTransaction approves any order id this gateway could have issued.
func (g *PayPalGateway) VerifyTransaction(_ context.Context, sessionID string) (*models.PaymentSession, error) {
	if !isPayPalOrderID(sessionID) {
		return nil, fmt.Errorf("paypal order %q: %w", sessionID, ErrInvalidReference)
	}
	return &models.PaymentSession{
		Gateway:        g.Name(),
		OrderID:        sessionID,
		Status:         models.StatusCompleted,
		Simulated:      true,
		ProviderStatus: "COMPLETED",
	}, nil
}

func isPayPalOrderID(id string) bool {
	rest, ok := strings.CutPrefix(id, payPalOrderPrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
