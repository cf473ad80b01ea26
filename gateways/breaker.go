package gateways

import (
	"context"
	"errors"
	"time"

	"github.com/codmenta/Merify/models"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerSettings controls when a gateway's circuit opens.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

var DefaultBreakerSettings = BreakerSettings{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second}

// breakerGateway fails fast while the provider keeps failing. It never retries.
type breakerGateway struct {
	Gateway
	cb *gobreaker.CircuitBreaker[*models.PaymentSession]
}

// WithBreaker decorates g with a circuit breaker. Invalid references,
// rejected requests and caller cancellations do not count as provider failures.
func WithBreaker(g Gateway, s BreakerSettings, logger *zap.Logger) Gateway {
	if s.ConsecutiveFailures == 0 {
		s = DefaultBreakerSettings
	}
	cb := gobreaker.NewCircuitBreaker[*models.PaymentSession](gobreaker.Settings{
		Name:    g.Name(),
		Timeout: s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrInvalidReference) ||
				errors.Is(err, ErrRejected) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Gateway circuit breaker state changed",
				zap.String("gateway", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &breakerGateway{Gateway: g, cb: cb}
}

func (b *breakerGateway) CreatePaymentSession(ctx context.Context, lineItems []models.LineItem, customerEmail, successURL, cancelURL string) (*models.PaymentSession, error) {
	return b.cb.Execute(func() (*models.PaymentSession, error) {
		return b.Gateway.CreatePaymentSession(ctx, lineItems, customerEmail, successURL, cancelURL)
	})
}

func (b *breakerGateway) VerifyTransaction(ctx context.Context, sessionID string) (*models.PaymentSession, error) {
	return b.cb.Execute(func() (*models.PaymentSession, error) {
		return b.Gateway.VerifyTransaction(ctx, sessionID)
	})
}

// Unwrap returns the decorated gateway.
func (b *breakerGateway) Unwrap() Gateway {
	return b.Gateway
}

// Unwrap strips decorators until it reaches the concrete gateway.
func Unwrap(g Gateway) Gateway {
	for {
		u, ok := g.(interface{ Unwrap() Gateway })
		if !ok {
			return g
		}
		g = u.Unwrap()
	}
}
