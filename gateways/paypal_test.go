package gateways

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/codmenta/Merify/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPayPalGateway_Availability(t *testing.T) {
	assert.False(t, NewPayPalGateway(PayPalConfig{ClientID: "id"}, zap.NewNop()).IsAvailable())
	assert.True(t, NewPayPalGateway(PayPalConfig{ClientID: "id", ClientSecret: "secret"}, zap.NewNop()).IsAvailable())
}

func TestPayPalGateway_CreatePaymentSession(t *testing.T) {
	g := NewPayPalGateway(PayPalConfig{ClientID: "id", ClientSecret: "secret"}, zap.NewNop())

	session, err := g.CreatePaymentSession(context.Background(), widgetItems(), "a@x.com", "s", "c")
	require.NoError(t, err)

	assert.Equal(t, "paypal", session.Gateway)
	assert.True(t, strings.HasPrefix(session.OrderID, "PAYPAL-"))
	assert.Equal(t, "https://www.sandbox.paypal.com/checkoutnow?token="+session.OrderID, session.URL)
	assert.Equal(t, models.StatusCreated, session.Status)
	assert.True(t, session.Simulated)
	assert.Equal(t, int64(2997), *session.AmountTotal)
	assert.Equal(t, session.OrderID, session.Reference())
}

func TestPayPalGateway_LiveMode(t *testing.T) {
	g := NewPayPalGateway(PayPalConfig{ClientID: "id", ClientSecret: "secret", Mode: "live"}, zap.NewNop())

	session, err := g.CreatePaymentSession(context.Background(), widgetItems(), "a@x.com", "s", "c")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(session.URL, "https://www.paypal.com/checkoutnow?token=PAYPAL-"))
}

func TestPayPalGateway_VerifyTransaction(t *testing.T) {
	g := NewPayPalGateway(PayPalConfig{ClientID: "id", ClientSecret: "secret"}, zap.NewNop())

	created, err := g.CreatePaymentSession(context.Background(), widgetItems(), "a@x.com", "s", "c")
	require.NoError(t, err)

	verified, err := g.VerifyTransaction(context.Background(), created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, verified.Status)
	assert.True(t, verified.Simulated)

	for _, id := range []string{"", "cs_test_1", "PAYPAL-", "PAYPAL-not-a-uuid"} {
		_, err := g.VerifyTransaction(context.Background(), id)
		assert.True(t, errors.Is(err, ErrInvalidReference), id)
	}
}
