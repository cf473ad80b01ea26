package controllers_test

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/codmenta/Merify/errors"
	"github.com/codmenta/Merify/gateways"
	"github.com/codmenta/Merify/middleware"
	"github.com/codmenta/Merify/models"
	"github.com/codmenta/Merify/services"
)

const testEmail = "a@x.com"

// --- Mock Services ---

type MockCartService struct{ mock.Mock }

func (m *MockCartService) Items(ctx context.Context, userID string) ([]models.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CartItem), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, userID string, productID, quantity int) (*models.CartItem, bool, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.CartItem), args.Bool(1), args.Error(2)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, userID string, itemID, quantity int) (*services.UpdateResult, error) {
	args := m.Called(ctx, userID, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.UpdateResult), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID string, itemID int) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

func (m *MockCartService) Clear(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockCartService) Summary(ctx context.Context, userID string) (*models.CartSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartSummary), args.Error(1)
}

func (m *MockCartService) Checkout(ctx context.Context, userID, gateway string, opts ...services.CheckoutOption) (*models.PaymentSession, error) {
	args := m.Called(ctx, userID, gateway)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentSession), args.Error(1)
}

type MockPaymentService struct{ mock.Mock }

func (m *MockPaymentService) ListAvailableGateways() []string {
	return m.Called().Get(0).([]string)
}

func (m *MockPaymentService) ResolveGateway(name string) (gateways.Gateway, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(gateways.Gateway), args.Error(1)
}

func (m *MockPaymentService) Checkout(ctx context.Context, gatewayName string, lineItems []models.LineItem, customerEmail string, opts ...services.CheckoutOption) (*models.PaymentSession, error) {
	args := m.Called(ctx, gatewayName, lineItems, customerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentSession), args.Error(1)
}

func (m *MockPaymentService) Verify(ctx context.Context, gatewayName, sessionID string) (*models.PaymentSession, error) {
	args := m.Called(ctx, gatewayName, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentSession), args.Error(1)
}

func (m *MockPaymentService) SimulateRefund(gatewayName, sessionID string, amount float64) (*models.Refund, error) {
	args := m.Called(gatewayName, sessionID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Refund), args.Error(1)
}

func (m *MockPaymentService) PublicConfig() services.PublicConfig {
	return m.Called().Get(0).(services.PublicConfig)
}

func (m *MockPaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) PlaceOrder(ctx context.Context, customerEmail string) (*models.Order, error) {
	args := m.Called(ctx, customerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, customerEmail string) ([]models.Order, error) {
	args := m.Called(ctx, customerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

// --- helpers ---

// newTestEngine mounts the error renderer and a fake identity in place of
// the JWT middleware.
func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserKey, &models.User{Name: "Ana", Email: testEmail, Role: models.RoleCustomer})
		c.Set(middleware.EmailKey, testEmail)
		c.Next()
	})
	return r
}
