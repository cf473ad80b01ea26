package services

import (
	"context"
	"sync"
	"testing"

	"github.com/codmenta/Merify/database"
	"github.com/codmenta/Merify/gateways"
	"github.com/codmenta/Merify/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Stubs ---

type stubGateway struct {
	name      string
	available bool
	createErr error
	verifyErr error
	// block makes every call wait for its context to end.
	block bool

	mu          sync.Mutex
	creates     int
	lastSuccess string
	lastCancel  string
}

func newStub(name string) *stubGateway {
	return &stubGateway{name: name, available: true}
}

func (s *stubGateway) Name() string      { return s.name }
func (s *stubGateway) IsAvailable() bool { return s.available }

func (s *stubGateway) CreatePaymentSession(ctx context.Context, lineItems []models.LineItem, _, successURL, cancelURL string) (*models.PaymentSession, error) {
	s.mu.Lock()
	s.creates++
	s.lastSuccess, s.lastCancel = successURL, cancelURL
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.createErr != nil {
		return nil, s.createErr
	}
	total := gateways.TotalMinor(lineItems)
	return &models.PaymentSession{
		Gateway:     s.name,
		SessionID:   "cs_test_123456789",
		URL:         "https://pay.example.com/cs_test_123456789",
		Status:      models.StatusCreated,
		AmountTotal: &total,
		Currency:    lineItems[0].PriceData.Currency,
	}, nil
}

func (s *stubGateway) VerifyTransaction(ctx context.Context, sessionID string) (*models.PaymentSession, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	total := int64(2997)
	return &models.PaymentSession{
		Gateway:     s.name,
		SessionID:   sessionID,
		Status:      models.StatusCompleted,
		AmountTotal: &total,
		Currency:    "usd",
	}, nil
}

func (s *stubGateway) createCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

func factoryOf(g gateways.Gateway) gateways.Factory {
	return func() (gateways.Gateway, error) { return g, nil }
}

type publishedEvent struct {
	Type    string
	Key     string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Key: key, Payload: payload})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// --- Mocks ---

type MockPaymentRepository struct{ mock.Mock }

func (m *MockPaymentRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetPaymentBySession(ctx context.Context, gateway, sessionID string) (*models.Payment, error) {
	args := m.Called(ctx, gateway, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) UpdatePaymentStatus(ctx context.Context, gateway, sessionID, status string) error {
	args := m.Called(ctx, gateway, sessionID, status)
	return args.Error(0)
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

func (m *MockPaymentService) Checkout(ctx context.Context, gatewayName string, lineItems []models.LineItem, customerEmail string, opts ...CheckoutOption) (*models.PaymentSession, error) {
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

func (m *MockPaymentService) PublicConfig() PublicConfig {
	return m.Called().Get(0).(PublicConfig)
}

func (m *MockPaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}

// --- Fixtures ---

func widgetLineItems() []models.LineItem {
	return []models.LineItem{{
		PriceData: models.PriceData{
			Currency:    "usd",
			UnitAmount:  999,
			ProductData: models.ProductData{Name: "Widget"},
		},
		Quantity: 3,
	}}
}

func newDocumentStore(t *testing.T) database.DocumentStore {
	t.Helper()
	store, err := database.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func seedCatalog(t *testing.T, store database.DocumentStore, products ...models.Product) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), "products", models.Catalog{Products: products}))
}
