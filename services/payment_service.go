package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	apperrors "github.com/codmenta/Merify/errors"
	"github.com/codmenta/Merify/events"
	"github.com/codmenta/Merify/gateways"
	"github.com/codmenta/Merify/logger"
	"github.com/codmenta/Merify/models"
	aws_pkg "github.com/codmenta/Merify/pkg/aws"
	"github.com/codmenta/Merify/repository"
)

// PaymentService is the single place where provider differences are erased.
// Callers pick a gateway by name and always get a models.PaymentSession back.
type PaymentService interface {
	ListAvailableGateways() []string
	ResolveGateway(name string) (gateways.Gateway, error)
	Checkout(ctx context.Context, gatewayName string, lineItems []models.LineItem, customerEmail string, opts ...CheckoutOption) (*models.PaymentSession, error)
	Verify(ctx context.Context, gatewayName, sessionID string) (*models.PaymentSession, error)
	SimulateRefund(gatewayName, sessionID string, amount float64) (*models.Refund, error)
	PublicConfig() PublicConfig
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error
}

type PaymentConfig struct {
	FrontendURL          string
	Currency             string
	Timeout              time.Duration
	StripePublishableKey string
	PayPalClientID       string
	PayPalMode           string
	Breaker              gateways.BreakerSettings
}

// PublicConfig is what the storefront needs to render payment buttons.
type PublicConfig struct {
	StripePublishableKey string   `json:"stripe_publishable_key,omitempty"`
	PayPalClientID       string   `json:"paypal_client_id,omitempty"`
	PayPalMode           string   `json:"paypal_mode"`
	Currency             string   `json:"currency"`
	Gateways             []string `json:"gateways"`
}

type checkoutOptions struct {
	successURL     string
	cancelURL      string
	idempotencyKey string
}

type CheckoutOption func(*checkoutOptions)

// WithRedirects overrides the default success and cancel targets. Empty
// values keep the defaults.
func WithRedirects(successURL, cancelURL string) CheckoutOption {
	return func(o *checkoutOptions) {
		if successURL != "" {
			o.successURL = successURL
		}
		if cancelURL != "" {
			o.cancelURL = cancelURL
		}
	}
}

// WithIdempotencyKey makes a replayed checkout return the first session.
func WithIdempotencyKey(key string) CheckoutOption {
	return func(o *checkoutOptions) { o.idempotencyKey = strings.TrimSpace(key) }
}

type paymentService struct {
	cfg       PaymentConfig
	gateways  map[string]gateways.Gateway
	order     []string
	audit     repository.PaymentRepository
	idem      repository.IdempotencyRepository
	publisher events.Publisher
	metrics   MetricsRecorder
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService builds the gateway registry once. Every factory is tried
// on its own: an error, a panic or an unavailable gateway skips only that
// gateway. audit, idem and metrics may be nil.
func NewPaymentService(
	cfg PaymentConfig,
	factories []gateways.Factory,
	audit repository.PaymentRepository,
	idem repository.IdempotencyRepository,
	publisher events.Publisher,
	metrics MetricsRecorder,
	logger *zap.Logger,
) PaymentService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if publisher == nil {
		publisher = events.Noop{}
	}

	v := validator.New()
	v.SetTagName("binding")

	s := &paymentService{
		cfg:       cfg,
		gateways:  make(map[string]gateways.Gateway),
		audit:     audit,
		idem:      idem,
		publisher: publisher,
		metrics:   metrics,
		validate:  v,
		logger:    logger,
	}
	for i, f := range factories {
		s.register(i, f)
	}
	logger.Info("Payment gateways registered", zap.Strings("gateways", s.order))
	return s
}

func (s *paymentService) register(idx int, factory gateways.Factory) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("Payment gateway construction panicked, skipping",
				zap.Int("factory", idx),
				zap.Any("panic", r),
			)
		}
	}()

	g, err := factory()
	if err != nil {
		s.logger.Warn("Payment gateway unavailable", zap.Int("factory", idx), zap.Error(err))
		return
	}
	if g == nil || !g.IsAvailable() {
		if g != nil {
			s.logger.Info("Payment gateway not configured, skipping", zap.String("gateway", g.Name()))
		}
		return
	}

	name := strings.ToLower(g.Name())
	if _, dup := s.gateways[name]; dup {
		s.logger.Warn("Duplicate payment gateway ignored", zap.String("gateway", name))
		return
	}
	s.gateways[name] = gateways.WithBreaker(g, s.cfg.Breaker, s.logger)
	s.order = append(s.order, name)
}

func (s *paymentService) ListAvailableGateways() []string {
	return append([]string{}, s.order...)
}

func (s *paymentService) ResolveGateway(name string) (gateways.Gateway, error) {
	g, ok := s.gateways[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, apperrors.UnknownGateway(name, s.ListAvailableGateways())
	}
	return g, nil
}

func (s *paymentService) Checkout(ctx context.Context, gatewayName string, lineItems []models.LineItem, customerEmail string, opts ...CheckoutOption) (*models.PaymentSession, error) {
	if err := s.validateCheckout(lineItems, customerEmail); err != nil {
		return nil, err
	}
	g, err := s.ResolveGateway(gatewayName)
	if err != nil {
		return nil, err
	}

	o := checkoutOptions{
		successURL: s.cfg.FrontendURL + "/order/success",
		cancelURL:  s.cfg.FrontendURL + "/cart",
	}
	for _, opt := range opts {
		opt(&o)
	}

	log := logger.For(ctx, s.logger).With(zap.String("gateway", g.Name()))

	if o.idempotencyKey != "" && s.idem != nil {
		if session, found := s.recall(ctx, log, customerEmail, o.idempotencyKey); found {
			if !sameCheckout(session, g.Name(), lineItems) {
				return nil, apperrors.Conflict("Idempotency-Key %q was already used for a different checkout", o.idempotencyKey)
			}
			return session, nil
		}
		locked, err := s.idem.TryLock(ctx, customerEmail, o.idempotencyKey)
		if err != nil {
			log.Warn("Idempotency lock unavailable, continuing without it", zap.Error(err))
		} else if !locked {
			return nil, apperrors.Conflict("a checkout with this Idempotency-Key is already in progress")
		} else {
			defer func() {
				if err := s.idem.Unlock(context.WithoutCancel(ctx), customerEmail, o.idempotencyKey); err != nil {
					log.Warn("Failed to release idempotency lock", zap.Error(err))
				}
			}()
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	session, err := g.CreatePaymentSession(callCtx, lineItems, customerEmail, o.successURL, o.cancelURL)
	recordLatency(s.metrics, aws_pkg.MetricGatewayLatency, time.Since(start), map[string]string{"Gateway": g.Name(), "Operation": "create"})
	if err != nil {
		recordCount(s.metrics, aws_pkg.MetricCheckoutFailures, map[string]string{"Gateway": g.Name()})
		return nil, s.gatewayError(log, g.Name(), "create checkout session", err)
	}

	log.Info("Checkout session created",
		zap.String("session_id", session.Reference()),
		zap.String("customer_email", customerEmail),
		zap.Bool("simulated", session.Simulated),
	)
	recordCount(s.metrics, aws_pkg.MetricCheckoutSessions, map[string]string{"Gateway": g.Name()})

	if o.idempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, customerEmail, o.idempotencyKey, session); err != nil {
			log.Warn("Failed to remember idempotent checkout", zap.Error(err))
		}
	}

	amount := gateways.TotalMinor(lineItems)
	currency := strings.ToLower(lineItems[0].PriceData.Currency)
	s.recordPayment(ctx, log, session, customerEmail, amount, currency)
	s.publishEvent(ctx, log, models.PaymentEvent{
		Type:          models.EventCheckoutSessionCreated,
		Gateway:       session.Gateway,
		SessionID:     session.Reference(),
		CustomerEmail: customerEmail,
		Status:        session.Status,
		Amount:        amount,
		Currency:      currency,
		Simulated:     session.Simulated,
		Timestamp:     time.Now().UTC(),
	})

	return session, nil
}

func (s *paymentService) validateCheckout(lineItems []models.LineItem, customerEmail string) error {
	if len(lineItems) == 0 {
		return apperrors.Validation("line items must not be empty")
	}
	for i, li := range lineItems {
		if err := s.validate.Struct(li); err != nil {
			return apperrors.Validation("line item %d is invalid: %s", i, describeValidation(err))
		}
	}
	if err := s.validate.Var(customerEmail, "required,email"); err != nil {
		return apperrors.Validation("customer email %q is invalid", customerEmail)
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func (s *paymentService) recall(ctx context.Context, log *zap.Logger, scope, key string) (*models.PaymentSession, bool) {
	session, found, err := s.idem.Recall(ctx, scope, key)
	if err != nil {
		log.Warn("Idempotency lookup failed, continuing without it", zap.Error(err))
		return nil, false
	}
	if found {
		log.Info("Returning session for replayed Idempotency-Key", zap.String("session_id", session.Reference()))
	}
	return session, found
}

// sameCheckout reports whether a remembered session answers this request:
// same gateway, and the same total and currency when the session carries them.
func sameCheckout(session *models.PaymentSession, gateway string, lineItems []models.LineItem) bool {
	if !strings.EqualFold(session.Gateway, gateway) {
		return false
	}
	if session.AmountTotal != nil && *session.AmountTotal != gateways.TotalMinor(lineItems) {
		return false
	}
	if session.Currency != "" && !strings.EqualFold(session.Currency, lineItems[0].PriceData.Currency) {
		return false
	}
	return true
}

func (s *paymentService) Verify(ctx context.Context, gatewayName, sessionID string) (*models.PaymentSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperrors.Validation("session id is required")
	}
	g, err := s.ResolveGateway(gatewayName)
	if err != nil {
		return nil, err
	}
	log := logger.For(ctx, s.logger).With(zap.String("gateway", g.Name()), zap.String("session_id", sessionID))

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	session, err := g.VerifyTransaction(callCtx, sessionID)
	recordLatency(s.metrics, aws_pkg.MetricGatewayLatency, time.Since(start), map[string]string{"Gateway": g.Name(), "Operation": "verify"})
	if err != nil {
		return nil, s.gatewayError(log, g.Name(), "verify transaction", err)
	}

	log.Info("Payment verified", zap.String("status", session.Status))
	recordCount(s.metrics, aws_pkg.MetricPaymentVerified, map[string]string{"Gateway": g.Name(), "Status": session.Status})

	s.updatePaymentStatus(ctx, log, session.Gateway, sessionID, session.Status)

	var amount int64
	if session.AmountTotal != nil {
		amount = *session.AmountTotal
	}
	s.publishEvent(ctx, log, models.PaymentEvent{
		Type:      models.EventPaymentVerified,
		Gateway:   session.Gateway,
		SessionID: sessionID,
		Status:    session.Status,
		Amount:    amount,
		Currency:  session.Currency,
		Simulated: session.Simulated,
		Timestamp: time.Now().UTC(),
	})
	return session, nil
}

// gatewayError turns any provider failure into a KindGateway error. The
// provider text stays in the wrapped error and in the log.
func (s *paymentService) gatewayError(log *zap.Logger, gateway, op string, err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Kind == apperrors.KindGateway {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s: %w", s.cfg.Timeout, err)
	}
	log.Error("Payment gateway call failed", zap.String("operation", op), zap.Error(err))
	return apperrors.Gateway(gateway, op, err)
}

// SimulateRefund describes the refund the provider would issue. Nothing is
// sent to the provider.
func (s *paymentService) SimulateRefund(gatewayName, sessionID string, amount float64) (*models.Refund, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperrors.Validation("session id is required")
	}
	if amount < 0 {
		return nil, apperrors.Validation("refund amount must not be negative")
	}
	g, err := s.ResolveGateway(gatewayName)
	if err != nil {
		return nil, err
	}

	prefix := sessionID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	refund := &models.Refund{
		Gateway:   g.Name(),
		RefundID:  "sim_" + prefix,
		SessionID: sessionID,
		Status:    "succeeded",
		Amount:    amount,
		Currency:  strings.ToUpper(s.cfg.Currency),
		Simulated: true,
	}
	s.logger.Info("Simulated refund issued",
		zap.String("gateway", refund.Gateway),
		zap.String("refund_id", refund.RefundID),
		zap.Float64("amount", amount),
	)
	return refund, nil
}

func (s *paymentService) PublicConfig() PublicConfig {
	pub := PublicConfig{
		PayPalMode: s.cfg.PayPalMode,
		Currency:   s.cfg.Currency,
		Gateways:   s.ListAvailableGateways(),
	}
	if _, ok := s.gateways["stripe"]; ok {
		if strings.HasPrefix(s.cfg.StripePublishableKey, "sk_") {
			s.logger.Warn("STRIPE_PUBLISHABLE_KEY holds a secret key, not exposing it")
		} else {
			pub.StripePublishableKey = s.cfg.StripePublishableKey
		}
	}
	if _, ok := s.gateways["paypal"]; ok {
		pub.PayPalClientID = s.cfg.PayPalClientID
	}
	return pub
}

type stripeWebhookParser interface {
	WebhookEnabled() bool
	ParseWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

// terminalWebhookStatus maps the Stripe events that settle a checkout.
var terminalWebhookStatus = map[stripe.EventType]string{
	"checkout.session.completed":               models.StatusCompleted,
	"checkout.session.async_payment_succeeded": models.StatusCompleted,
	"checkout.session.async_payment_failed":    models.StatusFailed,
	"checkout.session.expired":                 models.StatusFailed,
}

// HandleStripeWebhook verifies a signed Stripe event and applies checkout
// outcomes to the audit log. Unrelated event types are acknowledged and ignored.
func (s *paymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	g, err := s.ResolveGateway("stripe")
	if err != nil {
		return err
	}
	parser, ok := gateways.Unwrap(g).(stripeWebhookParser)
	if !ok || !parser.WebhookEnabled() {
		return apperrors.Validation("stripe webhooks are not configured")
	}

	event, err := parser.ParseWebhook(payload, signature)
	if err != nil {
		s.logger.Warn("Rejected Stripe webhook", zap.Error(err))
		return apperrors.Validation("invalid stripe webhook signature")
	}

	log := logger.For(ctx, s.logger).With(zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))
	status, ok := terminalWebhookStatus[event.Type]
	if !ok {
		log.Debug("Ignoring Stripe event")
		return nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return apperrors.Validation("malformed checkout session in event %s", event.ID)
	}

	email := cs.CustomerEmail
	if cs.CustomerDetails != nil && cs.CustomerDetails.Email != "" {
		email = cs.CustomerDetails.Email
	}
	log.Info("Stripe checkout settled", zap.String("session_id", cs.ID), zap.String("status", status))

	s.updatePaymentStatus(ctx, log, "stripe", cs.ID, status)
	s.publishEvent(ctx, log, models.PaymentEvent{
		Type:          models.EventPaymentWebhook,
		Gateway:       "stripe",
		SessionID:     cs.ID,
		CustomerEmail: email,
		Status:        status,
		Amount:        cs.AmountTotal,
		Currency:      string(cs.Currency),
		Timestamp:     time.Now().UTC(),
	})
	return nil
}

func (s *paymentService) recordPayment(ctx context.Context, log *zap.Logger, session *models.PaymentSession, email string, amount int64, currency string) {
	if s.audit == nil {
		return
	}
	var url *string
	if session.URL != "" {
		u := session.URL
		url = &u
	}
	payment := &models.Payment{
		Gateway:       session.Gateway,
		SessionID:     session.Reference(),
		CustomerEmail: email,
		Amount:        amount,
		Currency:      currency,
		Status:        session.Status,
		CheckoutURL:   url,
		Simulated:     session.Simulated,
	}
	if err := s.audit.CreatePayment(ctx, payment); err != nil {
		log.Error("Failed to record payment audit row", zap.Error(err))
	}
}

func (s *paymentService) updatePaymentStatus(ctx context.Context, log *zap.Logger, gateway, sessionID, status string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.UpdatePaymentStatus(ctx, gateway, sessionID, status); err != nil {
		log.Error("Failed to update payment audit row", zap.Error(err))
	}
}

func (s *paymentService) publishEvent(ctx context.Context, log *zap.Logger, event models.PaymentEvent) {
	if err := s.publisher.Publish(ctx, event.Type, event.SessionID, event); err != nil {
		log.Error("Failed to publish payment event", zap.String("type", event.Type), zap.Error(err))
	}
}
