package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/codmenta/Merify/errors"
	"github.com/codmenta/Merify/events"
	"github.com/codmenta/Merify/logger"
	"github.com/codmenta/Merify/models"
	aws_pkg "github.com/codmenta/Merify/pkg/aws"
	"github.com/codmenta/Merify/repository"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, customerEmail string) (*models.Order, error)
	ListOrders(ctx context.Context, customerEmail string) ([]models.Order, error)
}

type orderService struct {
	orders    repository.OrderRepository
	carts     CartService
	publisher events.Publisher
	metrics   MetricsRecorder
	logger    *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, carts CartService, publisher events.Publisher, metrics MetricsRecorder, logger *zap.Logger) OrderService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &orderService{
		orders:    orders,
		carts:     carts,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// PlaceOrder records the current cart as a pending order.
func (s *orderService) PlaceOrder(ctx context.Context, customerEmail string) (*models.Order, error) {
	summary, err := s.carts.Summary(ctx, customerEmail)
	if err != nil {
		return nil, err
	}
	if len(summary.Items) == 0 {
		return nil, apperrors.Validation("cannot place an order from an empty cart")
	}

	items := make([]models.OrderItem, 0, len(summary.Items))
	for _, it := range summary.Items {
		items = append(items, models.OrderItem{
			ID:         it.ProductID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			FinalPrice: it.Subtotal().Round(2).InexactFloat64(),
		})
	}

	order := &models.Order{
		ID:            uuid.NewString(),
		Date:          time.Now().UTC().Format(time.RFC3339),
		CustomerEmail: customerEmail,
		Items:         items,
		Total:         summary.Total,
		Status:        models.OrderStatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	log := logger.For(ctx, s.logger)
	log.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("customer_email", customerEmail),
		zap.Float64("total", order.Total),
	)
	recordCount(s.metrics, aws_pkg.MetricOrdersCreated, nil)

	event := models.OrderEvent{
		Type:          models.EventOrderCreated,
		OrderID:       order.ID,
		CustomerEmail: customerEmail,
		Total:         order.Total,
		ItemCount:     len(items),
		Timestamp:     time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event.Type, order.ID, event); err != nil {
		log.Error("Failed to publish order event", zap.String("order_id", order.ID), zap.Error(err))
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, customerEmail string) ([]models.Order, error) {
	return s.orders.FindByCustomer(ctx, customerEmail)
}
