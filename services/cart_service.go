package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/codmenta/Merify/errors"
	"github.com/codmenta/Merify/logger"
	"github.com/codmenta/Merify/models"
	aws_pkg "github.com/codmenta/Merify/pkg/aws"
	"github.com/codmenta/Merify/repository"
)

// CartService owns the cart rules: one line per product, positive
// quantities, and ids unique within a user's cart.
type CartService interface {
	Items(ctx context.Context, userID string) ([]models.CartItem, error)
	AddItem(ctx context.Context, userID string, productID, quantity int) (*models.CartItem, bool, error)
	UpdateQuantity(ctx context.Context, userID string, itemID, quantity int) (*UpdateResult, error)
	RemoveItem(ctx context.Context, userID string, itemID int) error
	Clear(ctx context.Context, userID string) error
	Summary(ctx context.Context, userID string) (*models.CartSummary, error)
	Checkout(ctx context.Context, userID, gateway string, opts ...CheckoutOption) (*models.PaymentSession, error)
}

// UpdateResult carries the updated item, or Removed when the new quantity
// dropped the line from the cart.
type UpdateResult struct {
	Item    *models.CartItem
	Removed bool
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	payments PaymentService
	currency string
	locks    *keyedMutex
	metrics  MetricsRecorder
	logger   *zap.Logger
}

func NewCartService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	payments PaymentService,
	currency string,
	metrics MetricsRecorder,
	logger *zap.Logger,
) CartService {
	if currency == "" {
		currency = "usd"
	}
	return &cartService{
		carts:    carts,
		products: products,
		payments: payments,
		currency: strings.ToLower(currency),
		locks:    newKeyedMutex(),
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *cartService) Items(ctx context.Context, userID string) ([]models.CartItem, error) {
	return s.carts.LoadCart(ctx, userID)
}

// mutate runs load, fn and save as one unit for userID. fn reports whether
// anything changed; unchanged carts are not written back.
func (s *cartService) mutate(ctx context.Context, userID, op string, fn func(items []models.CartItem) ([]models.CartItem, bool, error)) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	items, err := s.carts.LoadCart(ctx, userID)
	if err != nil {
		return err
	}
	items, changed, err := fn(items)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := s.carts.SaveCart(ctx, userID, items); err != nil {
		logger.For(ctx, s.logger).Error("Failed to save cart", zap.String("user", userID), zap.String("operation", op), zap.Error(err))
		return err
	}
	recordCount(s.metrics, aws_pkg.MetricCartMutations, map[string]string{"Operation": op})
	return nil
}

// AddItem merges quantity into the product's line, or appends a new line.
// The boolean reports whether a new line was created.
func (s *cartService) AddItem(ctx context.Context, userID string, productID, quantity int) (*models.CartItem, bool, error) {
	if quantity < 1 {
		return nil, false, apperrors.Validation("quantity must be at least 1, got %d", quantity)
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, false, err
	}

	var (
		result  models.CartItem
		created bool
	)
	err = s.mutate(ctx, userID, "add", func(items []models.CartItem) ([]models.CartItem, bool, error) {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity += quantity
				result = items[i]
				return items, true, nil
			}
		}
		result = models.CartItem{
			ID:        nextItemID(items),
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  quantity,
			Image:     product.Image,
		}
		created = true
		return append(items, result), true, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &result, created, nil
}

func nextItemID(items []models.CartItem) int {
	highest := 0
	for _, it := range items {
		if it.ID > highest {
			highest = it.ID
		}
	}
	return highest + 1
}

func indexOf(items []models.CartItem, itemID int) int {
	for i := range items {
		if items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// UpdateQuantity sets an item's quantity. A quantity of zero or less removes
// the item.
func (s *cartService) UpdateQuantity(ctx context.Context, userID string, itemID, quantity int) (*UpdateResult, error) {
	res := &UpdateResult{}
	err := s.mutate(ctx, userID, "update", func(items []models.CartItem) ([]models.CartItem, bool, error) {
		i := indexOf(items, itemID)
		if i < 0 {
			return nil, false, apperrors.ItemNotFound(itemID)
		}
		if quantity <= 0 {
			res.Removed = true
			return append(items[:i], items[i+1:]...), true, nil
		}
		items[i].Quantity = quantity
		item := items[i]
		res.Item = &item
		return items, true, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID string, itemID int) error {
	return s.mutate(ctx, userID, "remove", func(items []models.CartItem) ([]models.CartItem, bool, error) {
		i := indexOf(items, itemID)
		if i < 0 {
			return nil, false, apperrors.ItemNotFound(itemID)
		}
		return append(items[:i], items[i+1:]...), true, nil
	})
}

// Clear empties the cart. Clearing an empty cart is not an error.
func (s *cartService) Clear(ctx context.Context, userID string) error {
	return s.mutate(ctx, userID, "clear", func(items []models.CartItem) ([]models.CartItem, bool, error) {
		return []models.CartItem{}, len(items) > 0, nil
	})
}

func (s *cartService) Summary(ctx context.Context, userID string) (*models.CartSummary, error) {
	items, err := s.carts.LoadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summarize(items), nil
}

func summarize(items []models.CartItem) *models.CartSummary {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return &models.CartSummary{Items: items, Total: total.Round(2).InexactFloat64()}
}

// Checkout turns the cart into line items and opens a payment session for
// them. The cart is left intact.
func (s *cartService) Checkout(ctx context.Context, userID, gateway string, opts ...CheckoutOption) (*models.PaymentSession, error) {
	items, err := s.carts.LoadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.Validation("cart is empty")
	}

	lineItems := make([]models.LineItem, 0, len(items))
	for _, it := range items {
		lineItems = append(lineItems, models.LineItem{
			PriceData: models.PriceData{
				Currency:   s.currency,
				UnitAmount: toMinorUnits(it.UnitPrice),
				ProductData: models.ProductData{
					Name: it.Name,
				},
			},
			Quantity: int64(it.Quantity),
		})
	}
	return s.payments.Checkout(ctx, gateway, lineItems, userID, opts...)
}

func toMinorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
