package repository

import (
	"context"
	"sync"

	"github.com/codmenta/Merify/database"
	apperrors "github.com/codmenta/Merify/errors"
	"github.com/codmenta/Merify/models"
)

const ordersDocument = "orders"

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByCustomer(ctx context.Context, email string) ([]models.Order, error)
}

type documentOrderRepository struct {
	store database.DocumentStore
	mu    sync.Mutex
}

func NewOrderRepository(store database.DocumentStore) OrderRepository {
	return &documentOrderRepository{store: store}
}

func (r *documentOrderRepository) load(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.store.Load(ctx, ordersDocument, &orders, []models.Order{}); err != nil {
		return nil, apperrors.Store("load orders", err)
	}
	return orders, nil
}

// Create appends order to the orders document.
func (r *documentOrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load(ctx)
	if err != nil {
		return err
	}
	orders = append(orders, *order)
	if err := r.store.Save(ctx, ordersDocument, orders); err != nil {
		return apperrors.Store("save orders", err)
	}
	return nil
}

func (r *documentOrderRepository) FindByCustomer(ctx context.Context, email string) ([]models.Order, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Order{}
	for _, o := range orders {
		if o.CustomerEmail == email {
			out = append(out, o)
		}
	}
	return out, nil
}
