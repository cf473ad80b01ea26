package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/codmenta/Merify/database"
	apperrors "github.com/codmenta/Merify/errors"
	"github.com/codmenta/Merify/models"
)

const cartsDocument = "carts"

// CartRepository is the only component that reads or writes the carts
// document. Each user's items live under their email.
type CartRepository interface {
	LoadCart(ctx context.Context, userID string) ([]models.CartItem, error)
	SaveCart(ctx context.Context, userID string, items []models.CartItem) error
}

type documentCartRepository struct {
	store database.DocumentStore
	// mu serializes the whole-document read-modify-write in SaveCart.
	mu sync.Mutex
}

func NewCartRepository(store database.DocumentStore) CartRepository {
	return &documentCartRepository{store: store}
}

func (r *documentCartRepository) load(ctx context.Context) (models.Carts, error) {
	var carts models.Carts
	if err := r.store.Load(ctx, cartsDocument, &carts, models.Carts{}); err != nil {
		return nil, apperrors.Store("load carts", err)
	}
	if carts == nil {
		carts = models.Carts{}
	}
	return carts, nil
}

// LoadCart returns a copy of the user's items, or an empty slice when the
// user has no cart yet.
func (r *documentCartRepository) LoadCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	carts, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]models.CartItem, len(carts[userID]))
	copy(items, carts[userID])
	return items, nil
}

// SaveCart replaces only userID's entry. The document is re-read under the
// lock so concurrent saves for other users are never dropped.
func (r *documentCartRepository) SaveCart(ctx context.Context, userID string, items []models.CartItem) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.Validation("cart owner is required")
	}
	if items == nil {
		return apperrors.Validation("cart items must be a list")
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return apperrors.Validation("cart item %d has invalid quantity %d", it.ID, it.Quantity)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	carts, err := r.load(ctx)
	if err != nil {
		return err
	}
	carts[userID] = items
	if err := r.store.Save(ctx, cartsDocument, carts); err != nil {
		return apperrors.Store("save carts", err)
	}
	return nil
}
