package repository

import (
	"context"

	"github.com/codmenta/Merify/database"
	apperrors "github.com/codmenta/Merify/errors"
	"github.com/codmenta/Merify/models"
)

const productsDocument = "products"

// ProductRepository reads the product catalog. The catalog is read-only here.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id int) (*models.Product, error)
}

type documentProductRepository struct {
	store database.DocumentStore
}

func NewProductRepository(store database.DocumentStore) ProductRepository {
	return &documentProductRepository{store: store}
}

func (r *documentProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	var catalog models.Catalog
	if err := r.store.Load(ctx, productsDocument, &catalog, models.Catalog{Products: []models.Product{}}); err != nil {
		return nil, apperrors.Store("load products", err)
	}
	if catalog.Products == nil {
		return []models.Product{}, nil
	}
	return catalog.Products, nil
}

func (r *documentProductRepository) FindByID(ctx context.Context, id int) (*models.Product, error) {
	products, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, apperrors.ProductNotFound(id)
}
