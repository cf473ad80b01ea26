package controllers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codmenta/Merify/controllers"
	"github.com/codmenta/Merify/database"
	apperrors "github.com/codmenta/Merify/errors"
	"github.com/codmenta/Merify/models"
	"github.com/codmenta/Merify/repository"
)

func TestCreateOrder(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("PlaceOrder", mock.Anything, testEmail).Return(&models.Order{ID: "o1", CustomerEmail: testEmail, Total: 25, Status: models.OrderStatusPending}, nil).Once()

	r := newTestEngine()
	oc := controllers.NewOrderController(svc)
	r.POST("/orders", oc.CreateOrder)

	w := doJSON(r, http.MethodPost, "/orders", "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)

	svc.On("PlaceOrder", mock.Anything, testEmail).Return(nil, apperrors.Validation("cannot place an order from an empty cart")).Once()
	w = doJSON(r, http.MethodPost, "/orders", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOrders(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("ListOrders", mock.Anything, testEmail).Return([]models.Order{{ID: "o1"}}, nil).Once()
	svc.On("ListOrders", mock.Anything, testEmail).Return(nil, apperrors.Store("load orders", errors.New("disk"))).Once()

	r := newTestEngine()
	oc := controllers.NewOrderController(svc)
	r.GET("/orders", oc.ListOrders)

	w := doJSON(r, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"store"`)
}

func TestListProductsAndHealth(t *testing.T) {
	store, err := database.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "products", models.Catalog{Products: []models.Product{{ID: 42, Name: "Widget", Price: 9.99}}}))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	pc := controllers.NewProductController(repository.NewProductRepository(store))
	r.GET("/products", pc.ListProducts)
	r.GET("/health", controllers.Health)

	w := doJSON(r, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Widget"`)

	w = doJSON(r, http.MethodGet, "/health", "")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
