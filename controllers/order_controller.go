package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codmenta/Merify/middleware"
	"github.com/codmenta/Merify/services"
)

type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(svc services.OrderService) *OrderController {
	return &OrderController{orderService: svc}
}

// CreateOrder handles POST /api/orders
func (oc *OrderController) CreateOrder(c *gin.Context) {
	order, err := oc.orderService.PlaceOrder(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders handles GET /api/orders
func (oc *OrderController) ListOrders(c *gin.Context) {
	orders, err := oc.orderService.ListOrders(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
