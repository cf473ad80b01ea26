package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codmenta/Merify/middleware"
	"github.com/codmenta/Merify/models"
	"github.com/codmenta/Merify/services"
)

// CartController handles HTTP requests for the authenticated user's cart.
type CartController struct {
	cartService services.CartService
}

func NewCartController(svc services.CartService) *CartController {
	return &CartController{cartService: svc}
}

// GetCart handles GET /api/cart
func (cc *CartController) GetCart(c *gin.Context) {
	items, err := cc.cartService.Items(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// AddItem handles POST /api/cart. A new line answers 201, a merge 200.
func (cc *CartController) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	item, created, err := cc.cartService.AddItem(c.Request.Context(), middleware.GetEmail(c), req.ProductID, qty)
	if err != nil {
		_ = c.Error(err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, item)
}

// UpdateItem handles PUT /api/cart/:item_id. A quantity of zero or less
// removes the line and answers 204.
func (cc *CartController) UpdateItem(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}
	var req models.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := cc.cartService.UpdateQuantity(c.Request.Context(), middleware.GetEmail(c), itemID, *req.Quantity)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if res.Removed {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, res.Item)
}

// RemoveItem handles DELETE /api/cart/:item_id
func (cc *CartController) RemoveItem(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}
	if err := cc.cartService.RemoveItem(c.Request.Context(), middleware.GetEmail(c), itemID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearCart handles DELETE /api/cart
func (cc *CartController) ClearCart(c *gin.Context) {
	if err := cc.cartService.Clear(c.Request.Context(), middleware.GetEmail(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Summary handles GET /api/cart/summary
func (cc *CartController) Summary(c *gin.Context) {
	summary, err := cc.cartService.Summary(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Checkout handles POST /api/cart/checkout
func (cc *CartController) Checkout(c *gin.Context) {
	var req models.CartCheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := cc.cartService.Checkout(c.Request.Context(), middleware.GetEmail(c), req.Gateway,
		services.WithRedirects(req.SuccessURL, req.CancelURL),
		services.WithIdempotencyKey(c.GetHeader("Idempotency-Key")),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}
