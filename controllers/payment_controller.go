package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codmenta/Merify/middleware"
	"github.com/codmenta/Merify/models"
	"github.com/codmenta/Merify/services"
)

type PaymentController struct {
	paymentService services.PaymentService
}

func NewPaymentController(svc services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: svc}
}

// Config handles GET /api/payments/config
func (pc *PaymentController) Config(c *gin.Context) {
	c.JSON(http.StatusOK, pc.paymentService.PublicConfig())
}

// Gateways handles GET /api/payments/gateways
func (pc *PaymentController) Gateways(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "gateways": pc.paymentService.ListAvailableGateways()})
}

// CreateCheckoutSession handles POST /api/payments/create-checkout-session.
// The customer email always comes from the token.
func (pc *PaymentController) CreateCheckoutSession(c *gin.Context) {
	var req models.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := pc.paymentService.Checkout(c.Request.Context(), req.Gateway, req.LineItems, middleware.GetEmail(c),
		services.WithRedirects(req.SuccessURL, req.CancelURL),
		services.WithIdempotencyKey(c.GetHeader("Idempotency-Key")),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Verify handles GET /api/payments/verify/:gateway/:session_id
func (pc *PaymentController) Verify(c *gin.Context) {
	session, err := pc.paymentService.Verify(c.Request.Context(), c.Param("gateway"), c.Param("session_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// RefundSimulate handles POST /api/payments/refund-simulate
func (pc *PaymentController) RefundSimulate(c *gin.Context) {
	var req models.RefundRequest
	if !bindJSON(c, &req) {
		return
	}

	refund, err := pc.paymentService.SimulateRefund(req.Gateway, req.SessionID, req.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "refund": refund})
}
