package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/codmenta/Merify/errors"
)

// Stripe caps webhook payloads well below this.
const maxWebhookBody = 65536

// StripeWebhook handles POST /api/payments/stripe/webhook. The body is read
// raw because the signature covers the exact bytes.
func (pc *PaymentController) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		_ = c.Error(apperrors.Validation("unreadable webhook body"))
		return
	}

	if err := pc.paymentService.HandleStripeWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
