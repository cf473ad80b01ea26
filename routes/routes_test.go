package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/codmenta/Merify/controllers"
)

func TestRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }

	RegisterRoutes(r, Controllers{
		Products: controllers.NewProductController(nil),
		Cart:     controllers.NewCartController(nil),
		Payments: controllers.NewPaymentController(nil),
		Orders:   controllers.NewOrderController(nil),
	}, deny)

	registered := map[string]bool{}
	for _, ri := range r.Routes() {
		registered[ri.Method+" "+ri.Path] = true
	}
	for _, route := range []string{
		"GET /api/health",
		"GET /api/products",
		"GET /api/cart",
		"POST /api/cart",
		"PUT /api/cart/:item_id",
		"DELETE /api/cart/:item_id",
		"DELETE /api/cart",
		"GET /api/cart/summary",
		"POST /api/cart/checkout",
		"GET /api/payments/config",
		"GET /api/payments/gateways",
		"POST /api/payments/create-checkout-session",
		"GET /api/payments/verify/:gateway/:session_id",
		"POST /api/payments/refund-simulate",
		"POST /api/payments/stripe/webhook",
		"POST /api/orders",
		"GET /api/orders",
	} {
		assert.True(t, registered[route], "missing route %s", route)
	}

	protected := []struct{ method, path string }{
		{http.MethodGet, "/api/cart"},
		{http.MethodPost, "/api/cart/checkout"},
		{http.MethodPost, "/api/payments/create-checkout-session"},
		{http.MethodPost, "/api/payments/refund-simulate"},
		{http.MethodGet, "/api/orders"},
	}
	for _, p := range protected {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", p.method, p.path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
