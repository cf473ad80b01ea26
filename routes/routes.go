package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/codmenta/Merify/controllers"
)

// Controllers groups every HTTP handler the API exposes.
type Controllers struct {
	Products *controllers.ProductController
	Cart     *controllers.CartController
	Payments *controllers.PaymentController
	Orders   *controllers.OrderController
}

// RegisterRoutes mounts the API under /api. requireAuth guards every route
// that acts on behalf of a user.
func RegisterRoutes(r *gin.Engine, c Controllers, requireAuth gin.HandlerFunc) {
	api := r.Group("/api")
	api.GET("/health", controllers.Health)
	api.GET("/products", c.Products.ListProducts)

	cart := api.Group("/cart")
	cart.Use(requireAuth)
	{
		cart.GET("", c.Cart.GetCart)
		cart.POST("", c.Cart.AddItem)
		cart.DELETE("", c.Cart.ClearCart)
		cart.GET("/summary", c.Cart.Summary)
		cart.POST("/checkout", c.Cart.Checkout)
		cart.PUT("/:item_id", c.Cart.UpdateItem)
		cart.DELETE("/:item_id", c.Cart.RemoveItem)
	}

	payments := api.Group("/payments")
	{
		payments.GET("/config", c.Payments.Config)
		payments.GET("/gateways", c.Payments.Gateways)
		payments.GET("/verify/:gateway/:session_id", c.Payments.Verify)
		// Stripe authenticates with its signature header, not a bearer token.
		payments.POST("/stripe/webhook", c.Payments.StripeWebhook)
		payments.POST("/create-checkout-session", requireAuth, c.Payments.CreateCheckoutSession)
		payments.POST("/refund-simulate", requireAuth, c.Payments.RefundSimulate)
	}

	orders := api.Group("/orders")
	orders.Use(requireAuth)
	{
		orders.POST("", c.Orders.CreateOrder)
		orders.GET("", c.Orders.ListOrders)
	}
}
