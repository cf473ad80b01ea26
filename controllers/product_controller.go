package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codmenta/Merify/repository"
)

type ProductController struct {
	products repository.ProductRepository
}

func NewProductController(products repository.ProductRepository) *ProductController {
	return &ProductController{products: products}
}

// ListProducts handles GET /api/products
func (pc *ProductController) ListProducts(c *gin.Context) {
	products, err := pc.products.FindAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, products)
}
