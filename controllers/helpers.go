package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/codmenta/Merify/errors"
)

// bindJSON binds the body and turns binding failures into validation errors.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		_ = c.Error(apperrors.Validation("invalid request: %s", err.Error()))
		return false
	}
	return true
}

func itemIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("item_id"))
	if err != nil {
		_ = c.Error(apperrors.Validation("item id %q is not a number", c.Param("item_id")))
		return 0, false
	}
	return id, true
}
