package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codmenta/Merify/auth"
	apperrors "github.com/codmenta/Merify/errors"
	"github.com/codmenta/Merify/logger"
	"github.com/codmenta/Merify/models"
	"github.com/codmenta/Merify/repository"
)

const (
	UserKey  = "user"
	EmailKey = "email"
)

var errBadCredentials = apperrors.New(http.StatusUnauthorized, apperrors.KindUnauthorized, "could not validate credentials", nil)

// AuthMiddleware resolves the bearer token to a known user. A bad token and a
// token for an unknown email both answer 401.
func AuthMiddleware(validator *auth.TokenValidator, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			unauthorized(c)
			return
		}

		claims, err := validator.ParseAndValidateToken(strings.TrimSpace(token), "")
		if err != nil {
			logger.Warn(c, "Rejected bearer token", zap.Error(err))
			unauthorized(c)
			return
		}
		email, err := auth.Subject(claims)
		if err != nil {
			unauthorized(c)
			return
		}

		user, err := users.FindByEmail(c.Request.Context(), email)
		if errors.Is(err, repository.ErrUserNotFound) {
			logger.Warn(c, "Token subject is not a known user", zap.String("email", email))
			unauthorized(c)
			return
		}
		if err != nil {
			logger.Error(c, "User lookup failed", err)
			appErr := apperrors.From(err)
			c.AbortWithStatusJSON(appErr.Code, appErr)
			return
		}

		c.Set(UserKey, user)
		c.Set(EmailKey, user.Email)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, errBadCredentials)
}

// GetUser returns the authenticated user, or nil outside AuthMiddleware.
func GetUser(c *gin.Context) *models.User {
	if val, exists := c.Get(UserKey); exists {
		if u, ok := val.(*models.User); ok {
			return u
		}
	}
	return nil
}

func GetEmail(c *gin.Context) string {
	return c.GetString(EmailKey)
}
