package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mycomize/mycomize-go/internal/application/services"
	"github.com/mycomize/mycomize-go/internal/domain/user"
	"github.com/mycomize/mycomize-go/internal/infrastructure/security"
)

const currentUserKey = "currentUser"

// BearerAuthMiddleware validates the Authorization header and resolves it to
// an active user, which downstream handlers read via GetCurrentUser.
func BearerAuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		u, err := authService.ValidateToken(token)
		if err != nil {
			status := http.StatusUnauthorized
			message := "could not validate credentials"
			switch {
			case errors.Is(err, security.ErrTokenExpired):
				message = "token expired"
			case errors.Is(err, services.ErrInactiveUser):
				status = http.StatusForbidden
				message = "inactive user"
			}
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(status, gin.H{"error": message})
			return
		}

		c.Set(currentUserKey, u)
		c.Next()
	}
}

// GetCurrentUser returns the authenticated user placed by the auth
// middleware.
func GetCurrentUser(c *gin.Context) (*user.User, bool) {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok
}
