package middleware

import (
	"net/http"
	"strings"

	"scholarship-backend/internal/delivery/http/response"
	"scholarship-backend/internal/domain"
	"scholarship-backend/pkg/apperror"
	"scholarship-backend/pkg/auth"
	"scholarship-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthMiddleware verifies the bearer token and stores the resulting domain.Actor
// under domain.KeyActor.
func AuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Try to get token from Header
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString == "" {
			// 2. Try to get token from Cookie
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or access_token cookie required", nil)
			c.Abort()
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			logger.Log.WarnContext(c.Request.Context(), "token validation failed", "error", err, "ip", c.ClientIP())
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyActor), domain.Actor{
			UserID: userID,
			Name:   claims.Name,
			Roles:  claims.Roles,
		})
		c.Next()
	}
}

// RequireRole lets the request through when the actor holds any of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
			c.Abort()
			return
		}
		if !actor.HasRole(roles...) {
			c.Error(apperror.Forbidden("You do not have permission to access this resource"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// ActorFrom returns the actor stored by AuthMiddleware.
func ActorFrom(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(string(domain.KeyActor))
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}
