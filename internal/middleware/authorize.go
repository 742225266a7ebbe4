package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forestpest/auth/internal/models"
	"forestpest/auth/internal/service"
)

// RequirePermission admits callers whose role grants any of perms. It must
// run after Auth.
func RequirePermission(auth Authenticator, perms ...string) gin.HandlerFunc {
	return require(auth, service.AuthRequirement{AnyPermission: perms})
}

func RequireRoles(auth Authenticator, roles ...models.UserRole) gin.HandlerFunc {
	return require(auth, service.AuthRequirement{AnyRole: roles})
}

func require(auth Authenticator, req service.AuthRequirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if err := auth.Authorize(id, req); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
