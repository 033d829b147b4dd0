package middleware

import (
	"net/http"

	"freelancehub/models"
	"freelancehub/utils"

	"github.com/gin-gonic/gin"
)

// RequireRoles admits only users whose role is one of roles. It must run after JWTAuthUserMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("role")
		role, ok := v.(models.Role)
		if !exists || !ok {
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "Not authenticated")
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "Insufficient role")
	}
}
