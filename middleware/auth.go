package middleware

import (
	"errors"
	"net/http"

	userService "freelancehub/services/user"
	"freelancehub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWTAuthUserMiddleware requires a valid bearer token belonging to an active
// user and stores "userID", "role" and "user" on the context.
func JWTAuthUserMiddleware(auth userService.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := utils.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "Missing or invalid Authorization header")
			return
		}

		u, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrInvalidToken):
				utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "Invalid token")
			case errors.Is(err, userService.ErrUserNotFound):
				utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "User not found")
			case errors.Is(err, userService.ErrUserInactive):
				utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "Account is deactivated")
			default:
				utils.GetLogger().Error("authentication lookup failed", zap.Error(err))
				utils.JSONError(c, http.StatusInternalServerError, "Authentication failed", "")
			}
			return
		}

		c.Set("userID", u.ID)
		c.Set("role", u.Role)
		c.Set("user", u)
		c.Next()
	}
}
