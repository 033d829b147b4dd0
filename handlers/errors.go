package handlers

import (
	"errors"
	"net/http"

	notificationService "freelancehub/services/notification"
	userService "freelancehub/services/user"
	"freelancehub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var ve *notificationService.ValidationError
	switch {
	case errors.As(err, &ve):
		utils.JSONError(c, http.StatusBadRequest, "Validation failed", ve.Error())
	case errors.Is(err, notificationService.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Notification not found", "")
	case errors.Is(err, notificationService.ErrForbidden):
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "Notification belongs to another user")
	case errors.Is(err, userService.ErrUserNotFound):
		utils.JSONError(c, http.StatusNotFound, "User not found", "")
	case errors.Is(err, userService.ErrEmailTaken):
		utils.JSONError(c, http.StatusConflict, "Registration failed", err.Error())
	case errors.Is(err, userService.ErrInvalidRole), errors.Is(err, userService.ErrMissingFields):
		utils.JSONError(c, http.StatusBadRequest, "Registration failed", err.Error())
	case errors.Is(err, userService.ErrInvalidCredentials), errors.Is(err, userService.ErrUserInactive):
		utils.JSONError(c, http.StatusUnauthorized, "Login failed", err.Error())
	default:
		getLogger(c).Error("request failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "")
	}
}
