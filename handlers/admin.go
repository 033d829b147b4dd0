package handlers

import (
	"net/http"

	"freelancehub/models"
	notificationService "freelancehub/services/notification"
	userService "freelancehub/services/user"
	"freelancehub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type AdminHandler struct {
	Notifications notificationService.NotificationService
	Users         userService.UserService
}

func NewAdminHandler(ns notificationService.NotificationService, us userService.UserService) *AdminHandler {
	return &AdminHandler{Notifications: ns, Users: us}
}

type sendNotificationRequest struct {
	UserIDs []string `json:"userIds" binding:"required,min=1"`
	models.NotificationInput
}

// SendNotificationHandler handles POST /api/admin/notifications. Targets that
// fail are reported alongside the notifications that were created.
func (h *AdminHandler) SendNotificationHandler(c *gin.Context) {
	logger := getLogger(c)

	var req sendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	created, err := h.Notifications.NotifyMany(c.Request.Context(), req.UserIDs, req.NotificationInput)
	failures := []string{}
	for _, e := range multierr.Errors(err) {
		failures = append(failures, e.Error())
	}
	if len(created) == 0 && err != nil {
		logger.Warn("bulk notification failed for every target", zap.Error(err))
		respondError(c, multierr.Errors(err)[0])
		return
	}

	status := http.StatusCreated
	if len(failures) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{
		"notifications": created,
		"failed":        failures,
	})
}

// DeleteRelatedHandler handles DELETE /api/admin/notifications/related/:kind/:id.
func (h *AdminHandler) DeleteRelatedHandler(c *gin.Context) {
	ref := models.RelatedRef{Kind: models.RelatedKind(c.Param("kind")), ID: c.Param("id")}
	deleted, err := h.Notifications.DeleteRelated(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications deleted", "deletedCount": deleted})
}

// SetUserActiveHandler handles PUT /api/admin/users/:id/active.
func (h *AdminHandler) SetUserActiveHandler(c *gin.Context) {
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if err := h.Users.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User status updated", "active": *req.Active})
}
