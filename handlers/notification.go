package handlers

import (
	"net/http"
	"strconv"

	"freelancehub/models"
	notificationService "freelancehub/services/notification"
	"freelancehub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	Service notificationService.NotificationService
}

func NewNotificationHandler(ns notificationService.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: ns}
}

// parseFilter reads the optional ?type= and ?read= query parameters.
func parseFilter(c *gin.Context) (models.NotificationFilter, bool) {
	var f models.NotificationFilter
	if t := c.Query("type"); t != "" {
		cat := models.Category(t)
		f.Category = &cat
	}
	if r := c.Query("read"); r != "" {
		read, err := strconv.ParseBool(r)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Validation failed", "invalid read: must be true or false")
			return f, false
		}
		f.Read = &read
	}
	return f, true
}

func queryInt(c *gin.Context, key string) (int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Validation failed", "invalid "+key+": must be an integer")
		return 0, false
	}
	return v, true
}

// ListHandler handles GET /api/notifications.
func (h *NotificationHandler) ListHandler(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	page, ok := queryInt(c, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	userID, _ := currentUserID(c)
	result, err := h.Service.List(c.Request.Context(), userID, page, limit, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *NotificationHandler) UnreadCountHandler(c *gin.Context) {
	userID, _ := currentUserID(c)
	count, err := h.Service.CountUnread(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unreadCount": count})
}

func (h *NotificationHandler) GetHandler(c *gin.Context) {
	userID, _ := currentUserID(c)
	n, err := h.Service.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// MarkReadHandler handles PUT /api/notifications/:id/read.
func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	userID, _ := currentUserID(c)
	n, err := h.Service.MarkRead(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllReadHandler(c *gin.Context) {
	userID, _ := currentUserID(c)
	modified, err := h.Service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "modifiedCount": modified})
}

func (h *NotificationHandler) DeleteHandler(c *gin.Context) {
	userID, _ := currentUserID(c)
	if err := h.Service.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

// DeleteAllHandler handles DELETE /api/notifications/all, honouring ?type= and ?read=.
func (h *NotificationHandler) DeleteAllHandler(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	userID, _ := currentUserID(c)
	deleted, err := h.Service.DeleteAll(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("notifications cleared", zap.String("userId", userID), zap.Int64("deleted", deleted))
	c.JSON(http.StatusOK, gin.H{"message": "Notifications deleted", "deletedCount": deleted})
}
