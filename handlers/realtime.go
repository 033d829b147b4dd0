package handlers

import (
	"errors"
	"net/http"
	"slices"

	notificationService "freelancehub/services/notification"
	"freelancehub/services/realtime"
	userService "freelancehub/services/user"
	"freelancehub/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type RealtimeHandler struct {
	Hub           *realtime.Hub
	Auth          userService.Authenticator
	Notifications notificationService.NotificationService
	Options       realtime.SessionOptions
	Upgrader      websocket.Upgrader
}

func NewRealtimeHandler(
	hub *realtime.Hub,
	auth userService.Authenticator,
	ns notificationService.NotificationService,
	opts realtime.SessionOptions,
	allowedOrigins []string,
) *RealtimeHandler {
	return &RealtimeHandler{
		Hub:           hub,
		Auth:          auth,
		Notifications: ns,
		Options:       opts,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker admits requests without an Origin header (native clients) and
// browser requests from an allowed origin. "*" allows any origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 || slices.Contains(allowed, "*") {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

// ServeWS handles GET /ws. The token comes from ?token= or the Authorization
// header and is checked before the connection is upgraded.
func (h *RealtimeHandler) ServeWS(c *gin.Context) {
	logger := getLogger(c)

	token := c.Query("token")
	if token == "" {
		token = utils.BearerToken(c.GetHeader("Authorization"))
	}
	if token == "" {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "Missing token")
		return
	}

	u, err := h.Auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidToken),
			errors.Is(err, userService.ErrUserNotFound),
			errors.Is(err, userService.ErrUserInactive):
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", err.Error())
		default:
			logger.Error("websocket authentication failed", zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Authentication failed", "")
		}
		return
	}

	wc, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the error response
		logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	session := realtime.NewWSSession(wc, u.ID, h.Options, logger)
	if err := h.Hub.Register(session); err != nil {
		_ = wc.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		wc.Close()
		return
	}
	defer h.Hub.Deregister(session)

	// goes through the same per-user path as every other count push
	if _, err := h.Notifications.PublishUnreadCount(c.Request.Context(), u.ID); err != nil {
		logger.Warn("failed to publish initial unread count", zap.String("userId", u.ID), zap.Error(err))
	}

	logger.Info("websocket connected", zap.String("userId", u.ID), zap.String("sessionId", session.ID()))
	if err := session.Run(); err != nil {
		logger.Debug("websocket closed with error", zap.String("sessionId", session.ID()), zap.Error(err))
	}
	logger.Info("websocket disconnected", zap.String("userId", u.ID), zap.String("sessionId", session.ID()))
}
