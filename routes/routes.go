package routes

import (
	"time"

	"freelancehub/config"
	"freelancehub/handlers"
	"freelancehub/middleware"
	"freelancehub/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers the public sign-up and sign-in endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.User.RegisterHandler)
		api.POST("/login", hb.User.LoginHandler)
	}
}

// RegisterUserRoutes registers user endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.Auth))
		api.GET("/me", hb.User.GetMeHandler)
		api.PUT("/me/fcm-token", hb.User.UpdateFCMTokenHandler)
	}
}

// RegisterNotificationRoutes registers the per-user notification endpoints.
// Static segments are registered before /:id so they are not captured by it.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.Auth))
		api.GET("", hb.Notification.ListHandler)
		api.GET("/unread-count", hb.Notification.UnreadCountHandler)
		api.PUT("/read-all", hb.Notification.MarkAllReadHandler)
		api.DELETE("/all", hb.Notification.DeleteAllHandler)
		api.GET("/:id", hb.Notification.GetHandler)
		api.PUT("/:id/read", hb.Notification.MarkReadHandler)
		api.DELETE("/:id", hb.Notification.DeleteHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthUserMiddleware(hb.Auth), middleware.RequireRoles(models.RoleAdmin))
		adminGroup.POST("/notifications", hb.Admin.SendNotificationHandler)
		adminGroup.DELETE("/notifications/related/:kind/:id", hb.Admin.DeleteRelatedHandler)
		adminGroup.PUT("/users/:id/active", hb.Admin.SetUserActiveHandler)
	}
}

// RegisterRealtimeRoutes registers the websocket channel. It authenticates
// itself because browsers cannot set headers on the upgrade request.
func RegisterRealtimeRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/ws", hb.Realtime.ServeWS)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	origins := config.AllowedOrigins()
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAuthRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterRealtimeRoutes(r, hb)
}
