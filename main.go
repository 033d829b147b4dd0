package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freelancehub/config"
	"freelancehub/database"
	notificationRepo "freelancehub/database/repository/notification"
	userRepoPkg "freelancehub/database/repository/user"
	"freelancehub/handlers"
	"freelancehub/middleware"
	"freelancehub/routes"
	"freelancehub/services/notification"
	"freelancehub/services/realtime"
	"freelancehub/services/user"
	"freelancehub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// repositories.
	var (
		notifRepo notificationRepo.NotificationRepository
		userRepo  userRepoPkg.UserRepository
	)
	switch config.AppConfig.StoreBackend {
	case "memory":
		logger.Warn("main: using in-memory store, data is lost on restart")
		notifRepo = notificationRepo.NewMemoryNotificationRepo()
		userRepo = userRepoPkg.NewMemoryUserRepo()
	default:
		if err := database.InitDB(); err != nil {
			logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
		}
		db := database.Database()
		notifRepo = notificationRepo.NewMongoNotificationRepo(db)
		userRepo = userRepoPkg.NewMongoUserRepo(db)
	}

	if config.AppConfig.RedisEnabled {
		if err := utils.InitAuthCache(); err != nil {
			logger.Warn("main: auth cache disabled", zap.Error(err))
		}
	}

	// services.
	userService, err := user.NewDefaultUserService(
		userRepo,
		utils.GetAuthCacheClient(),
		config.AppConfig.JWTSecret,
		config.AppConfig.JWTTTL,
		config.AppConfig.AuthCacheTTL,
	)
	if err != nil {
		logger.Fatal("main: failed to initialize user service", zap.Error(err))
	}
	if config.AppConfig.AdminEmail != "" && config.AppConfig.AdminPassword != "" {
		if err := userService.EnsureAdmin(context.Background(), config.AppConfig.AdminEmail, config.AppConfig.AdminPassword); err != nil {
			logger.Fatal("main: failed to bootstrap admin", zap.Error(err))
		}
	}

	hub := realtime.NewHub(logger.Named("realtime"))
	pushers := notification.Pushers{hub}

	var fcm *realtime.FCMPusher
	if config.FirebaseEnabled() {
		fcm, err = realtime.NewFCMPusher(context.Background(), config.AppConfig.FirebaseCredentialsFile, userRepo, logger.Named("fcm"))
		if err != nil {
			logger.Warn("main: device push disabled", zap.Error(err))
		} else {
			pushers = append(pushers, fcm)
		}
	}

	notificationService, err := notification.NewDefaultNotificationService(notifRepo, pushers, logger.Named("notification"))
	if err != nil {
		logger.Fatal("main: failed to initialize notification service", zap.Error(err))
	}

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Auth:         userService,
		User:         handlers.NewUserHandler(userService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Admin:        handlers.NewAdminHandler(notificationService, userService),
		Realtime: handlers.NewRealtimeHandler(hub, userService, notificationService, realtime.SessionOptions{
			SendBuffer:   config.AppConfig.WSSendBuffer,
			PingInterval: config.AppConfig.WSPingInterval,
			WriteTimeout: config.AppConfig.WSWriteTimeout,
		}, config.AllowedOrigins()),
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(monitorCtx, 30*time.Second, utils.GetAuthCacheClient(), database.MongoClient)

	// Start the HTTP server.
	srv := &http.Server{
		Addr:              "0.0.0.0:" + config.AppConfig.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown.
	hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if fcm != nil {
		if err := fcm.Wait(ctx); err != nil {
			logger.Warn("main: pending device pushes abandoned", zap.Error(err))
		}
	}
	stopMonitor()
	if err := database.CloseDB(ctx); err != nil {
		logger.Error("main: failed to close MongoDB", zap.Error(err))
	}
	utils.CloseAuthCache()

	logger.Sugar().Info("main: server stopped gracefully")
}
