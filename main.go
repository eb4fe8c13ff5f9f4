// File: chefbook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chefbook/config"
	"chefbook/cron"
	"chefbook/database"
	bookingRepoPkg "chefbook/database/repository/booking"
	catalogRepoPkg "chefbook/database/repository/catalog"
	"chefbook/handlers"
	"chefbook/middleware"
	"chefbook/routes"
	"chefbook/services/booking"
	"chefbook/services/notification"
	"chefbook/services/workflow"
	"chefbook/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	catalogRepo := catalogRepoPkg.NewMongoCatalogRepo()

	// notification channel.
	sender, err := notification.NewFCMSender(utils.FCMClient, config.AppConfig.OperatorFCMToken)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification sender: %v", err)
	}
	queueClient := cron.NewQueueClient()
	dispatcher := &notification.DefaultDispatcher{
		Sender: sender,
		Queue:  queueClient,
		Logger: logger,
	}

	// services.
	pricingResolver := &booking.DefaultPricingResolver{
		Catalog:  catalogRepo,
		Cache:    utils.GetCacheClient(),
		CacheTTL: 10 * time.Minute,
	}
	conflictChecker := &booking.DefaultConflictChecker{
		Repo: bookingRepo,
	}
	bookingService := &booking.DefaultBookingService{
		Repo:         bookingRepo,
		Pricing:      pricingResolver,
		Conflicts:    conflictChecker,
		Notifier:     dispatcher,
		Engine:       workflow.NewEngine(logger),
		MaxPartySize: config.AppConfig.MaxPartySize,
		Logger:       logger,
	}

	// background worker: notification retries + completion sweeps.
	cron.InitWorker(sender, bookingService)

	// handlers.
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	adminHandler := handlers.NewAdminHandler(bookingService, catalogRepo, logger)

	routes.RegisterRoutes(router, bookingHandler, adminHandler)

	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("listen: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("server forced to shutdown: %v", err)
	}
	queueClient.Close()
	logger.Info("Server exited")
}
