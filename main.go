// File: meetpoint/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetpoint/config"
	"meetpoint/cron"
	"meetpoint/database"
	availabilityRepo "meetpoint/database/repository/availability"
	readinessRepo "meetpoint/database/repository/readiness"
	sessionRepo "meetpoint/database/repository/session"
	"meetpoint/handlers"
	"meetpoint/middleware"
	"meetpoint/routes"
	"meetpoint/services/identity"
	"meetpoint/services/ledger"
	"meetpoint/services/notification"
	"meetpoint/services/scheduling"
	sessionSvc "meetpoint/services/session"
	"meetpoint/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitReadinessCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	db := database.DB()
	rulesRepo := availabilityRepo.NewMongoAvailabilityRepo(db)
	sessionsRepo := sessionRepo.NewMongoSessionRepo(db)
	readinessStore := readinessRepo.NewRedisReadinessStore(utils.GetReadinessCacheClient())

	ctx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := rulesRepo.EnsureIndexes(ctx); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure rule indexes: %v", err)
	}
	if err := sessionsRepo.EnsureIndexes(ctx); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure session indexes: %v", err)
	}
	cancelIndexes()

	// External collaborators.
	identityResolver := identity.NewHTTPResolver(config.AppConfig.DirectoryURL)
	ledgerClient := ledger.NewHTTPLedger(config.AppConfig.LedgerURL)
	notificationService := &notification.LogNotificationService{Logger: logger}

	// Notification dispatch: enqueue side plus the background worker.
	notifyClient := cron.NewNotifyClient()
	dispatcher := &notification.Dispatcher{
		Client: notifyClient,
		Marker: readinessStore,
		Logger: logger,
	}
	cron.InitNotifyWorker(notificationService)

	// services.
	availabilityEngine := &scheduling.AvailabilityEngine{
		Rules:              rulesRepo,
		Sessions:           sessionsRepo,
		MinFragmentMinutes: config.AppConfig.MinFragmentMinutes,
	}
	validator := &scheduling.Validator{
		Availability:       availabilityEngine,
		Sessions:           sessionsRepo,
		QuantumMinutes:     config.AppConfig.SlotQuantumMinutes,
		MaxDurationMinutes: config.AppConfig.MaxSessionMinutes,
		HorizonDays:        config.AppConfig.BookingHorizonDays,
	}
	bookingEngine := &scheduling.BookingEngine{
		Validator:         validator,
		Sessions:          sessionsRepo,
		Identity:          identityResolver,
		Ledger:            ledgerClient,
		Logger:            logger,
		DefaultHourlyRate: config.AppConfig.DefaultHourlyRate,
	}
	machine := &sessionSvc.Machine{
		Sessions:   sessionsRepo,
		Readiness:  readinessStore,
		Ledger:     ledgerClient,
		Dispatcher: dispatcher,
		Logger:     logger,
		PayoutRate: config.AppConfig.ProviderPayoutRate,
		BeginGrace: time.Duration(config.AppConfig.BeginGraceMinutes) * time.Minute,
	}
	rendezvous := &sessionSvc.Rendezvous{
		Sessions:  sessionsRepo,
		Readiness: readinessStore,
		Machine:   machine,
		ExtraTTL:  time.Duration(config.AppConfig.ReadinessTTLMinutes) * time.Minute,
	}
	queryService := &sessionSvc.QueryService{
		Availability:    availabilityEngine,
		Sessions:        sessionsRepo,
		BeginGrace:      time.Duration(config.AppConfig.BeginGraceMinutes) * time.Minute,
		UpcomingHorizon: 24 * time.Hour,
	}

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Availability: handlers.NewAvailabilityHandler(rulesRepo, queryService, logger),
		Session:      handlers.NewSessionHandler(bookingEngine, machine, queryService, logger),
		Readiness:    handlers.NewReadinessHandler(rendezvous),
		Identity:     identityResolver,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

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
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	if err := notifyClient.Close(); err != nil {
		logger.Sugar().Warnf("main: failed to close notify client: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
