package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"brokerdash/internal/config"
	"brokerdash/internal/handler"
	"brokerdash/internal/httpserver"
	"brokerdash/internal/repository"
	"brokerdash/internal/service"
	"brokerdash/pkg/db"
	"brokerdash/pkg/logger"
	"brokerdash/pkg/mq"
	"brokerdash/pkg/outbox"
	redisclient "brokerdash/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting brokerdash server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("port", cfg.Server.Port),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established successfully")

	// Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	// MQ publisher + outbox dispatcher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	outboxRepo := outbox.NewRepository(dbConn)
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)

	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	go dispatcher.Start(dispatcherCtx)

	// Repositories
	clientRepo := repository.NewClientRepository(dbConn, log)
	historyRepo := repository.NewHistoryRepository(dbConn, log)
	taskRepo := repository.NewTaskRepository(dbConn, log)
	userRepo := repository.NewUserRepository(dbConn, log)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, log)
	clientService := service.NewClientService(clientRepo, historyRepo, log)
	transitionService := service.NewTransitionService(clientRepo, log)
	taskService := service.NewTaskService(taskRepo, clientRepo, log)
	analyticsService := service.NewAnalyticsService(historyRepo, clientRepo, rdb, log)
	calendarService := service.NewCalendarService(taskRepo, clientRepo, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	clientHandler := handler.NewClientHandler(clientService, transitionService, log)
	taskHandler := handler.NewTaskHandler(taskService, log)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, log)
	calendarHandler := handler.NewCalendarHandler(calendarService, cfg.Calendar.FeedKey, log)
	adminHandler := handler.NewAdminHandler(outboxRepo, log)

	router := httpserver.NewRouter(
		authHandler,
		clientHandler,
		taskHandler,
		analyticsHandler,
		calendarHandler,
		adminHandler,
		cfg.JWT.Secret,
		dbConn,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("brokerdash server is fully initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	stopDispatcher()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	dbConn.Close()
	log.Info("Server shutdown complete")
}
