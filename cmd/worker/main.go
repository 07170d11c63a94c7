package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	mqcontracts "brokerdash/contracts/mq"
	"brokerdash/internal/config"
	"brokerdash/internal/mqhandler"
	"brokerdash/internal/repository"
	"brokerdash/internal/service"
	"brokerdash/pkg/db"
	"brokerdash/pkg/logger"
	"brokerdash/pkg/mq"
	redisclient "brokerdash/pkg/redis"
	"brokerdash/pkg/util"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting brokerdash worker...",
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, 24*time.Hour, log)

	clientRepo := repository.NewClientRepository(dbConn, log)
	historyRepo := repository.NewHistoryRepository(dbConn, log)

	emailClient := service.NewEmailClient(cfg.Email)
	notificationService := service.NewNotificationService(emailClient, log)
	analyticsService := service.NewAnalyticsService(historyRepo, clientRepo, rdb, log)

	taskCreatedHandler := mqhandler.NewTaskCreatedHandler(notificationService, deduper, log)
	stageChangedHandler := mqhandler.NewStageChangedHandler(analyticsService, log)

	// Consumer for task.created
	taskConsumer, err := mq.NewConsumer(cfg.MQ.URL, "task.created.q", mqcontracts.RoutingKeyTaskCreated, log)
	if err != nil {
		log.Fatal("Failed to init task.created consumer", zap.Error(err))
	}
	defer taskConsumer.Close()
	taskConsumer.SetHandler(taskCreatedHandler.Handle)

	go func() {
		log.Info("Starting task.created consumer...")
		if err := taskConsumer.StartConsuming(); err != nil {
			log.Fatal("task.created consumer failed", zap.Error(err))
		}
	}()

	// Consumer for client.stage_changed
	stageConsumer, err := mq.NewConsumer(cfg.MQ.URL, "client.stage_changed.q", mqcontracts.RoutingKeyStageChanged, log)
	if err != nil {
		log.Fatal("Failed to init stage_changed consumer", zap.Error(err))
	}
	defer stageConsumer.Close()
	stageConsumer.SetHandler(stageChangedHandler.Handle)

	go func() {
		log.Info("Starting client.stage_changed consumer...")
		if err := stageConsumer.StartConsuming(); err != nil {
			log.Fatal("client.stage_changed consumer failed", zap.Error(err))
		}
	}()

	log.Info("brokerdash worker is fully initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down worker gracefully...")

	taskConsumer.Stop()
	stageConsumer.Stop()

	dbConn.Close()
	log.Info("Worker shutdown complete")
}
