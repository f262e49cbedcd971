package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatherhub/guestsync/internal/api"
	"gatherhub/guestsync/internal/common"
	"gatherhub/guestsync/internal/config"
	"gatherhub/guestsync/internal/db"
	"gatherhub/guestsync/internal/db/repositories"
	"gatherhub/guestsync/internal/jobs"
	"gatherhub/guestsync/internal/logging"
	"gatherhub/guestsync/internal/metrics"
	"gatherhub/guestsync/internal/providers"
	"gatherhub/guestsync/internal/routes"
	"gatherhub/guestsync/internal/services"
	"gatherhub/guestsync/internal/workers"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	if err := cfg.Validate(); err != nil {
		logging.Fatal("Invalid configuration", "error", err.Error())
	}

	logging.Info("Guest sync service starting up",
		"environment", cfg.AppEnv,
		"sync_enabled", cfg.SyncEnabled,
		"consumer_enabled", cfg.ConsumerEnabled,
	)

	// Connect to DB with sqlx (guest/member repositories)
	if err := db.InitPostgres(); err != nil {
		logging.Fatal("Failed to connect to Postgres (sqlx)", "error", err.Error())
	}
	logging.Info("Connected to Postgres (sqlx)")

	// Connect to DB with GORM (event repository)
	gormDB, err := db.InitPostgresORM(db.PostgresDSN())
	if err != nil {
		logging.Fatal("Failed to connect to Postgres (GORM)", "error", err.Error())
	}
	logging.Info("Connected to Postgres (GORM)")

	redisClient := common.NewRedisClient()
	defer redisClient.Close()

	metricsReg := metrics.NewMetricsRegistry()
	cache := common.NewCacheService(5*time.Minute, 10*time.Minute)

	// Repositories
	guestRepo := repositories.NewGuestRepository(db.DB)
	memberRepo := repositories.NewMemberRepository(db.DB)
	eventRepo := repositories.NewEventRepository(gormDB)

	// Providers: register every platform here; the registry decides at
	// runtime which ones actually resolve
	registry := providers.NewProviderRegistry(cache,
		providers.NewLumaProvider(cfg),
	)

	matcher := services.NewMatchingService(memberRepo)
	notifier := services.NewNotificationService(cfg.NotifyRefreshURL)
	queue := common.NewSyncQueueService(redisClient)

	syncJob := jobs.NewGuestSyncJob(registry, matcher, guestRepo, eventRepo, notifier, metricsReg)
	scheduler := jobs.NewSyncScheduler(
		cfg.SyncEnabled, eventRepo, registry, queue,
		cfg.QueueStream, cfg.DedupWindow, metricsReg,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go scheduler.RunScheduled(ctx, cfg.SyncInterval)

	if cfg.ConsumerEnabled {
		worker := workers.NewSyncQueueWorker(
			queue, syncJob, cfg.QueueStream, cfg.QueueGroup,
			cfg.VisibilityTimeout, metricsReg,
		)
		go func() {
			if err := worker.Start(ctx, cfg.SyncWorkers); err != nil {
				logging.Error("Sync queue worker stopped", "error", err.Error())
			}
		}()

		monitor := workers.NewSyncQueueMonitor(queue, cfg.QueueStream, cfg.QueueGroup, metricsReg)
		go monitor.Start(ctx, 30*time.Second)
	} else {
		logging.Info("Sync consumer disabled, not starting workers")
	}

	// Ops HTTP surface
	upSince := time.Now()
	handlers := api.NewSyncHandlers(registry, eventRepo, queue, cfg.QueueStream)
	router := routes.RegisterRoutes(handlers, metricsReg, cfg.OpsAPIKey, upSince)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	go func() {
		logging.Info("Ops server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("Ops server failed", "error", err.Error())
		}
	}()

	// Block until shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logging.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("Ops server shutdown error", "error", err.Error())
	}
}
