package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/niagahub/niaga-rate-service/internal/config"
	httpapi "github.com/niagahub/niaga-rate-service/internal/delivery/http"
	"github.com/niagahub/niaga-rate-service/internal/delivery/http/handlers"
	"github.com/niagahub/niaga-rate-service/internal/infrastructure/kafka"
	"github.com/niagahub/niaga-rate-service/internal/infrastructure/metrics"
	"github.com/niagahub/niaga-rate-service/internal/infrastructure/migrate"
	"github.com/niagahub/niaga-rate-service/internal/infrastructure/notifier"
	"github.com/niagahub/niaga-rate-service/internal/infrastructure/postgres"
	"github.com/niagahub/niaga-rate-service/internal/infrastructure/postgres/repository"
	"github.com/niagahub/niaga-rate-service/internal/infrastructure/rateapi"
	"github.com/niagahub/niaga-rate-service/internal/usecase"
	"github.com/niagahub/niaga-rate-service/internal/usecase/rate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init database
	db := postgres.MustInitDB(cfg)

	if cfg.RateDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.RateDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Init repos
	settingsRepo := repository.NewDefaultRateSettingsRepository(db)
	providerRepo := repository.NewDefaultProviderRepository(db)
	quotaRepo := repository.NewDefaultQuotaRepository(db)
	historyRepo := repository.NewDefaultRateHistoryRepository(db)
	switchRepo := repository.NewDefaultProviderSwitchRepository(db)

	// Init kafka publisher
	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := kafka.NewRateEventPublisher(brokers, cfg.KafkaService.RateTopic, cfg.KafkaService.SwitchTopic)
	defer pub.Close()

	// Init quota notifier
	quotaNotifier := notifier.NewCallbackNotifier(cfg.Notifier.CallbackURL, time.Duration(cfg.Notifier.TimeoutSec)*time.Second)

	// Init provider client factory
	factory := rateapi.NewProviderClientFactory(time.Duration(cfg.Scheduler.ProviderTimeoutSec) * time.Second)

	// Reject misconfigured provider rows before serving traffic
	allProviders, err := providerRepo.GetAllProviders(context.Background())
	if err != nil {
		log.Fatalf("failed to load provider catalog: %v", err)
	}
	if err := factory.ValidateCatalog(allProviders); err != nil {
		log.Fatalf("provider catalog validation failed: %v", err)
	}

	// Init validation policy
	policy := usecase.NewRateValidationPolicy(
		cfg.RateBounds.MinRate,
		cfg.RateBounds.MaxRate,
		cfg.Staleness.MaxAgeDays,
		cfg.Staleness.WarnAgeDays,
		cfg.Staleness.MaxCacheAgeDays,
	)

	// Init rate usecase
	rateMetrics := metrics.NewRateMetrics()
	rateUC := rate.NewDefaultRateUsecase(
		settingsRepo,
		providerRepo,
		quotaRepo,
		historyRepo,
		switchRepo,
		factory,
		policy,
		pub,
		quotaNotifier,
		rateMetrics,
	)
	rateUC.Workers = cfg.Scheduler.Workers
	rateUC.ProviderTimeout = time.Duration(cfg.Scheduler.ProviderTimeoutSec) * time.Second
	rateUC.TenantTimeout = time.Duration(cfg.Scheduler.TenantDeadlineSec) * time.Second
	rateUC.BatchInterval = time.Duration(cfg.Scheduler.TickIntervalMin) * time.Minute
	rateUC.RunOnStart = cfg.Scheduler.RunOnStart

	providerUC := usecase.NewDefaultProviderUsecase(providerRepo, quotaRepo, factory)
	settingsUC := usecase.NewDefaultSettingsUsecase(settingsRepo, providerRepo)
	if cfg.Scheduler.DefaultAutoUpdateAt != "" {
		settingsUC.DefaultUpdateTime = cfg.Scheduler.DefaultAutoUpdateAt
	}

	// Daily acquisition worker
	go rateUC.StartDailyWorker(context.Background())

	// HTTP server
	router := httpapi.NewRouter(httpapi.Handlers{
		Rate:     handlers.NewRateHandler(rateUC, switchRepo),
		Provider: handlers.NewProviderHandler(providerUC),
		Settings: handlers.NewSettingsHandler(settingsUC),
	})

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	log.Printf("HTTP server started on %s\n", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("failed to serve: %v\n", err)
	}
}
