package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progression/internal/config"
	"github.com/noah-isme/gema-progression/internal/database"
	"github.com/noah-isme/gema-progression/internal/handler"
	"github.com/noah-isme/gema-progression/internal/middleware"
	"github.com/noah-isme/gema-progression/internal/repository"
	"github.com/noah-isme/gema-progression/internal/router"
	"github.com/noah-isme/gema-progression/internal/scheduler"
	"github.com/noah-isme/gema-progression/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		log.Fatalf("failed to load progression policy: %v", err)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	redisClient, err := database.ConnectRedis(startupCtx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis disabled: ranking cache and notification pub/sub are off")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	store := repository.NewStore(db)

	catalogService := service.NewCatalogService(store, logger)
	if cfg.SeedCatalog {
		summary, err := catalogService.Seed(startupCtx, policy)
		if err != nil {
			log.Fatalf("failed to seed reward catalog: %v", err)
		}
		logger.Info().
			Int("badges", summary.Badges).
			Int("specializations", summary.Specializations).
			Int("skills", summary.Skills).
			Int("shop_items", summary.ShopItems).
			Msg("reward catalog seeded")
	}

	notificationService := service.NewNotificationService(store, redisClient, cfg.NotificationChannel, natsConn, logger)
	rankingService := service.NewRankingService(store, redisClient, cfg.RankingCacheTTL, cfg.Location, logger)
	progressionService := service.NewProgressionService(store, notificationService, rankingService, validate, cfg.Location, logger)
	badgeService := service.NewBadgeService(store, notificationService, validate, logger)
	specializationService := service.NewSpecializationService(store, notificationService, policy, logger)
	shopService := service.NewShopService(store, rankingService, validate, logger)

	jobs, err := scheduler.New(rankingService, cfg.RankingRefreshInterval, logger)
	if err != nil {
		log.Fatalf("failed to create scheduler: %v", err)
	}
	jobs.Start()

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ProgressionHandler:      handler.NewProgressionHandler(progressionService, badgeService, logger),
		SpecializationHandler:   handler.NewSpecializationHandler(specializationService, logger),
		ShopHandler:             handler.NewShopHandler(shopService, middleware.RateLimit("shop-purchase", cfg.PurchaseRateLimit, cfg.PurchaseRateWindow), logger),
		RankingHandler:          handler.NewRankingHandler(rankingService, logger),
		NotificationHandler:     handler.NewNotificationHandler(notificationService, logger, 30*time.Second),
		AdminProgressionHandler: handler.NewAdminProgressionHandler(progressionService, badgeService, specializationService, logger),
		SeedHandler:             handler.NewSeedHandler(catalogService, policy, logger),
		JWTMiddleware:           middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, jobs)
}

func waitForShutdown(app *fiber.App, jobs *scheduler.Scheduler) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	if err := jobs.Shutdown(); err != nil {
		log.Printf("scheduler shutdown failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
