package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"gymcore/internal/availability"
	"gymcore/internal/catalog"
	"gymcore/internal/config"
	"gymcore/internal/db"
	"gymcore/internal/logger"
	"gymcore/internal/loyalty"
	"gymcore/internal/membership"
	"gymcore/internal/notify"
	"gymcore/internal/payment"
	"gymcore/internal/reservation"
	"gymcore/internal/resource"
	"gymcore/internal/server"
)

func main() {
	logger.Init()
	logger.Info("Starting gymcore application")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	var sender notify.Sender = notify.LogSender{}
	if cfg.SMTPHost != "" {
		sender = notify.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Pass:     cfg.SMTPPass,
			From:     cfg.EmailFrom,
			FromName: cfg.EmailName,
			Resolver: notify.NewRedisResolver(redisClient),
		}
	}
	notifier := notify.NewWithClient(redisClient, sender)
	loyaltyTiers := loyalty.NewRedisProvider(redisClient)
	processor := payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentAPIKey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifier.Start(ctx)
	logger.Info("Notification worker started")

	catalogRepo := catalog.NewRepository(database)
	membershipRepo := membership.NewRepository(database)
	reservationRepo := reservation.NewRepository(database)
	resourceRepo := resource.NewRepository(database)

	cancelWindow := time.Duration(cfg.CancellationWindowHours) * time.Hour
	reservationService := reservation.NewService(
		reservationRepo, resourceRepo, membershipRepo, catalogRepo,
		loyaltyTiers, notifier, cancelWindow,
	)
	membershipService := membership.NewService(
		membershipRepo, catalogRepo, processor, reservationService, notifier,
	)
	resourceService := resource.NewService(resourceRepo)

	srv := server.New(database, cfg, server.Deps{
		Catalog:      catalogRepo,
		Memberships:  membershipService,
		Reservations: reservationService,
		Resources:    resourceService,
		Availability: availability.NewEngine(resourceRepo),
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
