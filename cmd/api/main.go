package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wishloop/payout-engine/internal/domain/port/core"
	paymentport "github.com/wishloop/payout-engine/internal/domain/port/payment"
	"github.com/wishloop/payout-engine/internal/domain/usecase/allocation"
	contributionUseCase "github.com/wishloop/payout-engine/internal/domain/usecase/contribution"
	"github.com/wishloop/payout-engine/internal/domain/usecase/payout"
	"github.com/wishloop/payout-engine/internal/domain/usecase/settlement"
	walletUseCase "github.com/wishloop/payout-engine/internal/domain/usecase/wallet"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/api/handler"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/api/routes"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/database"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/database/migration"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/logger"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/notification"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/payment"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/repository"
	timeProvider "github.com/wishloop/payout-engine/internal/infrastructure/adapter/time"
	"github.com/wishloop/payout-engine/internal/infrastructure/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(cfg.Environment == config.Production, core.ParseLogLevel(cfg.Logger.Level))
	defer func() { _ = appLogger.Flush() }()

	tp := timeProvider.NewRealTimeProvider()

	dbPort, err := strconv.Atoi(cfg.Database.Port)
	if err != nil {
		log.Fatalf("Invalid database port: %v", err)
	}
	dbConfig := &database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            dbPort,
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		LogLevel:        cfg.Database.LogLevel,
	}

	conn, err := database.NewConnection(dbConfig)
	if err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() { _ = conn.Close() }()

	conn.DB.Logger = database.NewDatabaseLogger(appLogger, tp, cfg.Database.LogLevel)

	migrationMgr := migration.NewMigrationManager(conn.DB, appLogger, tp)
	if err := migrationMgr.MigrateAll(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	uow := database.NewUnitOfWork(conn.DB, appLogger, tp)

	// Payout rails
	bankGateway := payment.NewBankGateway(cfg.Payout.Bank.BaseURL, cfg.Payout.Bank.APIKey, cfg.Payout.CallTimeout, appLogger)
	paypalGateway := payment.NewPayPalGateway(cfg.Payout.PayPal.BaseURL, cfg.Payout.PayPal.APIKey, cfg.Payout.CallTimeout, appLogger)
	venmoGateway := payment.NewVenmoGateway(cfg.Payout.Venmo.BaseURL, cfg.Payout.Venmo.APIKey, cfg.Payout.CallTimeout, appLogger)
	gateways := payment.NewRegistry(bankGateway, paypalGateway, venmoGateway)

	// Bank withdrawals are gated on the card processor's settled balance,
	// read from the same processor that serves the bank rail.
	platform := payment.NewPlatformBalanceClient(cfg.Payout.Bank.BaseURL, cfg.Payout.Bank.APIKey, cfg.Payout.CallTimeout, appLogger)

	var notifier paymentport.Notifier
	if cfg.Notification.Enabled {
		notifier = notification.NewHTTPNotifier(cfg.Notification.BaseURL, cfg.Notification.APIKey, cfg.Notification.Timeout, appLogger)
	} else {
		notifier = notification.NewNoopNotifier()
	}

	activityRepo := repository.NewActivityRepository(conn.DB, appLogger)

	// Use cases
	instantFee := payout.InstantFeePolicy{
		Rate:     decimal.NewFromFloat(cfg.Payout.InstantFeeRate),
		MinCents: cfg.Payout.InstantFeeMinCents,
	}
	autoPayoutRouter := payout.NewRouter(uow, gateways, appLogger, tp, cfg.Payout.CallTimeout)
	hooks := settlement.NewHooks(notifier, activityRepo, autoPayoutRouter, appLogger, tp)
	settlementProcessor := settlement.NewProcessor(uow, hooks, appLogger, tp)
	contributionService := contributionUseCase.NewService(uow, appLogger, tp)
	withdrawService := payout.NewWithdrawService(uow, gateways, platform, notifier, appLogger, tp, cfg.Payout.CallTimeout, instantFee)
	allocationService := allocation.NewService(uow, appLogger, tp)
	walletService := walletUseCase.NewService(uow, appLogger, tp)

	// API
	webhookHandler := handler.NewWebhookHandler(settlementProcessor, cfg.Webhook.Secrets, appLogger)
	contributionHandler := handler.NewContributionHandler(contributionService, appLogger)
	fundsHandler := handler.NewFundsHandler(withdrawService, allocationService, walletService, appLogger)

	router := gin.New()
	routes.SetupMiddlewares(router, appLogger)
	routes.SetupRoutes(router, webhookHandler, contributionHandler, fundsHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port": cfg.Server.Port,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	// Let dispatched post-settlement hooks drain before the process exits.
	hooks.Wait()

	appLogger.Info("Server exited gracefully", nil)
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}
	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	if cfg.Database.Host == "" {
		missingConfigs = append(missingConfigs, "database.host (or PE_DB_HOST environment variable)")
	}
	if cfg.Database.Username == "" {
		missingConfigs = append(missingConfigs, "database.username (or PE_DB_USERNAME environment variable)")
	}
	if cfg.Database.Password == "" {
		missingConfigs = append(missingConfigs, "database.password (or PE_DB_PASSWORD environment variable)")
	}
	if cfg.Database.Database == "" {
		missingConfigs = append(missingConfigs, "database.database (or PE_DB_NAME environment variable)")
	}

	if cfg.Payout.Bank.BaseURL == "" {
		missingConfigs = append(missingConfigs, "payout.bank.baseUrl")
	}
	if cfg.Payout.PayPal.BaseURL == "" {
		missingConfigs = append(missingConfigs, "payout.paypal.baseUrl")
	}
	if cfg.Payout.Venmo.BaseURL == "" {
		missingConfigs = append(missingConfigs, "payout.venmo.baseUrl")
	}

	if len(cfg.Webhook.Secrets) == 0 {
		missingConfigs = append(missingConfigs, "webhook.secrets")
	}

	if cfg.Notification.Enabled && cfg.Notification.BaseURL == "" {
		missingConfigs = append(missingConfigs, "notification.baseUrl")
	}

	if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	return nil
}
