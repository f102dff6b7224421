package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"example.com/backstage/services/supplychain/alerts"
	"example.com/backstage/services/supplychain/api"
	"example.com/backstage/services/supplychain/catalog"
	"example.com/backstage/services/supplychain/eventstore"
	"example.com/backstage/services/supplychain/handlers"
	"example.com/backstage/services/supplychain/messaging"
	"example.com/backstage/services/supplychain/metrics"
	"example.com/backstage/services/supplychain/models"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Run:   runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) {
	log.Info().Msg("Starting server")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to access database connection pool")
	}
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	// Auto migrate tables
	err = db.AutoMigrate(&models.Event{}, &models.Alert{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// Initialize stores
	eventStore := eventstore.NewGormEventStore(db)
	alertService := alerts.NewService(alerts.NewGormAlertStore(db))

	// Initialize product catalog with Redis caching
	productCatalog, err := catalog.NewCachedCatalog(catalog.NewHTTPCatalog(cfg.Catalog), cfg.Redis, cfg.Catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize product catalog")
	}

	// Initialize metrics collector
	collector := metrics.NewMetrics()

	// Initialize command handler
	handler := handlers.NewSupplyChainHandler(eventStore, alertService, productCatalog, collector, cfg.Alerts)

	// Start the Service Bus consumer when a connection string is configured
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()

	if cfg.Azure.QueueConnStr != "" {
		azureClient, err := messaging.NewAzureClient(cfg.Azure)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Azure Service Bus")
		}

		msgProcessor := messaging.NewProcessor(handler)

		go func() {
			if err := azureClient.StartConsumer(consumerCtx, cfg.Azure.QueueName, msgProcessor); err != nil {
				log.Fatal().Err(err).Msg("Failed to start events queue consumer")
			}
		}()
	}

	// Initialize server
	server := api.NewServer(cfg, handler, collector)

	// Start HTTP server
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelConsumer()

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
