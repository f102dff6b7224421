package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"example.com/backstage/services/supplychain/eventstore"
	"example.com/backstage/services/supplychain/models"
	"example.com/backstage/services/supplychain/projections"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the projection worker",
	Run:   runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) {
	log.Info().Msg("Starting worker")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Auto migrate tables
	err = db.AutoMigrate(&models.Event{}, &models.Alert{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// Initialize event store
	eventStore := eventstore.NewGormEventStore(db)

	// Initialize Elasticsearch client
	esClient, err := projections.NewElasticsearchClient(cfg.Elastic)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Elasticsearch")
	}

	if err := projections.EnsureIndices(esClient, cfg.Elastic); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure Elasticsearch indices")
	}

	// Initialize projector
	projector := projections.NewSupplyChainProjector(eventStore, esClient, cfg.Elastic)

	// Initialize and start event processor
	processor := projections.NewEventProcessor(db, projector)
	processor.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker...")

	// Shutdown processor gracefully
	processor.Stop()

	log.Info().Msg("Worker exited properly")
}
