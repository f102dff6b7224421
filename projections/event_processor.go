package projections

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/backstage/services/supplychain/domain"
	"example.com/backstage/services/supplychain/models"
)

// EventProcessor drains unprocessed events from the database and feeds
// them to the projector on a fixed interval.
type EventProcessor struct {
	db                 *gorm.DB
	projector          *SupplyChainProjector
	batchSize          int
	processingInterval time.Duration
	running            bool
	mutex              sync.Mutex
	stopChan           chan struct{}
}

// NewEventProcessor creates a new event processor
func NewEventProcessor(db *gorm.DB, projector *SupplyChainProjector) *EventProcessor {
	return &EventProcessor{
		db:                 db,
		projector:          projector,
		batchSize:          100,
		processingInterval: 5 * time.Second,
		stopChan:           make(chan struct{}),
	}
}

// Start starts the event processor
func (p *EventProcessor) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.running {
		return
	}

	p.running = true
	go p.processEvents()
}

// Stop stops the event processor
func (p *EventProcessor) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.running {
		return
	}

	p.running = false
	p.stopChan <- struct{}{}
}

// processEvents processes events in a loop
func (p *EventProcessor) processEvents() {
	ticker := time.NewTicker(p.processingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.processBatch(); err != nil {
				log.Error().Err(err).Msg("Failed to process event batch")
			}
		case <-p.stopChan:
			return
		}
	}
}

// processBatch processes a batch of unprocessed events
func (p *EventProcessor) processBatch() error {
	var events []models.Event
	if err := p.db.Where("processed = ?", false).
		Order("timestamp ASC, id ASC").
		Limit(p.batchSize).
		Find(&events).Error; err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	log.Info().Msgf("Processing %d events", len(events))

	for _, event := range events {
		if err := p.processEvent(event); err != nil {
			log.Error().Err(err).Str("event_id", event.EventID).Msg("Failed to process event")
			errMsg := err.Error()
			p.db.Model(&event).Updates(map[string]interface{}{
				"error": &errMsg,
			})
			continue
		}

		if err := p.db.Model(&event).Updates(map[string]interface{}{
			"processed": true,
			"error":     nil,
		}).Error; err != nil {
			log.Error().Err(err).Str("event_id", event.EventID).Msg("Failed to mark event as processed")
		}
	}

	return nil
}

// processEvent projects a single event
func (p *EventProcessor) processEvent(event models.Event) error {
	ctx := context.Background()

	var metadata map[string]interface{}
	if len(event.Metadata) > 0 {
		if err := json.Unmarshal(event.Metadata, &metadata); err != nil {
			return err
		}
	}

	domainEvent := domain.Event{
		ID:        event.EventID,
		ItemID:    event.ItemID,
		Type:      event.EventType,
		Timestamp: event.Timestamp,
		Metadata:  metadata,
	}

	return p.projector.Project(ctx, domainEvent)
}
