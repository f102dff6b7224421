package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/domain"
	"example.com/backstage/services/supplychain/handlers"
	"example.com/backstage/services/supplychain/utils"
)

// EventMessage is the queue payload published by pipeline stations
type EventMessage struct {
	ID        string                 `json:"id"`
	ItemID    string                 `json:"item_id" validate:"required"`
	Type      string                 `json:"type" validate:"required"`
	Timestamp *time.Time             `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// MessageProcessor consumes queue messages
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, message *azservicebus.ReceivedMessage) error
}

// Processor feeds queue messages into the supply chain handler
type Processor struct {
	handler *handlers.SupplyChainHandler
}

// NewProcessor creates a new message processor
func NewProcessor(handler *handlers.SupplyChainHandler) *Processor {
	return &Processor{handler: handler}
}

// ProcessMessage records one queued event
func (p *Processor) ProcessMessage(ctx context.Context, message *azservicebus.ReceivedMessage) error {
	var msg EventMessage
	if err := json.Unmarshal(message.Body, &msg); err != nil {
		return errors.Wrap(err, "error unmarshalling message")
	}

	if err := utils.ValidateStruct(&msg); err != nil {
		return errors.Wrap(err, "invalid event message")
	}

	log.Info().Str("item_id", msg.ItemID).Str("event_type", msg.Type).Msg("Processing message")

	event := domain.Event{
		ID:       msg.ID,
		ItemID:   msg.ItemID,
		Type:     msg.Type,
		Metadata: msg.Metadata,
	}
	if msg.Timestamp != nil {
		event.Timestamp = *msg.Timestamp
	}

	_, err := p.handler.RecordEvent(ctx, event)
	return err
}
