package handlers

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/alerts"
	"example.com/backstage/services/supplychain/catalog"
	"example.com/backstage/services/supplychain/config"
	"example.com/backstage/services/supplychain/domain"
	"example.com/backstage/services/supplychain/eventstore"
	"example.com/backstage/services/supplychain/metrics"
)

// defaultRecentLimit bounds recent-event queries when no limit is given
const defaultRecentLimit = 10

// SupplyChainHandler orchestrates the engine: event ingestion with
// alert rule evaluation and fan-out, and the derived status, analytics
// and visualization views. All reads recompute from the event log.
type SupplyChainHandler struct {
	events    eventstore.EventStore
	alerts    *alerts.Service
	catalog   catalog.ProductCatalog
	collector *metrics.Metrics
	alertCfg  config.AlertsConfig
}

// NewSupplyChainHandler creates a new supply chain handler
func NewSupplyChainHandler(
	events eventstore.EventStore,
	alertService *alerts.Service,
	productCatalog catalog.ProductCatalog,
	collector *metrics.Metrics,
	alertCfg config.AlertsConfig,
) *SupplyChainHandler {
	return &SupplyChainHandler{
		events:    events,
		alerts:    alertService,
		catalog:   productCatalog,
		collector: collector,
		alertCfg:  alertCfg,
	}
}

// RecordEvent appends an event to the log and evaluates the alert rule
// table against it. A failed alert send is logged but never fails the
// ingestion; the event is already durable at that point.
func (h *SupplyChainHandler) RecordEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	stored, err := h.events.Append(ctx, event)
	if err != nil {
		return domain.Event{}, errors.Wrap(err, "failed to record event")
	}

	h.collector.IncrementCounter("events_recorded")

	log.Info().
		Str("event_id", stored.ID).
		Str("item_id", stored.ItemID).
		Str("event_type", stored.Type).
		Msg("Event recorded")

	if alert := evaluateAlertRules(stored, h.alertCfg.LowInventoryThreshold); alert != nil {
		if _, err := h.alerts.Send(ctx, *alert); err != nil {
			log.Error().Err(err).Str("event_id", stored.ID).Msg("Failed to send alert for event")
		} else {
			h.collector.IncrementCounter("alerts_triggered")
		}
	}

	return stored, nil
}

// GetStatus recomputes the pipeline status for an item from its full
// event history. Missing history yields domain.ErrNotFound.
func (h *SupplyChainHandler) GetStatus(ctx context.Context, itemID string) (*domain.SupplyChainStatus, error) {
	start := time.Now()
	defer func() { h.collector.RecordDuration("get_status", time.Since(start)) }()

	history, err := h.events.History(ctx, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load event history")
	}

	return domain.DeriveStatus(itemID, h.itemName(ctx, itemID), history, time.Now().UTC())
}

// GetAnalytics recomputes efficiency and risk analytics for an item
func (h *SupplyChainHandler) GetAnalytics(ctx context.Context, itemID string) (*domain.AnalyticsResult, error) {
	start := time.Now()
	defer func() { h.collector.RecordDuration("get_analytics", time.Since(start)) }()

	history, err := h.events.History(ctx, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load event history")
	}

	return domain.DeriveAnalytics(itemID, history)
}

// GetVisualization builds the render-ready stage graph for an item
func (h *SupplyChainHandler) GetVisualization(ctx context.Context, itemID string) (*domain.Visualization, error) {
	status, err := h.GetStatus(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return domain.BuildVisualization(status), nil
}

// GetRecentEvents returns the newest events across all items
func (h *SupplyChainHandler) GetRecentEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return h.events.Recent(ctx, limit)
}

// GetEventStatistics aggregates counts over the event log
func (h *SupplyChainHandler) GetEventStatistics(ctx context.Context) (domain.EventStatistics, error) {
	return h.events.Statistics(ctx)
}

// ListAlerts returns alerts newest first, optionally filtered by level
func (h *SupplyChainHandler) ListAlerts(ctx context.Context, level string, limit int) ([]domain.Alert, error) {
	return h.alerts.List(ctx, level, limit)
}

// AcknowledgeAlert acknowledges a pending alert
func (h *SupplyChainHandler) AcknowledgeAlert(ctx context.Context, id, userID string) (domain.Alert, error) {
	return h.alerts.Acknowledge(ctx, id, userID)
}

// ResolveAlert resolves a pending or acknowledged alert
func (h *SupplyChainHandler) ResolveAlert(ctx context.Context, id string) (domain.Alert, error) {
	return h.alerts.Resolve(ctx, id)
}

// GetAlertStatistics aggregates counts over the alert store
func (h *SupplyChainHandler) GetAlertStatistics(ctx context.Context) (domain.AlertStatistics, error) {
	return h.alerts.Statistics(ctx)
}

// SubscribeToAlerts registers an in-process alert subscriber
func (h *SupplyChainHandler) SubscribeToAlerts(subscriber alerts.Subscriber) string {
	return h.alerts.Subscribe(subscriber)
}

// UnsubscribeFromAlerts removes an alert subscriber
func (h *SupplyChainHandler) UnsubscribeFromAlerts(id string) {
	h.alerts.Unsubscribe(id)
}

// itemName resolves the display name via the product catalog, falling
// back to the item ID when the collaborator is unavailable
func (h *SupplyChainHandler) itemName(ctx context.Context, itemID string) string {
	if h.catalog == nil {
		return itemID
	}
	name, err := h.catalog.ProductName(ctx, itemID)
	if err != nil || name == "" {
		log.Debug().Err(err).Str("item_id", itemID).Msg("Product name lookup failed, using item ID")
		return itemID
	}
	return name
}
