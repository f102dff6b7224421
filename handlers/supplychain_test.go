package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"example.com/backstage/services/supplychain/alerts"
	"example.com/backstage/services/supplychain/catalog"
	"example.com/backstage/services/supplychain/config"
	"example.com/backstage/services/supplychain/domain"
	"example.com/backstage/services/supplychain/eventstore"
	"example.com/backstage/services/supplychain/metrics"
)

// stubCatalog returns a fixed product name or error
type stubCatalog struct {
	name string
	err  error
}

func (s *stubCatalog) ProductName(_ context.Context, _ string) (string, error) {
	return s.name, s.err
}

func newTestHandler(cat catalog.ProductCatalog) *SupplyChainHandler {
	return NewSupplyChainHandler(
		eventstore.NewMemoryEventStore(),
		alerts.NewService(alerts.NewMemoryAlertStore()),
		cat,
		metrics.NewMetrics(),
		config.AlertsConfig{LowInventoryThreshold: 10},
	)
}

func TestRecordEventStoresEvent(t *testing.T) {
	handler := newTestHandler(nil)

	stored, err := handler.RecordEvent(context.Background(), domain.Event{
		ItemID: "item-1",
		Type:   domain.ProductionStarted,
	})

	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)

	recent, err := handler.GetRecentEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}

func TestRecordDelayTriggersExactlyOneAlert(t *testing.T) {
	handler := newTestHandler(nil)

	_, err := handler.RecordEvent(context.Background(), domain.Event{
		ItemID: "item-1",
		Type:   domain.Delay,
	})
	require.NoError(t, err)

	listed, err := handler.ListAlerts(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, domain.AlertWarning, listed[0].Level)
	require.Equal(t, "item-1", listed[0].ItemID)
	require.Equal(t, domain.AlertPending, listed[0].Status)
}

func TestDelayAlertIncludesReportedReason(t *testing.T) {
	handler := newTestHandler(nil)

	_, err := handler.RecordEvent(context.Background(), domain.Event{
		ItemID:   "item-1",
		Type:     domain.Delay,
		Metadata: map[string]interface{}{"reason": "carrier strike"},
	})
	require.NoError(t, err)

	listed, err := handler.ListAlerts(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Contains(t, listed[0].Message, "carrier strike")
}

func TestRecordQualityIssueTriggersAlert(t *testing.T) {
	handler := newTestHandler(nil)

	_, err := handler.RecordEvent(context.Background(), domain.Event{
		ItemID: "item-1",
		Type:   domain.QualityIssue,
	})
	require.NoError(t, err)

	listed, err := handler.ListAlerts(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "Quality issue reported", listed[0].Title)
}

func TestInventoryBelowThresholdTriggersAlert(t *testing.T) {
	handler := newTestHandler(nil)

	_, err := handler.RecordEvent(context.Background(), domain.Event{
		ItemID:   "item-1",
		Type:     domain.InventoryLevel,
		Metadata: map[string]interface{}{"quantity": 3},
	})
	require.NoError(t, err)

	listed, err := handler.ListAlerts(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "Low inventory", listed[0].Title)
}

func TestInventoryAtThresholdDoesNotAlert(t *testing.T) {
	handler := newTestHandler(nil)

	_, err := handler.RecordEvent(context.Background(), domain.Event{
		ItemID:   "item-1",
		Type:     domain.InventoryLevel,
		Metadata: map[string]interface{}{"quantity": 10},
	})
	require.NoError(t, err)

	listed, err := handler.ListAlerts(context.Background(), "", 0)
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestInventoryWithoutQuantityDoesNotAlert(t *testing.T) {
	handler := newTestHandler(nil)

	_, err := handler.RecordEvent(context.Background(), domain.Event{
		ItemID: "item-1",
		Type:   domain.InventoryLevel,
	})
	require.NoError(t, err)

	listed, err := handler.ListAlerts(context.Background(), "", 0)
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestOrdinaryEventDoesNotAlert(t *testing.T) {
	handler := newTestHandler(nil)

	_, err := handler.RecordEvent(context.Background(), domain.Event{
		ItemID: "item-1",
		Type:   domain.ProductionStarted,
	})
	require.NoError(t, err)

	listed, err := handler.ListAlerts(context.Background(), "", 0)
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestGetStatusUnknownItem(t *testing.T) {
	handler := newTestHandler(nil)

	_, err := handler.GetStatus(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGetStatusUsesCatalogName(t *testing.T) {
	handler := newTestHandler(&stubCatalog{name: "Widget"})

	_, err := handler.RecordEvent(context.Background(), domain.Event{
		ItemID: "item-1",
		Type:   domain.ProductionStarted,
	})
	require.NoError(t, err)

	status, err := handler.GetStatus(context.Background(), "item-1")
	require.NoError(t, err)
	require.Equal(t, "Widget", status.ItemName)
	require.Equal(t, domain.StageProduction, status.CurrentStage)
}

func TestGetStatusFallsBackToItemID(t *testing.T) {
	handler := newTestHandler(&stubCatalog{err: errors.New("catalog unavailable")})

	_, err := handler.RecordEvent(context.Background(), domain.Event{
		ItemID: "item-1",
		Type:   domain.ProductionStarted,
	})
	require.NoError(t, err)

	status, err := handler.GetStatus(context.Background(), "item-1")
	require.NoError(t, err)
	require.Equal(t, "item-1", status.ItemName)
}

func TestGetAnalyticsUnknownItem(t *testing.T) {
	handler := newTestHandler(nil)

	_, err := handler.GetAnalytics(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGetVisualizationMirrorsStatus(t *testing.T) {
	handler := newTestHandler(nil)

	_, err := handler.RecordEvent(context.Background(), domain.Event{
		ItemID: "item-1",
		Type:   domain.ProductionStarted,
	})
	require.NoError(t, err)

	viz, err := handler.GetVisualization(context.Background(), "item-1")
	require.NoError(t, err)
	require.Len(t, viz.Nodes, len(domain.StageOrder))
	require.Equal(t, domain.StageInProgress, viz.Nodes[0].Status)
}

func TestAlertLifecycleThroughHandler(t *testing.T) {
	handler := newTestHandler(nil)

	_, err := handler.RecordEvent(context.Background(), domain.Event{ItemID: "item-1", Type: domain.Delay})
	require.NoError(t, err)

	listed, err := handler.ListAlerts(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	acked, err := handler.AcknowledgeAlert(context.Background(), listed[0].ID, "operator-7")
	require.NoError(t, err)
	require.Equal(t, domain.AlertAcknowledged, acked.Status)

	resolved, err := handler.ResolveAlert(context.Background(), listed[0].ID)
	require.NoError(t, err)
	require.Equal(t, domain.AlertResolved, resolved.Status)
}

func TestSubscribersReceiveRuleAlerts(t *testing.T) {
	handler := newTestHandler(nil)

	var received []domain.Alert
	id := handler.SubscribeToAlerts(func(alert domain.Alert) error {
		received = append(received, alert)
		return nil
	})

	_, err := handler.RecordEvent(context.Background(), domain.Event{ItemID: "item-1", Type: domain.Delay})
	require.NoError(t, err)
	require.Len(t, received, 1)
	require.Equal(t, "item-1", received[0].ItemID)

	handler.UnsubscribeFromAlerts(id)
	_, err = handler.RecordEvent(context.Background(), domain.Event{ItemID: "item-2", Type: domain.Delay})
	require.NoError(t, err)
	require.Len(t, received, 1)
}

func TestEventStatisticsThroughHandler(t *testing.T) {
	handler := newTestHandler(nil)
	ts := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	for _, eventType := range []string{domain.ProductionStarted, domain.ProductionCompleted} {
		_, err := handler.RecordEvent(context.Background(), domain.Event{
			ItemID:    "item-1",
			Type:      eventType,
			Timestamp: ts,
		})
		require.NoError(t, err)
	}

	stats, err := handler.GetEventStatistics(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalEvents)
	require.Equal(t, 2, stats.CountsByItem["item-1"])
}
