package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"example.com/backstage/services/supplychain/domain"
)

func TestSendFillsDefaultsAndStores(t *testing.T) {
	service := NewService(NewMemoryAlertStore())

	sent, err := service.Send(context.Background(), domain.Alert{
		Level:   domain.AlertWarning,
		Title:   "Delay reported",
		Message: "A delay was reported for item item-1",
		ItemID:  "item-1",
	})

	require.NoError(t, err)
	require.NotEmpty(t, sent.ID)
	require.False(t, sent.Timestamp.IsZero())
	require.Equal(t, domain.AlertPending, sent.Status)

	listed, err := service.List(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, sent.ID, listed[0].ID)
}

func TestAcknowledgeThenResolve(t *testing.T) {
	service := NewService(NewMemoryAlertStore())

	sent, err := service.Send(context.Background(), domain.Alert{Level: domain.AlertWarning, Title: "t"})
	require.NoError(t, err)

	acked, err := service.Acknowledge(context.Background(), sent.ID, "operator-7")
	require.NoError(t, err)
	require.Equal(t, domain.AlertAcknowledged, acked.Status)
	require.Equal(t, "operator-7", acked.AcknowledgedBy)
	require.NotNil(t, acked.AcknowledgedAt)

	resolved, err := service.Resolve(context.Background(), sent.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AlertResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
}

func TestResolveWithoutAcknowledge(t *testing.T) {
	service := NewService(NewMemoryAlertStore())

	sent, err := service.Send(context.Background(), domain.Alert{Level: domain.AlertInfo, Title: "t"})
	require.NoError(t, err)

	resolved, err := service.Resolve(context.Background(), sent.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AlertResolved, resolved.Status)
}

func TestIllegalTransitionLeavesAlertUntouched(t *testing.T) {
	service := NewService(NewMemoryAlertStore())

	sent, err := service.Send(context.Background(), domain.Alert{Level: domain.AlertWarning, Title: "t"})
	require.NoError(t, err)

	_, err = service.Resolve(context.Background(), sent.ID)
	require.NoError(t, err)

	// A resolved alert cannot be acknowledged
	_, err = service.Acknowledge(context.Background(), sent.ID, "operator-7")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrInvalidTransition))

	listed, err := service.List(context.Background(), "", 0)
	require.NoError(t, err)
	require.Equal(t, domain.AlertResolved, listed[0].Status)
	require.Empty(t, listed[0].AcknowledgedBy)
}

func TestTransitionUnknownAlert(t *testing.T) {
	service := NewService(NewMemoryAlertStore())

	_, err := service.Acknowledge(context.Background(), "missing", "operator-7")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestNotifySurvivesFailingSubscribers(t *testing.T) {
	service := NewService(NewMemoryAlertStore())

	var first, third []domain.Alert
	service.Subscribe(func(alert domain.Alert) error {
		first = append(first, alert)
		return nil
	})
	service.Subscribe(func(alert domain.Alert) error {
		panic("subscriber blew up")
	})
	service.Subscribe(func(alert domain.Alert) error {
		third = append(third, alert)
		return errors.New("delivery failed")
	})

	sent, err := service.Send(context.Background(), domain.Alert{Level: domain.AlertCritical, Title: "t"})
	require.NoError(t, err)

	// The panicking and erroring subscribers never affect the others
	require.Len(t, first, 1)
	require.Len(t, third, 1)
	require.Equal(t, sent.ID, first[0].ID)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	service := NewService(NewMemoryAlertStore())

	var received int
	id := service.Subscribe(func(alert domain.Alert) error {
		received++
		return nil
	})

	_, err := service.Send(context.Background(), domain.Alert{Level: domain.AlertInfo, Title: "t"})
	require.NoError(t, err)
	require.Equal(t, 1, received)

	service.Unsubscribe(id)

	_, err = service.Send(context.Background(), domain.Alert{Level: domain.AlertInfo, Title: "t"})
	require.NoError(t, err)
	require.Equal(t, 1, received)
}

func TestListFiltersByLevelAndLimit(t *testing.T) {
	service := NewService(NewMemoryAlertStore())
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	levels := []string{domain.AlertInfo, domain.AlertWarning, domain.AlertWarning, domain.AlertCritical}
	for i, level := range levels {
		_, err := service.Send(context.Background(), domain.Alert{
			Level:     level,
			Title:     "t",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	warnings, err := service.List(context.Background(), domain.AlertWarning, 0)
	require.NoError(t, err)
	require.Len(t, warnings, 2)

	// Newest first
	all, err := service.List(context.Background(), "", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, domain.AlertCritical, all[0].Level)
}

func TestStatisticsCountsByStatusAndLevel(t *testing.T) {
	service := NewService(NewMemoryAlertStore())

	first, err := service.Send(context.Background(), domain.Alert{Level: domain.AlertWarning, Title: "t", ItemID: "item-1"})
	require.NoError(t, err)
	_, err = service.Send(context.Background(), domain.Alert{Level: domain.AlertCritical, Title: "t", ItemID: "item-1"})
	require.NoError(t, err)

	_, err = service.Resolve(context.Background(), first.ID)
	require.NoError(t, err)

	stats, err := service.Statistics(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalAlerts)
	require.Equal(t, 1, stats.CountsByStatus[domain.AlertPending])
	require.Equal(t, 1, stats.CountsByStatus[domain.AlertResolved])
	require.Equal(t, 1, stats.CountsByLevel[domain.AlertWarning])
	require.Equal(t, 2, stats.CountsByItem["item-1"])
}
