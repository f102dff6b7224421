package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/domain"
)

// Service composes the alert store with the subscriber notifier and
// enforces the alert lifecycle.
type Service struct {
	store    AlertStore
	notifier *Notifier
}

// NewService creates a new alert service
func NewService(store AlertStore) *Service {
	return &Service{
		store:    store,
		notifier: NewNotifier(),
	}
}

// Send stores an alert, filling a missing ID, timestamp and status,
// and then fans it out to the current subscribers. Subscriber failures
// never fail the send.
func (s *Service) Send(ctx context.Context, alert domain.Alert) (domain.Alert, error) {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now().UTC()
	}
	if alert.Status == "" {
		alert.Status = domain.AlertPending
	}

	if err := s.store.Append(ctx, alert); err != nil {
		return domain.Alert{}, errors.Wrap(err, "failed to store alert")
	}

	log.Info().
		Str("alert_id", alert.ID).
		Str("level", alert.Level).
		Str("item_id", alert.ItemID).
		Msg("Alert sent")

	s.notifier.Notify(alert)

	return alert, nil
}

// Subscribe registers a subscriber for future alerts
func (s *Service) Subscribe(subscriber Subscriber) string {
	return s.notifier.Subscribe(subscriber)
}

// Unsubscribe removes a subscriber by subscription ID
func (s *Service) Unsubscribe(id string) {
	s.notifier.Unsubscribe(id)
}

// Acknowledge moves a pending alert to acknowledged, recording who
// acknowledged it and when
func (s *Service) Acknowledge(ctx context.Context, id, userID string) (domain.Alert, error) {
	return s.transition(ctx, id, domain.AlertAcknowledged, func(alert *domain.Alert) {
		now := time.Now().UTC()
		alert.AcknowledgedBy = userID
		alert.AcknowledgedAt = &now
	})
}

// Resolve moves a pending or acknowledged alert to resolved
func (s *Service) Resolve(ctx context.Context, id string) (domain.Alert, error) {
	return s.transition(ctx, id, domain.AlertResolved, func(alert *domain.Alert) {
		now := time.Now().UTC()
		alert.ResolvedAt = &now
	})
}

// List returns alerts newest first, optionally filtered by level
func (s *Service) List(ctx context.Context, level string, limit int) ([]domain.Alert, error) {
	return s.store.List(ctx, level, limit)
}

// Statistics aggregates counts over the alert store
func (s *Service) Statistics(ctx context.Context) (domain.AlertStatistics, error) {
	return s.store.Statistics(ctx)
}

// transition validates and applies a lifecycle move. Illegal moves are
// rejected without any mutation.
func (s *Service) transition(ctx context.Context, id, to string, mutate func(*domain.Alert)) (domain.Alert, error) {
	alert, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Alert{}, err
	}

	if !domain.CanTransition(alert.Status, to) {
		return domain.Alert{}, errors.Wrapf(domain.ErrInvalidTransition,
			"alert %s cannot move from %s to %s", id, alert.Status, to)
	}

	alert.Status = to
	mutate(&alert)

	if err := s.store.Update(ctx, alert); err != nil {
		return domain.Alert{}, err
	}

	return alert, nil
}
