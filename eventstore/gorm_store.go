package eventstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/backstage/services/supplychain/domain"
	"example.com/backstage/services/supplychain/models"
)

// GormEventStore implements EventStore on top of a relational database.
// The auto-increment row ID doubles as the insertion-order tiebreaker.
type GormEventStore struct {
	db *gorm.DB
}

// NewGormEventStore creates a new GORM event store
func NewGormEventStore(db *gorm.DB) *GormEventStore {
	return &GormEventStore{db: db}
}

// Append stores an event, filling a missing ID and timestamp
func (s *GormEventStore) Append(ctx context.Context, event domain.Event) (domain.Event, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return domain.Event{}, errors.Wrap(err, "failed to marshal event metadata")
	}

	dbEvent := models.Event{
		EventID:   event.ID,
		ItemID:    event.ItemID,
		EventType: event.Type,
		Metadata:  metadata,
		Timestamp: event.Timestamp,
		Processed: false,
	}

	if err := s.db.WithContext(ctx).Create(&dbEvent).Error; err != nil {
		return domain.Event{}, errors.Wrap(err, "failed to append event")
	}

	return event, nil
}

// History returns an item's events sorted ascending by timestamp
func (s *GormEventStore) History(ctx context.Context, itemID string) ([]domain.Event, error) {
	var dbEvents []models.Event
	if err := s.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("timestamp ASC, id ASC").
		Find(&dbEvents).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load event history")
	}

	return toDomainEvents(dbEvents)
}

// Recent returns the newest events across all items
func (s *GormEventStore) Recent(ctx context.Context, limit int) ([]domain.Event, error) {
	var dbEvents []models.Event
	if err := s.db.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&dbEvents).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load recent events")
	}

	return toDomainEvents(dbEvents)
}

// Statistics aggregates counts with a full scan over the log
func (s *GormEventStore) Statistics(ctx context.Context) (domain.EventStatistics, error) {
	stats := domain.EventStatistics{
		CountsByType: make(map[string]int),
		CountsByItem: make(map[string]int),
		CountsByDate: make(map[string]int),
	}

	rows, err := s.db.WithContext(ctx).Model(&models.Event{}).
		Select("item_id", "event_type", "timestamp").
		Rows()
	if err != nil {
		return stats, errors.Wrap(err, "failed to scan events")
	}
	defer rows.Close()

	for rows.Next() {
		var itemID, eventType string
		var timestamp time.Time
		if err := rows.Scan(&itemID, &eventType, &timestamp); err != nil {
			return stats, errors.Wrap(err, "failed to scan event row")
		}
		stats.TotalEvents++
		stats.CountsByType[eventType]++
		stats.CountsByItem[itemID]++
		stats.CountsByDate[timestamp.UTC().Format("2006-01-02")]++
	}

	return stats, rows.Err()
}

// toDomainEvents converts database rows to domain events
func toDomainEvents(dbEvents []models.Event) ([]domain.Event, error) {
	events := make([]domain.Event, len(dbEvents))
	for i, dbEvent := range dbEvents {
		var metadata map[string]interface{}
		if len(dbEvent.Metadata) > 0 {
			if err := json.Unmarshal(dbEvent.Metadata, &metadata); err != nil {
				return nil, errors.Wrapf(err, "failed to unmarshal metadata for event %s", dbEvent.EventID)
			}
		}
		events[i] = domain.Event{
			ID:        dbEvent.EventID,
			ItemID:    dbEvent.ItemID,
			Type:      dbEvent.EventType,
			Timestamp: dbEvent.Timestamp,
			Metadata:  metadata,
		}
	}
	return events, nil
}
