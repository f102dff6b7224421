package alerts

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/backstage/services/supplychain/domain"
	"example.com/backstage/services/supplychain/models"
)

// GormAlertStore implements AlertStore on top of a relational database
type GormAlertStore struct {
	db *gorm.DB
}

// NewGormAlertStore creates a new GORM alert store
func NewGormAlertStore(db *gorm.DB) *GormAlertStore {
	return &GormAlertStore{db: db}
}

// Append stores a new alert
func (s *GormAlertStore) Append(ctx context.Context, alert domain.Alert) error {
	record := toModel(alert)
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return errors.Wrap(err, "failed to store alert")
	}
	return nil
}

// Get retrieves an alert by ID
func (s *GormAlertStore) Get(ctx context.Context, id string) (domain.Alert, error) {
	var record models.Alert
	err := s.db.WithContext(ctx).Where("alert_id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Alert{}, errors.Wrapf(domain.ErrNotFound, "alert %s", id)
	}
	if err != nil {
		return domain.Alert{}, errors.Wrap(err, "failed to load alert")
	}
	return toDomain(record), nil
}

// Update replaces an existing alert's record
func (s *GormAlertStore) Update(ctx context.Context, alert domain.Alert) error {
	updates := map[string]interface{}{
		"status":          alert.Status,
		"acknowledged_by": alert.AcknowledgedBy,
		"acknowledged_at": alert.AcknowledgedAt,
		"resolved_at":     alert.ResolvedAt,
		"updated_at":      time.Now().UTC(),
	}

	result := s.db.WithContext(ctx).Model(&models.Alert{}).
		Where("alert_id = ?", alert.ID).
		Updates(updates)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update alert")
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(domain.ErrNotFound, "alert %s", alert.ID)
	}
	return nil
}

// List returns alerts newest first, optionally filtered by level
func (s *GormAlertStore) List(ctx context.Context, level string, limit int) ([]domain.Alert, error) {
	query := s.db.WithContext(ctx).Order("timestamp DESC, id DESC")
	if level != "" {
		query = query.Where("level = ?", level)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.Alert
	if err := query.Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list alerts")
	}

	alerts := make([]domain.Alert, len(records))
	for i, record := range records {
		alerts[i] = toDomain(record)
	}
	return alerts, nil
}

// Statistics aggregates counts with a full scan over the store
func (s *GormAlertStore) Statistics(ctx context.Context) (domain.AlertStatistics, error) {
	stats := domain.AlertStatistics{
		CountsByStatus: make(map[string]int),
		CountsByLevel:  make(map[string]int),
		CountsByItem:   make(map[string]int),
		CountsByDate:   make(map[string]int),
	}

	var records []models.Alert
	if err := s.db.WithContext(ctx).Find(&records).Error; err != nil {
		return stats, errors.Wrap(err, "failed to scan alerts")
	}

	stats.TotalAlerts = len(records)
	for _, record := range records {
		stats.CountsByStatus[record.Status]++
		stats.CountsByLevel[record.Level]++
		if record.ItemID != "" {
			stats.CountsByItem[record.ItemID]++
		}
		stats.CountsByDate[record.Timestamp.UTC().Format("2006-01-02")]++
	}

	return stats, nil
}

// toModel converts a domain alert to its database record
func toModel(alert domain.Alert) models.Alert {
	record := models.Alert{
		AlertID:        alert.ID,
		Level:          alert.Level,
		Title:          alert.Title,
		Message:        alert.Message,
		ItemID:         alert.ItemID,
		Status:         alert.Status,
		Timestamp:      alert.Timestamp,
		AcknowledgedAt: alert.AcknowledgedAt,
		ResolvedAt:     alert.ResolvedAt,
	}
	if alert.AcknowledgedBy != "" {
		acknowledgedBy := alert.AcknowledgedBy
		record.AcknowledgedBy = &acknowledgedBy
	}
	return record
}

// toDomain converts a database record to a domain alert
func toDomain(record models.Alert) domain.Alert {
	alert := domain.Alert{
		ID:             record.AlertID,
		Level:          record.Level,
		Title:          record.Title,
		Message:        record.Message,
		ItemID:         record.ItemID,
		Status:         record.Status,
		Timestamp:      record.Timestamp,
		AcknowledgedAt: record.AcknowledgedAt,
		ResolvedAt:     record.ResolvedAt,
	}
	if record.AcknowledgedBy != nil {
		alert.AcknowledgedBy = *record.AcknowledgedBy
	}
	return alert
}
