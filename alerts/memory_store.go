package alerts

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"example.com/backstage/services/supplychain/domain"
)

// MemoryAlertStore provides thread-safe in-memory alert storage
type MemoryAlertStore struct {
	// alerts holds all alerts in insertion order
	alerts []domain.Alert
	// byID maps alert IDs to positions in the alerts slice
	byID map[string]int
	// mutex protects concurrent access
	mutex sync.RWMutex
}

// NewMemoryAlertStore creates a new in-memory alert store
func NewMemoryAlertStore() *MemoryAlertStore {
	return &MemoryAlertStore{
		byID: make(map[string]int),
	}
}

// Append stores a new alert
func (s *MemoryAlertStore) Append(_ context.Context, alert domain.Alert) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.byID[alert.ID]; exists {
		return errors.Errorf("alert %s already exists", alert.ID)
	}

	s.byID[alert.ID] = len(s.alerts)
	s.alerts = append(s.alerts, alert)

	return nil
}

// Get retrieves an alert by ID
func (s *MemoryAlertStore) Get(_ context.Context, id string) (domain.Alert, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	pos, exists := s.byID[id]
	if !exists {
		return domain.Alert{}, errors.Wrapf(domain.ErrNotFound, "alert %s", id)
	}

	return s.alerts[pos], nil
}

// Update replaces an existing alert's record
func (s *MemoryAlertStore) Update(_ context.Context, alert domain.Alert) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	pos, exists := s.byID[alert.ID]
	if !exists {
		return errors.Wrapf(domain.ErrNotFound, "alert %s", alert.ID)
	}

	s.alerts[pos] = alert

	return nil
}

// List returns alerts newest first, optionally filtered by level
func (s *MemoryAlertStore) List(_ context.Context, level string, limit int) ([]domain.Alert, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var matched []domain.Alert
	for _, alert := range s.alerts {
		if level != "" && alert.Level != level {
			continue
		}
		matched = append(matched, alert)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	return matched, nil
}

// Statistics aggregates counts over the whole store
func (s *MemoryAlertStore) Statistics(_ context.Context) (domain.AlertStatistics, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stats := domain.AlertStatistics{
		TotalAlerts:    len(s.alerts),
		CountsByStatus: make(map[string]int),
		CountsByLevel:  make(map[string]int),
		CountsByItem:   make(map[string]int),
		CountsByDate:   make(map[string]int),
	}

	for _, alert := range s.alerts {
		stats.CountsByStatus[alert.Status]++
		stats.CountsByLevel[alert.Level]++
		if alert.ItemID != "" {
			stats.CountsByItem[alert.ItemID]++
		}
		stats.CountsByDate[alert.Timestamp.UTC().Format("2006-01-02")]++
	}

	return stats, nil
}
