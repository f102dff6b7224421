package eventstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/backstage/services/supplychain/domain"
)

// storedEvent pairs an event with its insertion sequence, used as the
// tiebreaker when timestamps collide.
type storedEvent struct {
	event domain.Event
	seq   uint64
}

// MemoryEventStore is a thread-safe in-memory event log. Appends for
// different items never contend beyond the store mutex; reads return
// copies so callers can never mutate the log.
type MemoryEventStore struct {
	// events holds the full log in insertion order
	events []storedEvent
	// byItem indexes log positions per item for history reads
	byItem map[string][]int
	// seq is a global monotonic insertion counter
	seq uint64
	// mutex protects concurrent access to the log and index
	mutex sync.RWMutex
}

// NewMemoryEventStore creates a new in-memory event store
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{
		byItem: make(map[string][]int),
	}
}

// Append stores an event, filling a missing ID and timestamp
func (s *MemoryEventStore) Append(_ context.Context, event domain.Event) (domain.Event, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.seq++
	s.byItem[event.ItemID] = append(s.byItem[event.ItemID], len(s.events))
	s.events = append(s.events, storedEvent{event: event, seq: s.seq})

	return event, nil
}

// History returns an item's events sorted ascending by timestamp,
// insertion order breaking ties. Unknown items yield an empty slice.
func (s *MemoryEventStore) History(_ context.Context, itemID string) ([]domain.Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	positions := s.byItem[itemID]
	history := make([]storedEvent, len(positions))
	for i, pos := range positions {
		history[i] = s.events[pos]
	}

	sort.SliceStable(history, func(i, j int) bool {
		if history[i].event.Timestamp.Equal(history[j].event.Timestamp) {
			return history[i].seq < history[j].seq
		}
		return history[i].event.Timestamp.Before(history[j].event.Timestamp)
	})

	events := make([]domain.Event, len(history))
	for i, stored := range history {
		events[i] = stored.event
	}

	return events, nil
}

// Recent returns the newest events across all items, descending by timestamp
func (s *MemoryEventStore) Recent(_ context.Context, limit int) ([]domain.Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	all := make([]storedEvent, len(s.events))
	copy(all, s.events)

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].event.Timestamp.Equal(all[j].event.Timestamp) {
			return all[i].seq > all[j].seq
		}
		return all[i].event.Timestamp.After(all[j].event.Timestamp)
	})

	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}

	events := make([]domain.Event, len(all))
	for i, stored := range all {
		events[i] = stored.event
	}

	return events, nil
}

// Statistics aggregates counts over the whole log
func (s *MemoryEventStore) Statistics(_ context.Context) (domain.EventStatistics, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stats := domain.EventStatistics{
		TotalEvents:  len(s.events),
		CountsByType: make(map[string]int),
		CountsByItem: make(map[string]int),
		CountsByDate: make(map[string]int),
	}

	for _, stored := range s.events {
		stats.CountsByType[stored.event.Type]++
		stats.CountsByItem[stored.event.ItemID]++
		stats.CountsByDate[stored.event.Timestamp.UTC().Format("2006-01-02")]++
	}

	return stats, nil
}
