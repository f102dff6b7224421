package eventstore

import (
	"context"

	"example.com/backstage/services/supplychain/domain"
)

// EventStore is the interface for the append-only supply chain event log
type EventStore interface {
	// Append stores an event, filling a missing ID and timestamp,
	// and returns the stored copy
	Append(ctx context.Context, event domain.Event) (domain.Event, error)

	// History returns an item's events sorted ascending by timestamp,
	// ties broken by insertion order. Unknown items yield an empty slice.
	History(ctx context.Context, itemID string) ([]domain.Event, error)

	// Recent returns the newest events across all items, descending
	// by timestamp, truncated to limit
	Recent(ctx context.Context, limit int) ([]domain.Event, error)

	// Statistics aggregates counts over the whole log
	Statistics(ctx context.Context) (domain.EventStatistics, error)
}
