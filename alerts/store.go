package alerts

import (
	"context"

	"example.com/backstage/services/supplychain/domain"
)

// AlertStore is the interface for alert persistence. Alerts are never
// deleted, only appended and mutated through the lifecycle.
type AlertStore interface {
	// Append stores a new alert
	Append(ctx context.Context, alert domain.Alert) error

	// Get retrieves an alert by ID; unknown IDs yield domain.ErrNotFound
	Get(ctx context.Context, id string) (domain.Alert, error)

	// Update replaces an existing alert's record
	Update(ctx context.Context, alert domain.Alert) error

	// List returns alerts sorted newest first, optionally filtered by
	// level, truncated to limit
	List(ctx context.Context, level string, limit int) ([]domain.Alert, error)

	// Statistics aggregates counts over the whole store
	Statistics(ctx context.Context) (domain.AlertStatistics, error)
}
