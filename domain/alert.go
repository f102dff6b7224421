package domain

import (
	"time"
)

// Alert levels
const (
	AlertInfo     = "info"
	AlertWarning  = "warning"
	AlertCritical = "critical"
)

// Alert statuses
const (
	AlertPending      = "pending"
	AlertAcknowledged = "acknowledged"
	AlertResolved     = "resolved"
)

// Alert is a raised operational alert. Alerts are created by rule
// evaluation on event ingestion and mutated only through the
// acknowledge/resolve lifecycle, never deleted.
type Alert struct {
	ID             string     `json:"id"`
	Level          string     `json:"level"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	ItemID         string     `json:"item_id,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
	Status         string     `json:"status"`
	AcknowledgedBy string     `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// alertTransitions lists the legal forward-only lifecycle moves
var alertTransitions = map[string][]string{
	AlertPending:      {AlertAcknowledged, AlertResolved},
	AlertAcknowledged: {AlertResolved},
	AlertResolved:     {},
}

// CanTransition reports whether an alert may move between two statuses
func CanTransition(from, to string) bool {
	for _, allowed := range alertTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AlertStatistics is a full-scan aggregation over the alert store
type AlertStatistics struct {
	TotalAlerts    int            `json:"total_alerts"`
	CountsByStatus map[string]int `json:"counts_by_status"`
	CountsByLevel  map[string]int `json:"counts_by_level"`
	CountsByItem   map[string]int `json:"counts_by_item"`
	CountsByDate   map[string]int `json:"counts_by_date"`
}
