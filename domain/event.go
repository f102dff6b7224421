package domain

import (
	"time"
)

// EventType constants
const (
	// Pipeline stage events
	ProductionStarted   = "production_started"
	ProductionCompleted = "production_completed"
	QualityCheckStarted = "quality_check_started"
	QualityCheckPassed  = "quality_check_passed"
	QualityCheckFailed  = "quality_check_failed"
	PackagingStarted    = "packaging_started"
	PackagingCompleted  = "packaging_completed"
	StorageIn           = "storage_in"
	StorageOut          = "storage_out"
	ShipmentStarted     = "shipment_started"
	ShipmentCompleted   = "shipment_completed"
	DeliveryStarted     = "delivery_started"
	DeliveryCompleted   = "delivery_completed"
	Delivered           = "delivered"

	// Exception events
	Returned        = "returned"
	QualityIssue    = "quality_issue"
	Delay           = "delay"
	ShipmentDelayed = "shipment_delayed"
	InventoryLevel  = "inventory_level"
)

// Event represents a supply chain event for a tracked item.
// Events are immutable once appended to the store. Unknown event
// types are accepted and stored but ignored by stage derivation.
type Event struct {
	ID        string                 `json:"id"`
	ItemID    string                 `json:"item_id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// EventStatistics is a full-scan aggregation over the event log
type EventStatistics struct {
	TotalEvents  int            `json:"total_events"`
	CountsByType map[string]int `json:"counts_by_type"`
	CountsByItem map[string]int `json:"counts_by_item"`
	CountsByDate map[string]int `json:"counts_by_date"`
}
