package models

import (
	"time"
)

// Event represents a supply chain event in the database. Rows are
// append-only; the processed flag is only touched by the projection
// worker.
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"uniqueIndex" json:"event_id"`
	ItemID    string    `gorm:"index" json:"item_id"`
	EventType string    `gorm:"index" json:"event_type"`
	Metadata  []byte    `json:"metadata"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
	Error     *string   `json:"error"`
	Processed bool      `gorm:"index" json:"processed"`
}

// Alert represents an alert record in the database
type Alert struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	AlertID        string     `gorm:"uniqueIndex" json:"alert_id"`
	Level          string     `gorm:"index" json:"level"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	ItemID         string     `gorm:"index" json:"item_id"`
	Status         string     `gorm:"index" json:"status"`
	Timestamp      time.Time  `gorm:"index" json:"timestamp"`
	AcknowledgedBy *string    `json:"acknowledged_by"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
