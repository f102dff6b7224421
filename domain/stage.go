package domain

import (
	"time"
)

// Stage identifies one phase of the fixed supply chain pipeline
type Stage string

// Pipeline stages in order
const (
	StageProduction Stage = "production"
	StageQuality    Stage = "quality"
	StagePackaging  Stage = "packaging"
	StageStorage    Stage = "storage"
	StageShipment   Stage = "shipment"
	StageDelivery   Stage = "delivery"
	StageCompleted  Stage = "completed"
)

// StageOrder is the fixed pipeline sequence. Stage order is invariant.
var StageOrder = []Stage{
	StageProduction,
	StageQuality,
	StagePackaging,
	StageStorage,
	StageShipment,
	StageDelivery,
	StageCompleted,
}

// StageStatus constants
const (
	StagePending    = "pending"
	StageInProgress = "in_progress"
	StageComplete   = "completed"
	StageFailed     = "failed"
)

// StageState is the derived state of a single stage. Never persisted;
// recomputed from the event history on every read.
type StageState struct {
	Stage      Stage      `json:"stage"`
	Status     string     `json:"status"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	DurationMs *int64     `json:"duration_ms,omitempty"`
}

// stageWeights are the fixed progress weights per stage, summing to 100
var stageWeights = map[Stage]float64{
	StageProduction: 20,
	StageQuality:    10,
	StagePackaging:  15,
	StageStorage:    10,
	StageShipment:   20,
	StageDelivery:   15,
	StageCompleted:  10,
}

// expectedDurations are fixed per-stage baselines used for progress
// and completion estimation. The terminal stage has no duration.
var expectedDurations = map[Stage]time.Duration{
	StageProduction: 48 * time.Hour,
	StageQuality:    24 * time.Hour,
	StagePackaging:  24 * time.Hour,
	StageStorage:    72 * time.Hour,
	StageShipment:   120 * time.Hour,
	StageDelivery:   48 * time.Hour,
}

// transition actions
const (
	actionStart = iota
	actionComplete
	actionFail
)

type stageTransition struct {
	stage  Stage
	action int
}

// stageTransitions maps event types to stage updates. Event types not
// present here are ignored by derivation, so producers can add new
// types without breaking ingestion.
var stageTransitions = map[string]stageTransition{
	ProductionStarted:   {StageProduction, actionStart},
	ProductionCompleted: {StageProduction, actionComplete},
	QualityCheckStarted: {StageQuality, actionStart},
	QualityCheckPassed:  {StageQuality, actionComplete},
	QualityCheckFailed:  {StageQuality, actionFail},
	PackagingStarted:    {StagePackaging, actionStart},
	PackagingCompleted:  {StagePackaging, actionComplete},
	StorageIn:           {StageStorage, actionStart},
	StorageOut:          {StageStorage, actionComplete},
	ShipmentStarted:     {StageShipment, actionStart},
	ShipmentCompleted:   {StageShipment, actionComplete},
	DeliveryStarted:     {StageDelivery, actionStart},
	DeliveryCompleted:   {StageDelivery, actionComplete},
	Delivered:           {StageCompleted, actionComplete},
}

// stageIndex returns the position of a stage in the pipeline sequence
func stageIndex(stage Stage) int {
	for i, s := range StageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}
