package domain

import (
	"time"

	"github.com/pkg/errors"
)

// SupplyChainStatus is the derived pipeline status of a tracked item.
// It is recomputed from the event history on every read and owned by
// the caller; there is no persisted current state that can drift.
type SupplyChainStatus struct {
	ItemID                  string       `json:"item_id"`
	ItemName                string       `json:"item_name"`
	CurrentStage            Stage        `json:"current_stage"`
	ProgressPercent         float64      `json:"progress_percent"`
	Stages                  []StageState `json:"stages"`
	LastUpdateTime          time.Time    `json:"last_update_time"`
	EstimatedCompletionTime time.Time    `json:"estimated_completion_time"`
	HasQualityIssues        bool         `json:"has_quality_issues"`
	HasDelays               bool         `json:"has_delays"`
}

// DeriveStatus replays an item's event history, ordered ascending by
// timestamp, into a pipeline status snapshot. The history must contain
// at least one event.
func DeriveStatus(itemID, itemName string, history []Event, now time.Time) (*SupplyChainStatus, error) {
	if len(history) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "no event history for item %s", itemID)
	}

	states := make(map[Stage]*StageState, len(StageOrder))
	for _, stage := range StageOrder {
		states[stage] = &StageState{Stage: stage, Status: StagePending}
	}

	for _, event := range history {
		transition, ok := stageTransitions[event.Type]
		if !ok {
			continue
		}
		applyTransition(states, transition, event.Timestamp)
	}

	status := &SupplyChainStatus{
		ItemID:         itemID,
		ItemName:       itemName,
		LastUpdateTime: history[len(history)-1].Timestamp,
	}

	for _, stage := range StageOrder {
		status.Stages = append(status.Stages, *states[stage])
	}

	status.CurrentStage = currentStage(states)
	status.ProgressPercent = progressPercent(states, status.CurrentStage, now)
	status.HasQualityIssues = hasEventType(history, QualityIssue, QualityCheckFailed)
	status.HasDelays = hasEventType(history, Delay, ShipmentDelayed)
	status.EstimatedCompletionTime = estimateCompletion(states, status.CurrentStage, history, now)

	return status, nil
}

// applyTransition updates stage state for a single event
func applyTransition(states map[Stage]*StageState, t stageTransition, ts time.Time) {
	state := states[t.stage]

	switch t.action {
	case actionStart:
		state.Status = StageInProgress
		startTime := ts
		state.StartTime = &startTime

	case actionComplete:
		state.Status = StageComplete
		endTime := ts
		state.EndTime = &endTime
		if state.StartTime != nil {
			duration := endTime.Sub(*state.StartTime).Milliseconds()
			state.DurationMs = &duration
		}
		// Completing a stage eagerly starts the next one even before a
		// real started event arrives; downstream estimation relies on it.
		if next := stageIndex(t.stage) + 1; next < len(StageOrder) {
			nextState := states[StageOrder[next]]
			if nextState.Status == StagePending {
				nextState.Status = StageInProgress
				startTime := ts
				nextState.StartTime = &startTime
			}
		}

	case actionFail:
		// Terminal for the stage; pipeline continuation is left to the
		// operator, not auto-advanced.
		state.Status = StageFailed
	}
}

// currentStage resolves the item's current stage: the first stage in
// progress, else the first pending one, else the terminal stage when
// it has completed. Malformed histories fall back to production.
func currentStage(states map[Stage]*StageState) Stage {
	for _, stage := range StageOrder {
		if states[stage].Status == StageInProgress {
			return stage
		}
	}
	for _, stage := range StageOrder {
		if states[stage].Status == StagePending {
			return stage
		}
	}
	if states[StageCompleted].Status == StageComplete {
		return StageCompleted
	}
	return StageProduction
}

// progressPercent computes weighted completion. Completed stages count
// their full weight; the current in-progress stage counts a fraction
// of its weight based on elapsed time against the stage baseline.
func progressPercent(states map[Stage]*StageState, current Stage, now time.Time) float64 {
	var progress float64

	for _, stage := range StageOrder {
		state := states[stage]
		if state.Status == StageComplete {
			progress += stageWeights[stage]
			continue
		}
		if stage != current || state.Status != StageInProgress {
			continue
		}

		fraction := 0.5
		if state.StartTime != nil {
			expected := expectedDurations[stage]
			if expected > 0 {
				elapsed := now.Sub(*state.StartTime)
				fraction = float64(elapsed) / float64(expected)
				if fraction > 1 {
					fraction = 1
				}
				if fraction < 0 {
					fraction = 0
				}
			}
		}
		progress += stageWeights[stage] * fraction
	}

	if progress > 100 {
		progress = 100
	}
	if progress < 0 {
		progress = 0
	}
	return progress
}

// estimateCompletion predicts when the item clears the pipeline by
// summing the remaining baseline time of the current stage and the
// baselines of all stages still pending.
func estimateCompletion(states map[Stage]*StageState, current Stage, history []Event, now time.Time) time.Time {
	if current == StageCompleted && states[StageCompleted].Status == StageComplete {
		for i := len(history) - 1; i >= 0; i-- {
			if history[i].Type == Delivered {
				return history[i].Timestamp
			}
		}
		return history[len(history)-1].Timestamp
	}

	var remaining time.Duration
	for _, stage := range StageOrder {
		expected, ok := expectedDurations[stage]
		if !ok {
			continue
		}
		state := states[stage]

		switch {
		case state.Status == StagePending:
			remaining += expected
		case stage == current && state.Status == StageInProgress:
			if state.StartTime == nil {
				remaining += expected
				continue
			}
			left := expected - now.Sub(*state.StartTime)
			if left > 0 {
				remaining += left
			}
		}
	}

	return now.Add(remaining)
}

// hasEventType reports whether the history contains any of the given types
func hasEventType(history []Event, types ...string) bool {
	for _, event := range history {
		for _, t := range types {
			if event.Type == t {
				return true
			}
		}
	}
	return false
}
