package domain

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Risk levels
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// AnalyticsResult scores an item's pipeline run against fixed industry
// baselines. Derived per query, never stored.
type AnalyticsResult struct {
	ItemID                 string                       `json:"item_id"`
	EfficiencyScore        float64                      `json:"efficiency_score"`
	Bottlenecks            []string                     `json:"bottlenecks"`
	Recommendations        []string                     `json:"recommendations"`
	KeyMetrics             KeyMetrics                   `json:"key_metrics"`
	RiskAssessment         RiskAssessment               `json:"risk_assessment"`
	ComparisonWithBaseline map[Stage]BaselineComparison `json:"comparison_with_baseline"`
}

// KeyMetrics holds per-stage timing and issue rates
type KeyMetrics struct {
	PerStageDurationDays map[Stage]float64 `json:"per_stage_duration_days"`
	QualityIssueRate     float64           `json:"quality_issue_rate"`
	DelayRate            float64           `json:"delay_rate"`
}

// RiskAssessment combines independent risk factors; the overall level
// is the worst of the factors.
type RiskAssessment struct {
	OverallRisk string       `json:"overall_risk"`
	Factors     []RiskFactor `json:"factors"`
}

// RiskFactor is one scored risk dimension
type RiskFactor struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// BaselineComparison relates a measured stage duration to its baseline
type BaselineComparison struct {
	Value    float64 `json:"value"`
	Baseline float64 `json:"baseline"`
	Delta    float64 `json:"delta"`
}

// timedStage pairs the start/complete event types that bound a
// measured stage duration.
type timedStage struct {
	stage        Stage
	startType    string
	completeType string
	baselineDays float64
	weight       float64
}

// timedStages are the four stages scored against baselines
var timedStages = []timedStage{
	{StageProduction, ProductionStarted, ProductionCompleted, 3.5, 0.30},
	{StagePackaging, PackagingStarted, PackagingCompleted, 0.5, 0.20},
	{StageShipment, ShipmentStarted, ShipmentCompleted, 2.0, 0.25},
	{StageDelivery, DeliveryStarted, DeliveryCompleted, 1.0, 0.25},
}

// bottleneckLabels maps a slow stage to its human readable flag
var bottleneckLabels = map[Stage]string{
	StageProduction: "production time too long",
	StagePackaging:  "packaging time too long",
	StageShipment:   "shipment time too long",
	StageDelivery:   "delivery time too long",
}

// bottleneckRecommendations maps a bottleneck label to its remedy.
// Keeping this as data lets new rules land without touching the engine.
var bottleneckRecommendations = map[string]string{
	"production time too long": "optimize production line scheduling",
	"packaging time too long":  "streamline packaging operations",
	"shipment time too long":   "review carrier and routing options",
	"delivery time too long":   "improve last-mile delivery coordination",
}

const (
	recommendQualityControl  = "strengthen quality control"
	recommendSchedule        = "improve schedule management"
	recommendKeepMonitoring  = "continue monitoring stage durations against baselines"
	recommendKeepImprovement = "maintain continuous improvement reviews for all stages"
)

// bottleneckThreshold flags a stage whose actual duration exceeds its
// baseline by more than 20%.
const bottleneckThreshold = 1.2

// DeriveAnalytics computes efficiency, bottleneck, recommendation and
// risk figures from an item's event history. The history must contain
// at least one event.
func DeriveAnalytics(itemID string, history []Event) (*AnalyticsResult, error) {
	if len(history) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "no event history for item %s", itemID)
	}

	durations := stageDurationDays(history)

	result := &AnalyticsResult{
		ItemID:                 itemID,
		EfficiencyScore:        efficiencyScore(durations),
		ComparisonWithBaseline: make(map[Stage]BaselineComparison),
		KeyMetrics: KeyMetrics{
			PerStageDurationDays: durations,
			QualityIssueRate:     qualityIssueRate(history),
			DelayRate:            delayRate(history),
		},
	}

	for _, ts := range timedStages {
		actual, ok := durations[ts.stage]
		if !ok {
			continue
		}
		result.ComparisonWithBaseline[ts.stage] = BaselineComparison{
			Value:    actual,
			Baseline: ts.baselineDays,
			Delta:    actual - ts.baselineDays,
		}
		if actual > ts.baselineDays*bottleneckThreshold {
			result.Bottlenecks = append(result.Bottlenecks, bottleneckLabels[ts.stage])
		}
	}

	result.Recommendations = recommendations(result.Bottlenecks, history)
	result.RiskAssessment = assessRisk(result.KeyMetrics, durations)

	return result, nil
}

// stageDurationDays measures the four timed stages by locating the
// first started event and the matching completion for each.
func stageDurationDays(history []Event) map[Stage]float64 {
	durations := make(map[Stage]float64)

	for _, ts := range timedStages {
		var start *time.Time
		for _, event := range history {
			switch event.Type {
			case ts.startType:
				if start == nil {
					t := event.Timestamp
					start = &t
				}
			case ts.completeType:
				if start != nil {
					durations[ts.stage] = event.Timestamp.Sub(*start).Hours() / 24
				}
			}
			if _, done := durations[ts.stage]; done {
				break
			}
		}
	}

	return durations
}

// efficiencyScore is the weighted baseline/actual ratio over measured
// stages, with the combined result clamped to [0,100] so a stage run
// faster than baseline offsets a slow one. Weights of unmeasured
// stages are dropped from the denominator so partial runs score on
// the evidence available.
func efficiencyScore(durations map[Stage]float64) float64 {
	var weighted, totalWeight float64

	for _, ts := range timedStages {
		actual, ok := durations[ts.stage]
		if !ok {
			continue
		}
		if actual == 0 {
			actual = 1
		}
		weighted += ts.baselineDays / actual * 100 * ts.weight
		totalWeight += ts.weight
	}

	if totalWeight == 0 {
		return 100
	}

	score := weighted / totalWeight
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// qualityIssueRate is the ratio of quality issues to quality checks,
// zero when no checks are recorded.
func qualityIssueRate(history []Event) float64 {
	var issues, checks int
	for _, event := range history {
		if event.Type == QualityIssue {
			issues++
		}
		if strings.HasPrefix(event.Type, "quality_check") {
			checks++
		}
	}
	if checks == 0 {
		return 0
	}
	return float64(issues) / float64(checks)
}

// delayRate is the ratio of delay events to primary stage starts,
// zero when no starts are recorded.
func delayRate(history []Event) float64 {
	var delays, starts int
	for _, event := range history {
		switch event.Type {
		case Delay:
			delays++
		case ProductionStarted, PackagingStarted, ShipmentStarted, DeliveryStarted:
			starts++
		}
	}
	if starts == 0 {
		return 0
	}
	return float64(delays) / float64(starts)
}

// recommendations builds the advice list: one entry per bottleneck,
// issue and delay rules, and a generic fallback pair so the list is
// never empty.
func recommendations(bottlenecks []string, history []Event) []string {
	var recs []string

	for _, bottleneck := range bottlenecks {
		if rec, ok := bottleneckRecommendations[bottleneck]; ok {
			recs = append(recs, rec)
		}
	}
	if hasEventType(history, QualityIssue) {
		recs = append(recs, recommendQualityControl)
	}
	if hasEventType(history, Delay) {
		recs = append(recs, recommendSchedule)
	}

	if len(recs) == 0 {
		recs = append(recs, recommendKeepMonitoring, recommendKeepImprovement)
	}

	return recs
}

// assessRisk scores quality control, delivery reliability and time
// efficiency independently; the overall level is the worst of the three.
func assessRisk(metrics KeyMetrics, durations map[Stage]float64) RiskAssessment {
	quality := RiskLow
	switch {
	case metrics.QualityIssueRate > 0.10:
		quality = RiskHigh
	case metrics.QualityIssueRate > 0.05:
		quality = RiskMedium
	}

	delivery := RiskLow
	switch {
	case metrics.DelayRate > 0.15:
		delivery = RiskHigh
	case metrics.DelayRate > 0.08:
		delivery = RiskMedium
	}

	var baselineTotal, actualTotal float64
	for _, ts := range timedStages {
		actual, ok := durations[ts.stage]
		if !ok {
			continue
		}
		baselineTotal += ts.baselineDays
		actualTotal += actual
	}
	ratio := 1.0
	if actualTotal > 0 {
		ratio = baselineTotal / actualTotal
	}

	timeEfficiency := RiskLow
	switch {
	case ratio < 0.7:
		timeEfficiency = RiskHigh
	case ratio < 0.9:
		timeEfficiency = RiskMedium
	}

	factors := []RiskFactor{
		{Name: "quality_control", Level: quality},
		{Name: "delivery_reliability", Level: delivery},
		{Name: "time_efficiency", Level: timeEfficiency},
	}

	return RiskAssessment{
		OverallRisk: worstRisk(factors),
		Factors:     factors,
	}
}

// worstRisk returns the highest level among the factors
func worstRisk(factors []RiskFactor) string {
	rank := map[string]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2}
	worst := RiskLow
	for _, factor := range factors {
		if rank[factor.Level] > rank[worst] {
			worst = factor.Level
		}
	}
	return worst
}
