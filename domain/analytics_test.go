package domain

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestDeriveAnalyticsEmptyHistory(t *testing.T) {
	_, err := DeriveAnalytics("item-1", nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestDeriveAnalyticsOnBaselineScoresHundred(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	history := []Event{
		event("item-1", ProductionStarted, t0),
		event("item-1", ProductionCompleted, t0.Add(time.Duration(3.5*float64(day)))),
		event("item-1", PackagingStarted, t0.Add(4*day)),
		event("item-1", PackagingCompleted, t0.Add(4*day+12*time.Hour)),
		event("item-1", ShipmentStarted, t0.Add(5*day)),
		event("item-1", ShipmentCompleted, t0.Add(7*day)),
		event("item-1", DeliveryStarted, t0.Add(7*day)),
		event("item-1", DeliveryCompleted, t0.Add(8*day)),
	}

	result, err := DeriveAnalytics("item-1", history)
	require.NoError(t, err)
	require.InDelta(t, 100.0, result.EfficiencyScore, 0.01)
	require.Empty(t, result.Bottlenecks)
	require.Equal(t, RiskLow, result.RiskAssessment.OverallRisk)

	// Measured durations match the baselines
	require.InDelta(t, 3.5, result.KeyMetrics.PerStageDurationDays[StageProduction], 0.001)
	require.InDelta(t, 0.5, result.KeyMetrics.PerStageDurationDays[StagePackaging], 0.001)

	comparison := result.ComparisonWithBaseline[StageShipment]
	require.InDelta(t, 2.0, comparison.Value, 0.001)
	require.InDelta(t, 2.0, comparison.Baseline, 0.001)
	require.InDelta(t, 0.0, comparison.Delta, 0.001)
}

func TestDeriveAnalyticsFastStageOffsetsSlowOne(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	history := []Event{
		// Production in 1 day against a 3.5 day baseline scores 350,
		// which more than covers delivery at half speed
		event("item-1", ProductionStarted, t0),
		event("item-1", ProductionCompleted, t0.Add(1*day)),
		event("item-1", PackagingStarted, t0.Add(1*day)),
		event("item-1", PackagingCompleted, t0.Add(1*day+12*time.Hour)),
		event("item-1", ShipmentStarted, t0.Add(2*day)),
		event("item-1", ShipmentCompleted, t0.Add(4*day)),
		event("item-1", DeliveryStarted, t0.Add(4*day)),
		event("item-1", DeliveryCompleted, t0.Add(6*day)),
	}

	result, err := DeriveAnalytics("item-1", history)
	require.NoError(t, err)

	// 0.3*350 + 0.2*100 + 0.25*100 + 0.25*50 = 162.5, clamped to 100
	require.Equal(t, 100.0, result.EfficiencyScore)
}

func TestDeriveAnalyticsOffsetBelowClamp(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	history := []Event{
		// Production at 7 days scores 50; delivery at 0.75 days scores
		// 133.33 and pulls the combined score back up
		event("item-1", ProductionStarted, t0),
		event("item-1", ProductionCompleted, t0.Add(7*day)),
		event("item-1", DeliveryStarted, t0.Add(7*day)),
		event("item-1", DeliveryCompleted, t0.Add(7*day+18*time.Hour)),
	}

	result, err := DeriveAnalytics("item-1", history)
	require.NoError(t, err)

	// (0.3*50 + 0.25*133.33) / 0.55
	require.InDelta(t, 87.88, result.EfficiencyScore, 0.01)
}

func TestDeriveAnalyticsFlagsBottleneck(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	history := []Event{
		event("item-1", ProductionStarted, t0),
		// 7 days against a 3.5 day baseline, well past the 1.2x threshold
		event("item-1", ProductionCompleted, t0.Add(7*day)),
	}

	result, err := DeriveAnalytics("item-1", history)
	require.NoError(t, err)
	require.Contains(t, result.Bottlenecks, "production time too long")
	require.Contains(t, result.Recommendations, "optimize production line scheduling")
	require.Less(t, result.EfficiencyScore, 100.0)
}

func TestDeriveAnalyticsWithinThresholdNotBottleneck(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	history := []Event{
		event("item-1", ProductionStarted, t0),
		// 4 days is above baseline but below the 1.2x threshold of 4.2
		event("item-1", ProductionCompleted, t0.Add(4*24*time.Hour)),
	}

	result, err := DeriveAnalytics("item-1", history)
	require.NoError(t, err)
	require.Empty(t, result.Bottlenecks)
}

func TestDeriveAnalyticsQualityIssueRate(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	history := []Event{
		event("item-1", QualityCheckStarted, t0),
		event("item-1", QualityCheckFailed, t0.Add(time.Hour)),
		event("item-1", QualityIssue, t0.Add(time.Hour)),
	}

	result, err := DeriveAnalytics("item-1", history)
	require.NoError(t, err)
	require.InDelta(t, 0.5, result.KeyMetrics.QualityIssueRate, 0.001)
	require.Contains(t, result.Recommendations, "strengthen quality control")

	// A rate above 10% drives the quality factor, and the overall, to high
	require.Equal(t, RiskHigh, result.RiskAssessment.OverallRisk)
	for _, factor := range result.RiskAssessment.Factors {
		if factor.Name == "quality_control" {
			require.Equal(t, RiskHigh, factor.Level)
		}
	}
}

func TestDeriveAnalyticsDelayRate(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	history := []Event{
		event("item-1", ProductionStarted, t0),
		event("item-1", PackagingStarted, t0.Add(time.Hour)),
		event("item-1", ShipmentStarted, t0.Add(2*time.Hour)),
		event("item-1", DeliveryStarted, t0.Add(3*time.Hour)),
		event("item-1", Delay, t0.Add(4*time.Hour)),
	}

	result, err := DeriveAnalytics("item-1", history)
	require.NoError(t, err)
	require.InDelta(t, 0.25, result.KeyMetrics.DelayRate, 0.001)
	require.Contains(t, result.Recommendations, "improve schedule management")

	for _, factor := range result.RiskAssessment.Factors {
		if factor.Name == "delivery_reliability" {
			require.Equal(t, RiskHigh, factor.Level)
		}
	}
}

func TestDeriveAnalyticsOverallRiskIsWorstFactor(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	history := []Event{
		// Quality factor stays low, delay factor goes high
		event("item-1", ProductionStarted, t0),
		event("item-1", Delay, t0.Add(time.Hour)),
	}

	result, err := DeriveAnalytics("item-1", history)
	require.NoError(t, err)
	require.Equal(t, RiskHigh, result.RiskAssessment.OverallRisk)
	require.Len(t, result.RiskAssessment.Factors, 3)
}

func TestDeriveAnalyticsRecommendationsNeverEmpty(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	history := []Event{event("item-1", ProductionStarted, t0)}

	result, err := DeriveAnalytics("item-1", history)
	require.NoError(t, err)
	require.NotEmpty(t, result.Recommendations)
}

func TestDeriveAnalyticsPartialRunRenormalizesWeights(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	history := []Event{
		event("item-1", ShipmentStarted, t0),
		// Twice the shipment baseline; the only measured stage
		event("item-1", ShipmentCompleted, t0.Add(4*24*time.Hour)),
	}

	result, err := DeriveAnalytics("item-1", history)
	require.NoError(t, err)
	require.InDelta(t, 50.0, result.EfficiencyScore, 0.01)
	require.NotContains(t, result.KeyMetrics.PerStageDurationDays, StageProduction)
}

func TestDeriveAnalyticsNoTimedStagesScoresHundred(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	history := []Event{event("item-1", StorageIn, t0)}

	result, err := DeriveAnalytics("item-1", history)
	require.NoError(t, err)
	require.Equal(t, 100.0, result.EfficiencyScore)
	require.Empty(t, result.ComparisonWithBaseline)
}
