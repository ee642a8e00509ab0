package trend

import (
	"math"
	"testing"
	"time"

	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

func trendWithPoints(points []models.TrendPoint, volatility float64) models.TrendAnalysis {
	return models.TrendAnalysis{
		Body:       tse,
		Theme:      "candidacy registration",
		Points:     points,
		Volatility: volatility,
	}
}

func point(period string, ratio float64, cases int) models.TrendPoint {
	return models.TrendPoint{Period: period, FavorableRatio: ratio, TotalCases: cases}
}

func TestDetectChangesTotalReversal(t *testing.T) {
	// Ratio series [0.8, 0.75, 0.2, 0.15]: before=0.8 > 0.7, after=0.15 < 0.3.
	trend := trendWithPoints([]models.TrendPoint{
		point("2021-S1", 0.8, 10),
		point("2021-S2", 0.75, 8),
		point("2022-S1", 0.2, 9),
		point("2022-S2", 0.15, 12),
	}, 0.29)

	changes := DetectChanges([]models.TrendAnalysis{trend}, 0.20)
	if len(changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(changes))
	}

	change := changes[0]
	if change.Type != models.ChangeTotalReversal {
		t.Errorf("type = %s, want %s", change.Type, models.ChangeTotalReversal)
	}
	if change.Severity != models.SeverityCritical {
		t.Errorf("severity = %s, want %s", change.Severity, models.SeverityCritical)
	}
	if math.Abs(change.Magnitude-0.65) > 1e-9 {
		t.Errorf("magnitude = %f, want 0.65", change.Magnitude)
	}
	if change.BeforePeriod != "2021-S1" || change.AfterPeriod != "2022-S2" {
		t.Errorf("periods = %s/%s", change.BeforePeriod, change.AfterPeriod)
	}
	// confidence = min(1, (10+12)/20)
	if change.Confidence != 1.0 {
		t.Errorf("confidence = %f, want 1.0", change.Confidence)
	}
	if change.Explanation == "" || change.RecommendedAction == "" {
		t.Error("change should carry a deterministic narrative")
	}
}

func TestDetectChangesDecisionTable(t *testing.T) {
	tests := []struct {
		name         string
		before       float64
		after        float64
		volatility   float64
		wantType     models.ChangeType
		wantSeverity models.Severity
	}{
		{"total reversal", 0.75, 0.25, 0.1, models.ChangeTotalReversal, models.SeverityCritical},
		{"tightening", 0.6, 0.25, 0.1, models.ChangeTightening, models.SeverityHigh},
		{"loosening", 0.3, 0.65, 0.1, models.ChangeLoosening, models.SeverityHigh},
		{"divergence", 0.5, 0.75, 0.35, models.ChangeDivergence, models.SeverityMedium},
		{"consolidation", 0.5, 0.75, 0.1, models.ChangeConsolidation, models.SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend := trendWithPoints([]models.TrendPoint{
				point("2021-S1", tt.before, 5),
				point("2022-S1", tt.after, 5),
			}, tt.volatility)

			changes := DetectChanges([]models.TrendAnalysis{trend}, 0.20)
			if len(changes) != 1 {
				t.Fatalf("got %d changes, want 1", len(changes))
			}
			if changes[0].Type != tt.wantType {
				t.Errorf("type = %s, want %s", changes[0].Type, tt.wantType)
			}
			if changes[0].Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", changes[0].Severity, tt.wantSeverity)
			}
			if changes[0].Confidence != 0.5 {
				t.Errorf("confidence = %f, want 0.5", changes[0].Confidence)
			}
		})
	}
}

func TestDetectChangesBelowThreshold(t *testing.T) {
	trend := trendWithPoints([]models.TrendPoint{
		point("2021-S1", 0.5, 5),
		point("2022-S1", 0.6, 5),
	}, 0.05)

	if changes := DetectChanges([]models.TrendAnalysis{trend}, 0.20); len(changes) != 0 {
		t.Errorf("got %d changes for a 0.1 shift, want 0", len(changes))
	}
}

func TestDetectChangesSinglePointSkipped(t *testing.T) {
	trend := trendWithPoints([]models.TrendPoint{point("2021-S1", 0.9, 5)}, 0)

	if changes := DetectChanges([]models.TrendAnalysis{trend}, 0.20); len(changes) != 0 {
		t.Errorf("got %d changes for a single-point trend, want 0", len(changes))
	}
}

func TestDetectChangesDefaultThreshold(t *testing.T) {
	trend := trendWithPoints([]models.TrendPoint{
		point("2021-S1", 0.5, 5),
		point("2022-S1", 0.71, 5),
	}, 0.05)

	changes := DetectChanges([]models.TrendAnalysis{trend}, 0)
	if len(changes) != 1 {
		t.Fatalf("default threshold should admit a 0.21 shift, got %d changes", len(changes))
	}
	if changes[0].DetectedAt.IsZero() {
		t.Error("change should carry a detection timestamp")
	}
	if changes[0].DetectedAt.After(time.Now().Add(time.Minute)) {
		t.Error("detection timestamp in the future")
	}
}
