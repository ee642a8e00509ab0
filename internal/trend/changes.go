package trend

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

// DefaultChangeThreshold is the minimum before/after ratio shift that
// counts as a change.
const DefaultChangeThreshold = 0.20

// Change classification boundaries.
const (
	reversalHigh       = 0.70
	reversalLow        = 0.30
	hardShift          = 0.30
	divergenceVolatile = 0.30
	confidenceCases    = 20.0
)

// DetectChanges compares the first and last point of each trend and emits a
// ChangeDetection for every shift at or above the threshold. Classification
// is a fixed decision table; explanation strings are deterministic templates
// that callers may replace with adjudicator narratives.
func DetectChanges(trends []models.TrendAnalysis, changeThreshold float64) []models.ChangeDetection {
	if changeThreshold <= 0 {
		changeThreshold = DefaultChangeThreshold
	}

	var changes []models.ChangeDetection
	for _, trend := range trends {
		if len(trend.Points) < 2 {
			continue
		}

		before := trend.Points[0]
		after := trend.Points[len(trend.Points)-1]
		magnitude := abs(after.FavorableRatio - before.FavorableRatio)
		if magnitude < changeThreshold {
			continue
		}

		changeType, severity := classifyChange(before.FavorableRatio, after.FavorableRatio, trend.Volatility)

		change := models.ChangeDetection{
			ID:           uuid.NewString(),
			Body:         trend.Body,
			Theme:        trend.Theme,
			Type:         changeType,
			Severity:     severity,
			BeforePeriod: before.Period,
			BeforeRatio:  before.FavorableRatio,
			BeforeCases:  before.TotalCases,
			AfterPeriod:  after.Period,
			AfterRatio:   after.FavorableRatio,
			AfterCases:   after.TotalCases,
			Magnitude:    magnitude,
			Confidence:   confidence(before.TotalCases, after.TotalCases),
			DetectedAt:   time.Now(),
		}
		change.Explanation, change.ImpactAssessment, change.RecommendedAction = defaultNarrative(change)

		changes = append(changes, change)
	}

	return changes
}

// classifyChange applies the decision table in priority order.
func classifyChange(before, after, volatility float64) (models.ChangeType, models.Severity) {
	switch {
	case before > reversalHigh && after < reversalLow:
		return models.ChangeTotalReversal, models.SeverityCritical
	case after < before-hardShift:
		return models.ChangeTightening, models.SeverityHigh
	case after > before+hardShift:
		return models.ChangeLoosening, models.SeverityHigh
	case volatility > divergenceVolatile:
		return models.ChangeDivergence, models.SeverityMedium
	default:
		return models.ChangeConsolidation, models.SeverityLow
	}
}

// confidence grows with the number of cases backing both periods, capped
// at 1.0.
func confidence(beforeCases, afterCases int) float64 {
	c := float64(beforeCases+afterCases) / confidenceCases
	if c > 1.0 {
		return 1.0
	}
	return c
}

// defaultNarrative is the deterministic fallback text for a change. The
// monitor replaces it with the adjudicator's narrative when one is
// available.
func defaultNarrative(change models.ChangeDetection) (explanation, impact, recommendation string) {
	explanation = fmt.Sprintf("%s shifted on %q: favorable ratio moved from %.0f%% (%s) to %.0f%% (%s).",
		change.Body.Code, change.Theme,
		change.BeforeRatio*100, change.BeforePeriod,
		change.AfterRatio*100, change.AfterPeriod)
	impact = fmt.Sprintf("A %s shift of this magnitude affects pending matters before %s.", change.Type, change.Body.Code)
	recommendation = "Review filing strategy against the body's recent decisions and confirm the trend before relying on older precedent."
	return explanation, impact, recommendation
}
