// Package alerting converts contradictions and change detections into
// priority-ordered alerts.
package alerting

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

// FromContradictions builds alerts for contradictions at or above the
// priority floor, sorted urgent-first. Input order is preserved within
// equal priorities.
func FromContradictions(contradictions []models.Contradiction, floor models.Priority) []models.Alert {
	alerts := make([]models.Alert, 0, len(contradictions))

	for i := range contradictions {
		c := &contradictions[i]
		priority := models.PriorityForSeverity(c.Severity)
		if priority < floor {
			continue
		}

		alerts = append(alerts, models.Alert{
			ID:       uuid.NewString(),
			Priority: priority,
			Title: fmt.Sprintf("Contradiction between %s and %s",
				c.Case1.Body.Code, c.Case2.Body.Code),
			Message:        contradictionMessage(c),
			Actionable:     c.Severity >= models.SeverityHigh,
			AffectedBodies: []string{c.Case1.Body.Code, c.Case2.Body.Code},
			Contradiction:  c,
			CreatedAt:      time.Now(),
		})
	}

	sortByPriority(alerts)
	return alerts
}

// FromChanges builds alerts for change detections at or above the priority
// floor, sorted urgent-first.
func FromChanges(changes []models.ChangeDetection, floor models.Priority) []models.Alert {
	alerts := make([]models.Alert, 0, len(changes))

	for i := range changes {
		change := &changes[i]
		priority := models.PriorityForSeverity(change.Severity)
		if priority < floor {
			continue
		}

		alerts = append(alerts, models.Alert{
			ID:       uuid.NewString(),
			Priority: priority,
			Title: fmt.Sprintf("Shift at %s: %s", change.Body.Code, change.Theme),
			Message: fmt.Sprintf("%s detected\n\n%s\n\nImpact: %s",
				change.Type, change.Explanation, change.ImpactAssessment),
			Actionable:          change.Severity >= models.SeverityHigh,
			AffectedBodies:      []string{change.Body.Code},
			SuggestedStrategies: strategiesFor(change),
			Change:              change,
			CreatedAt:           time.Now(),
		})
	}

	sortByPriority(alerts)
	return alerts
}

// sortByPriority orders alerts urgent-first. The sort is stable so equal
// priorities keep input order and identical inputs yield identical output.
func sortByPriority(alerts []models.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Priority > alerts[j].Priority
	})
}

func contradictionMessage(c *models.Contradiction) string {
	return fmt.Sprintf("Contradiction detected between %s and %s\n\n%s\n\nImpact: %s",
		c.Case1.Body.Code, c.Case2.Body.Code, c.Explanation, c.LegalImpact)
}

// strategiesFor suggests follow-ups keyed on the change type, always ending
// with the change's own recommendation.
func strategiesFor(change *models.ChangeDetection) []string {
	var strategies []string

	switch change.Type {
	case models.ChangeTotalReversal:
		strategies = append(strategies,
			"Rebuild the litigation strategy from scratch",
			"Collect recent precedent to support the new posture")
	case models.ChangeTightening:
		strategies = append(strategies,
			"Reinforce the legal grounds of pending filings",
			"Consider alternative claims")
	case models.ChangeLoosening:
		strategies = append(strategies,
			"Leverage the favorable shift in new filings",
			"Cite the body's recent decisions")
	}

	if change.RecommendedAction != "" {
		strategies = append(strategies, change.RecommendedAction)
	}
	return strategies
}
