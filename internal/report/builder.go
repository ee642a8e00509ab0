// Package report assembles analysis results into top-level reports and
// renders them for terminal and markdown output. Assembly is purely
// deterministic string generation with no external calls.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

// divergenceClusterSize is the cluster size from which arguing
// jurisprudential divergence becomes a viable strategy.
const divergenceClusterSize = 3

// BuildContradictionReport aggregates clusters and per-body statistics for
// a single query into a report with highlights and recommendations.
func BuildContradictionReport(query string, cases []models.Case, contradictions []models.Contradiction, clusters []models.ContradictionCluster) *models.ContradictionReport {
	return &models.ContradictionReport{
		GeneratedAt:         time.Now(),
		Query:               query,
		TotalCasesAnalyzed:  len(cases),
		ContradictionsFound: len(contradictions),
		Clusters:            clusters,
		BodyComparison:      bodyStatistics(cases, contradictions),
		Highlights:          contradictionHighlights(contradictions, clusters),
		Recommendations:     contradictionRecommendations(contradictions, clusters),
	}
}

// InsufficientDataReport is returned when too few cases were retrieved to
// run pairwise analysis. It carries an advisory highlight instead of an
// error.
func InsufficientDataReport(query string, totalCases int) *models.ContradictionReport {
	return &models.ContradictionReport{
		GeneratedAt:        time.Now(),
		Query:              query,
		TotalCasesAnalyzed: totalCases,
		Clusters:           []models.ContradictionCluster{},
		BodyComparison:     map[string]models.BodyStats{},
		Highlights: []string{
			"Too few cases retrieved for pairwise analysis",
		},
		Recommendations: []string{
			"Broaden the query or ingest more decisions into the corpus",
		},
	}
}

// BuildMonitoringReport aggregates trends, changes and alerts for one theme
// over a monitoring window.
func BuildMonitoringReport(theme string, bodies []string, daysBack int, changes []models.ChangeDetection, trends []models.TrendAnalysis, alerts []models.Alert) *models.MonitoringReport {
	byBody := make(map[string][]models.ChangeDetection)
	for _, change := range changes {
		byBody[change.Body.Code] = append(byBody[change.Body.Code], change)
	}

	critical := 0
	for _, change := range changes {
		if change.Severity == models.SeverityCritical {
			critical++
		}
	}

	totalCases := 0
	for _, trend := range trends {
		totalCases += trend.TotalCases
	}

	if len(bodies) == 0 {
		bodies = []string{"all"}
	}

	now := time.Now()
	return &models.MonitoringReport{
		GeneratedAt:        now,
		Theme:              theme,
		BodiesMonitored:    bodies,
		PeriodStart:        now.AddDate(0, 0, -daysBack),
		PeriodEnd:          now,
		TotalDays:          daysBack,
		Changes:            changes,
		ChangesByBody:      byBody,
		Trends:             trends,
		Alerts:             alerts,
		TotalCasesAnalyzed: totalCases,
		BodiesWithChanges:  len(byBody),
		CriticalChanges:    critical,
		Highlights:         monitoringHighlights(changes),
		Recommendations:    monitoringRecommendations(changes),
	}
}

// bodyStatistics counts cases and contradiction involvement per issuing
// body. A body's contradiction rate may exceed 1.0 when its cases appear in
// several contradictions.
func bodyStatistics(cases []models.Case, contradictions []models.Contradiction) map[string]models.BodyStats {
	stats := make(map[string]models.BodyStats)

	for _, c := range cases {
		s := stats[c.Body.Code]
		s.TotalCases++
		stats[c.Body.Code] = s
	}

	for _, contradiction := range contradictions {
		for _, c := range []models.Case{contradiction.Case1, contradiction.Case2} {
			s := stats[c.Body.Code]
			s.ContradictionsInvolved++
			if s.SeverityDistribution == nil {
				s.SeverityDistribution = make(map[models.Severity]int)
			}
			s.SeverityDistribution[contradiction.Severity]++
			stats[c.Body.Code] = s
		}
	}

	for code, s := range stats {
		if s.TotalCases > 0 {
			s.ContradictionRate = float64(s.ContradictionsInvolved) / float64(s.TotalCases)
			stats[code] = s
		}
	}

	return stats
}

func contradictionHighlights(contradictions []models.Contradiction, clusters []models.ContradictionCluster) []string {
	if len(contradictions) == 0 {
		return []string{"No contradictions detected across the analyzed cases"}
	}

	var highlights []string

	critical := 0
	for _, c := range contradictions {
		if c.Severity == models.SeverityCritical {
			critical++
		}
	}
	if critical > 0 {
		highlights = append(highlights, fmt.Sprintf(
			"%d critical contradiction(s) detected, immediate attention required", critical))
	}

	// Clusters arrive sorted by member count, so the first is the most
	// problematic theme.
	if len(clusters) > 0 {
		top := clusters[0]
		highlights = append(highlights, fmt.Sprintf(
			"Theme %q is the most problematic with %d contradiction(s)",
			top.Theme, len(top.Contradictions)))
	}

	if code, count := mostDivergentBody(contradictions); code != "" {
		highlights = append(highlights, fmt.Sprintf(
			"%s appears in %d contradiction(s)", code, count))
	}

	return highlights
}

// mostDivergentBody returns the body code involved in the most
// contradictions. Ties resolve to the lexicographically smallest code so
// the highlight is stable across runs.
func mostDivergentBody(contradictions []models.Contradiction) (string, int) {
	counts := make(map[string]int)
	for _, c := range contradictions {
		counts[c.Case1.Body.Code]++
		counts[c.Case2.Body.Code]++
	}

	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	best, bestCount := "", 0
	for _, code := range codes {
		if counts[code] > bestCount {
			best, bestCount = code, counts[code]
		}
	}
	return best, bestCount
}

func contradictionRecommendations(contradictions []models.Contradiction, clusters []models.ContradictionCluster) []string {
	if len(contradictions) == 0 {
		return []string{"Case law is consistent, keep monitoring new decisions"}
	}

	var recommendations []string

	for _, c := range contradictions {
		if c.Severity == models.SeverityCritical {
			recommendations = append(recommendations,
				"Review critical contradictions before filing new motions")
			break
		}
	}

	if len(clusters) > 0 && len(clusters[0].Contradictions) >= divergenceClusterSize {
		recommendations = append(recommendations, fmt.Sprintf(
			"Consider arguing jurisprudential divergence on theme %q", clusters[0].Theme))
	}

	recommendations = append(recommendations,
		"Cite the most recent and well-reasoned decisions in filings",
		"Watch for appeals pending on the affected themes")

	return recommendations
}

func monitoringHighlights(changes []models.ChangeDetection) []string {
	if len(changes) == 0 {
		return []string{"No significant shifts detected, case law is stable"}
	}

	var highlights []string

	critical := 0
	reversals := 0
	for _, change := range changes {
		if change.Severity == models.SeverityCritical {
			critical++
		}
		if change.Type == models.ChangeTotalReversal {
			reversals++
		}
	}

	if critical > 0 {
		highlights = append(highlights, fmt.Sprintf(
			"%d critical shift(s) detected", critical))
	}
	if reversals > 0 {
		highlights = append(highlights, fmt.Sprintf(
			"%d total reversal(s) of settled understanding", reversals))
	}
	if len(highlights) == 0 {
		highlights = append(highlights, fmt.Sprintf(
			"%d moderate shift(s) detected", len(changes)))
	}

	return highlights
}

func monitoringRecommendations(changes []models.ChangeDetection) []string {
	if len(changes) == 0 {
		return []string{"Continue periodic monitoring"}
	}

	var recommendations []string

	for _, change := range changes {
		if change.Severity >= models.SeverityHigh {
			recommendations = append(recommendations,
				"Review litigation strategies for pending matters")
			break
		}
	}

	recommendations = append(recommendations,
		"Track upcoming decisions to confirm the trend",
		"Refresh filings with recent precedent")

	return recommendations
}
