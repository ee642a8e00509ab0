package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

const rule = "================================================================================"

// RenderText formats a contradiction report for terminal output.
func RenderText(r *models.ContradictionReport) string {
	var b strings.Builder

	b.WriteString(rule + "\n")
	b.WriteString("CASE LAW CONTRADICTION ANALYSIS\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Query: %s\n", r.Query)
	fmt.Fprintf(&b, "Cases analyzed: %d\n", r.TotalCasesAnalyzed)
	fmt.Fprintf(&b, "Contradictions found: %d\n", r.ContradictionsFound)

	if len(r.Highlights) > 0 {
		b.WriteString("\n" + rule + "\nKEY FINDINGS\n" + rule + "\n")
		for _, h := range r.Highlights {
			fmt.Fprintf(&b, "  %s\n", h)
		}
	}

	if critical := r.CriticalContradictions(); len(critical) > 0 {
		b.WriteString("\n" + rule + "\nCRITICAL CONTRADICTIONS\n" + rule + "\n")
		for i, c := range critical {
			b.WriteString(renderContradiction(&c, i+1))
		}
	}

	if len(r.Clusters) > 0 {
		b.WriteString("\n" + rule + "\nCONTRADICTIONS BY THEME\n" + rule + "\n")
		for i := range r.Clusters {
			b.WriteString(renderCluster(&r.Clusters[i]))
		}
	}

	if len(r.BodyComparison) > 0 {
		b.WriteString("\n" + rule + "\nPER-BODY ANALYSIS\n" + rule + "\n")
		b.WriteString(renderBodyStats(r.BodyComparison))
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("\n" + rule + "\nRECOMMENDATIONS\n" + rule + "\n")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, rec)
		}
	}

	b.WriteString("\n" + rule + "\nEnd of report\n" + rule + "\n")
	return b.String()
}

// RenderMarkdown formats a contradiction report as a markdown document.
func RenderMarkdown(r *models.ContradictionReport) string {
	var b strings.Builder

	b.WriteString("# Case Law Contradiction Analysis\n\n")
	fmt.Fprintf(&b, "**Generated:** %s  \n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Query:** %s  \n", r.Query)
	fmt.Fprintf(&b, "**Cases analyzed:** %d  \n", r.TotalCasesAnalyzed)
	fmt.Fprintf(&b, "**Contradictions found:** %d\n\n", r.ContradictionsFound)

	if len(r.Highlights) > 0 {
		b.WriteString("## Key Findings\n\n")
		for _, h := range r.Highlights {
			fmt.Fprintf(&b, "- %s\n", h)
		}
		b.WriteString("\n")
	}

	if critical := r.CriticalContradictions(); len(critical) > 0 {
		b.WriteString("## Critical Contradictions\n\n")
		for i, c := range critical {
			fmt.Fprintf(&b, "### Contradiction %d\n\n", i+1)
			fmt.Fprintf(&b, "**Type:** %s  \n", c.Type)
			fmt.Fprintf(&b, "**Severity:** %s  \n", c.Severity)
			fmt.Fprintf(&b, "**Similarity:** %.1f%%\n\n", c.SimilarityScore*100)
			fmt.Fprintf(&b, "**Case 1:** %s - %s  \n", c.Case1.Body.Code, c.Case1.Title)
			fmt.Fprintf(&b, "**Case 2:** %s - %s\n\n", c.Case2.Body.Code, c.Case2.Title)
			fmt.Fprintf(&b, "**Analysis:** %s\n\n", c.Explanation)
			fmt.Fprintf(&b, "**Impact:** %s\n\n", c.LegalImpact)
			fmt.Fprintf(&b, "**Recommendation:** %s\n\n", c.RecommendedAction)
		}
	}

	if len(r.Clusters) > 0 {
		b.WriteString("## Contradictions by Theme\n\n")
		for i := range r.Clusters {
			cluster := &r.Clusters[i]
			fmt.Fprintf(&b, "### %s\n\n", cluster.Theme)
			fmt.Fprintf(&b, "- **Contradictions:** %d\n", len(cluster.Contradictions))
			fmt.Fprintf(&b, "- **Bodies:** %s\n", strings.Join(cluster.AffectedBodies, ", "))
			fmt.Fprintf(&b, "- **Cases:** %d\n\n", cluster.TotalCases)
			fmt.Fprintf(&b, "%s\n\n", cluster.Summary)
		}
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderSummary produces a short executive summary of a contradiction
// report.
func RenderSummary(r *models.ContradictionReport) string {
	var b strings.Builder

	b.WriteString("EXECUTIVE SUMMARY\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Query: %s\n", r.Query)
	fmt.Fprintf(&b, "Cases analyzed: %d\n", r.TotalCasesAnalyzed)
	fmt.Fprintf(&b, "Contradictions found: %d\n", r.ContradictionsFound)
	fmt.Fprintf(&b, "Thematic clusters: %d\n", len(r.Clusters))

	if r.ContradictionsFound > 0 {
		fmt.Fprintf(&b, "Critical contradictions: %d\n", len(r.CriticalContradictions()))
		if len(r.Clusters) > 0 {
			top := r.Clusters[0]
			fmt.Fprintf(&b, "Most problematic theme: %s (%d contradictions)\n",
				top.Theme, len(top.Contradictions))
		}
	}

	if len(r.Highlights) > 0 {
		b.WriteString("\nKey findings:\n")
		limit := len(r.Highlights)
		if limit > 3 {
			limit = 3
		}
		for _, h := range r.Highlights[:limit] {
			fmt.Fprintf(&b, "  - %s\n", h)
		}
	}

	return b.String()
}

// RenderMonitoringText formats a monitoring report for terminal output.
func RenderMonitoringText(r *models.MonitoringReport) string {
	var b strings.Builder

	b.WriteString(rule + "\n")
	b.WriteString("CASE LAW SHIFT MONITORING\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Theme: %s\n", r.Theme)
	fmt.Fprintf(&b, "Bodies: %s\n", strings.Join(r.BodiesMonitored, ", "))
	fmt.Fprintf(&b, "Window: %d days (%s to %s)\n", r.TotalDays,
		r.PeriodStart.Format("2006-01-02"), r.PeriodEnd.Format("2006-01-02"))
	fmt.Fprintf(&b, "Cases analyzed: %d\n", r.TotalCasesAnalyzed)
	fmt.Fprintf(&b, "Shifts detected: %d (%d critical)\n", len(r.Changes), r.CriticalChanges)

	if len(r.Highlights) > 0 {
		b.WriteString("\n" + rule + "\nKEY FINDINGS\n" + rule + "\n")
		for _, h := range r.Highlights {
			fmt.Fprintf(&b, "  %s\n", h)
		}
	}

	if len(r.Changes) > 0 {
		b.WriteString("\n" + rule + "\nDETECTED SHIFTS\n" + rule + "\n")
		for i := range r.Changes {
			b.WriteString(renderChange(&r.Changes[i]))
		}
	}

	if len(r.Trends) > 0 {
		b.WriteString("\n" + rule + "\nTRENDS BY BODY\n" + rule + "\n")
		for i := range r.Trends {
			t := &r.Trends[i]
			fmt.Fprintf(&b, "\n%s: %s (strength %.2f, volatility %.2f, avg ratio %.1f%%)\n",
				t.Body.Code, t.OverallTrend, t.TrendStrength, t.Volatility, t.AverageRatio*100)
			for _, p := range t.Points {
				fmt.Fprintf(&b, "  %s: %.1f%% favorable over %d cases\n",
					p.Period, p.FavorableRatio*100, p.TotalCases)
			}
		}
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("\n" + rule + "\nRECOMMENDATIONS\n" + rule + "\n")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, rec)
		}
	}

	b.WriteString("\n" + rule + "\nEnd of report\n" + rule + "\n")
	return b.String()
}

func renderContradiction(c *models.Contradiction, index int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\nCONTRADICTION %d - severity %s\n", index, strings.ToUpper(c.Severity.String()))
	fmt.Fprintf(&b, "  Type: %s\n", c.Type)
	fmt.Fprintf(&b, "  Similarity: %.1f%%\n\n", c.SimilarityScore*100)
	fmt.Fprintf(&b, "  Case 1: %s\n    %s\n    Decision: %s\n\n",
		c.Case1.Body.Code, c.Case1.Title, decisionOrNA(c.Case1.Decision))
	fmt.Fprintf(&b, "  Case 2: %s\n    %s\n    Decision: %s\n\n",
		c.Case2.Body.Code, c.Case2.Title, decisionOrNA(c.Case2.Decision))
	fmt.Fprintf(&b, "  Analysis: %s\n", c.Explanation)
	fmt.Fprintf(&b, "  Impact: %s\n", c.LegalImpact)
	fmt.Fprintf(&b, "  Recommendation: %s\n", c.RecommendedAction)

	return b.String()
}

func renderCluster(cluster *models.ContradictionCluster) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\nTHEME: %s\n", cluster.Theme)
	fmt.Fprintf(&b, "  Contradictions: %d\n", len(cluster.Contradictions))
	fmt.Fprintf(&b, "  Affected bodies: %s\n", strings.Join(cluster.AffectedBodies, ", "))
	fmt.Fprintf(&b, "  Cases involved: %d\n", cluster.TotalCases)

	if len(cluster.SeverityDistribution) > 0 {
		b.WriteString("  Severity: " + severityDistribution(cluster.SeverityDistribution) + "\n")
	}
	if len(cluster.Keywords) > 0 {
		fmt.Fprintf(&b, "  Keywords: %s\n", strings.Join(cluster.Keywords, ", "))
	}
	fmt.Fprintf(&b, "\n  %s\n", cluster.Summary)

	for _, c := range cluster.Contradictions {
		fmt.Fprintf(&b, "  [%s] %s vs %s (similarity %.1f%%)\n",
			c.Severity, c.Case1.Body.Code, c.Case2.Body.Code, c.SimilarityScore*100)
	}

	return b.String()
}

func renderChange(change *models.ChangeDetection) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s at %s - severity %s\n", change.Type, change.Body.Code,
		strings.ToUpper(change.Severity.String()))
	fmt.Fprintf(&b, "  Before (%s): %.1f%% favorable over %d cases\n",
		change.BeforePeriod, change.BeforeRatio*100, change.BeforeCases)
	fmt.Fprintf(&b, "  After  (%s): %.1f%% favorable over %d cases\n",
		change.AfterPeriod, change.AfterRatio*100, change.AfterCases)
	fmt.Fprintf(&b, "  Magnitude: %.2f, confidence: %.2f\n", change.Magnitude, change.Confidence)
	fmt.Fprintf(&b, "  Analysis: %s\n", change.Explanation)
	fmt.Fprintf(&b, "  Impact: %s\n", change.ImpactAssessment)
	fmt.Fprintf(&b, "  Recommendation: %s\n", change.RecommendedAction)

	return b.String()
}

func renderBodyStats(stats map[string]models.BodyStats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%-15s %-10s %-15s %-10s %s\n", "Body", "Cases", "Contradictions", "Rate", "Severity")
	b.WriteString(strings.Repeat("-", 70) + "\n")

	codes := make([]string, 0, len(stats))
	for code := range stats {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		s := stats[code]
		dist := "-"
		if len(s.SeverityDistribution) > 0 {
			dist = severityDistribution(s.SeverityDistribution)
		}
		fmt.Fprintf(&b, "%-15s %-10d %-15d %8.1f%%  %s\n",
			code, s.TotalCases, s.ContradictionsInvolved, s.ContradictionRate*100, dist)
	}

	return b.String()
}

// severityDistribution renders a histogram in ascending severity order.
func severityDistribution(dist map[models.Severity]int) string {
	var parts []string
	for s := models.SeverityLow; s <= models.SeverityCritical; s++ {
		if count, ok := dist[s]; ok {
			parts = append(parts, fmt.Sprintf("%s: %d", s, count))
		}
	}
	return strings.Join(parts, ", ")
}

func decisionOrNA(d models.DecisionLabel) string {
	if d == "" || d == models.DecisionUnknown {
		return "n/a"
	}
	return string(d)
}
