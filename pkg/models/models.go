package models

import (
	"time"
)

// IssuingBody identifies the court or tribunal that produced a case.
type IssuingBody struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Case represents a single retrieved judicial decision with extracted metadata.
// A Case is immutable once built by the retrieval layer.
type Case struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Text         string            `json:"-"`
	Body         IssuingBody       `json:"body"`
	DocketNumber string            `json:"docket_number,omitempty"`
	Year         int               `json:"year,omitempty"`
	DecidedAt    time.Time         `json:"decided_at,omitempty"`
	Theme        string            `json:"theme,omitempty"`
	Decision     DecisionLabel     `json:"decision"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// SimilarPair is an ordered pair of cases from different issuing bodies.
type SimilarPair struct {
	Case1            Case    `json:"case1"`
	Case2            Case    `json:"case2"`
	SimilarityScore  float64 `json:"similarity_score"`
	SemanticDistance float64 `json:"semantic_distance"`
}

// ContradictionType classifies how two decisions conflict.
type ContradictionType string

const (
	TypeOppositeOutcome         ContradictionType = "opposite-outcome"
	TypeDivergentRationale      ContradictionType = "divergent-rationale"
	TypeDivergentInterpretation ContradictionType = "divergent-interpretation"
	TypeConflictingCriteria     ContradictionType = "conflicting-criteria"
)

// Contradiction represents a confirmed conflict between two similar cases
// decided by different bodies.
type Contradiction struct {
	ID                string            `json:"id"`
	Case1             Case              `json:"case1"`
	Case2             Case              `json:"case2"`
	SimilarityScore   float64           `json:"similarity_score"`
	Type              ContradictionType `json:"type"`
	Severity          Severity          `json:"severity"`
	Explanation       string            `json:"explanation"`
	LegalImpact       string            `json:"legal_impact"`
	RecommendedAction string            `json:"recommended_action"`
	DetectedAt        time.Time         `json:"detected_at"`
}

// ContradictionCluster groups contradictions that share a theme.
type ContradictionCluster struct {
	Theme                string           `json:"theme"`
	Contradictions       []Contradiction  `json:"contradictions"`
	AffectedBodies       []string         `json:"affected_bodies"`
	TotalCases           int              `json:"total_cases"`
	SeverityDistribution map[Severity]int `json:"severity_distribution"`
	Keywords             []string         `json:"keywords,omitempty"`
	Summary              string           `json:"summary"`
}

// TrendDirection classifies the overall movement of a ratio series.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
	TrendVolatile   TrendDirection = "volatile"
)

// TrendPoint is one time bucket in a favorable-ratio series.
type TrendPoint struct {
	Period             string  `json:"period"`
	FavorableRatio     float64 `json:"favorable_ratio"`
	TotalCases         int     `json:"total_cases"`
	RepresentativeCase *Case   `json:"representative_case,omitempty"`
}

// TrendAnalysis is a per-body time series of favorable ratios for one theme.
type TrendAnalysis struct {
	Body          IssuingBody    `json:"body"`
	Theme         string         `json:"theme"`
	PeriodStart   time.Time      `json:"period_start"`
	PeriodEnd     time.Time      `json:"period_end"`
	Points        []TrendPoint   `json:"points"`
	OverallTrend  TrendDirection `json:"overall_trend"`
	TrendStrength float64        `json:"trend_strength"`
	Volatility    float64        `json:"volatility"`
	AverageRatio  float64        `json:"average_ratio"`
	MaxRatio      float64        `json:"max_ratio"`
	MinRatio      float64        `json:"min_ratio"`
	TotalCases    int            `json:"total_cases"`
}

// ChangeType classifies a detected shift in decision patterns.
type ChangeType string

const (
	ChangeTotalReversal ChangeType = "total-reversal"
	ChangeTightening    ChangeType = "tightening"
	ChangeLoosening     ChangeType = "loosening"
	ChangeConsolidation ChangeType = "consolidation"
	ChangeDivergence    ChangeType = "divergence"
)

// ChangeDetection is a significant before/after shift for one body and theme.
type ChangeDetection struct {
	ID                string      `json:"id"`
	Body              IssuingBody `json:"body"`
	Theme             string      `json:"theme"`
	Type              ChangeType  `json:"type"`
	Severity          Severity    `json:"severity"`
	BeforePeriod      string      `json:"before_period"`
	BeforeRatio       float64     `json:"before_ratio"`
	BeforeCases       int         `json:"before_cases"`
	AfterPeriod       string      `json:"after_period"`
	AfterRatio        float64     `json:"after_ratio"`
	AfterCases        int         `json:"after_cases"`
	Magnitude         float64     `json:"change_magnitude"`
	Confidence        float64     `json:"confidence"`
	DetectedAt        time.Time   `json:"detected_at"`
	Explanation       string      `json:"explanation"`
	ImpactAssessment  string      `json:"impact_assessment"`
	RecommendedAction string      `json:"recommended_action"`
}

// Alert wraps a contradiction or a change detection for notification.
// Alerts are ephemeral: generated on demand, never persisted.
type Alert struct {
	ID                  string           `json:"id"`
	Priority            Priority         `json:"priority"`
	Title               string           `json:"title"`
	Message             string           `json:"message"`
	Actionable          bool             `json:"actionable"`
	AffectedBodies      []string         `json:"affected_bodies"`
	SuggestedStrategies []string         `json:"suggested_strategies,omitempty"`
	Contradiction       *Contradiction   `json:"contradiction,omitempty"`
	Change              *ChangeDetection `json:"change,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
}

// BodyStats aggregates per-body counts for a contradiction report.
type BodyStats struct {
	TotalCases             int              `json:"total_cases"`
	ContradictionsInvolved int              `json:"contradictions_involved"`
	ContradictionRate      float64          `json:"contradiction_rate"`
	SeverityDistribution   map[Severity]int `json:"severity_distribution"`
}

// ContradictionReport is the top-level output of a contradiction analysis.
type ContradictionReport struct {
	GeneratedAt         time.Time              `json:"generated_at"`
	Query               string                 `json:"query"`
	TotalCasesAnalyzed  int                    `json:"total_cases_analyzed"`
	ContradictionsFound int                    `json:"contradictions_found"`
	Clusters            []ContradictionCluster `json:"clusters"`
	BodyComparison      map[string]BodyStats   `json:"body_comparison"`
	Highlights          []string               `json:"highlights"`
	Recommendations     []string               `json:"recommendations"`
}

// CriticalContradictions returns only critical-severity contradictions
// across all clusters.
func (r *ContradictionReport) CriticalContradictions() []Contradiction {
	var critical []Contradiction
	for _, cluster := range r.Clusters {
		for _, c := range cluster.Contradictions {
			if c.Severity == SeverityCritical {
				critical = append(critical, c)
			}
		}
	}
	return critical
}

// ByBody returns contradictions involving the given body code.
func (r *ContradictionReport) ByBody(code string) []Contradiction {
	var result []Contradiction
	for _, cluster := range r.Clusters {
		for _, c := range cluster.Contradictions {
			if c.Case1.Body.Code == code || c.Case2.Body.Code == code {
				result = append(result, c)
			}
		}
	}
	return result
}

// MonitoringReport is the top-level output of a trend monitoring run.
type MonitoringReport struct {
	GeneratedAt        time.Time                    `json:"generated_at"`
	Theme              string                       `json:"theme"`
	BodiesMonitored    []string                     `json:"bodies_monitored"`
	PeriodStart        time.Time                    `json:"period_start"`
	PeriodEnd          time.Time                    `json:"period_end"`
	TotalDays          int                          `json:"total_days"`
	Changes            []ChangeDetection            `json:"changes"`
	ChangesByBody      map[string][]ChangeDetection `json:"changes_by_body"`
	Trends             []TrendAnalysis              `json:"trends"`
	Alerts             []Alert                      `json:"alerts"`
	TotalCasesAnalyzed int                          `json:"total_cases_analyzed"`
	BodiesWithChanges  int                          `json:"bodies_with_changes"`
	CriticalChanges    int                          `json:"critical_changes"`
	Highlights         []string                     `json:"highlights"`
	Recommendations    []string                     `json:"recommendations"`
}
