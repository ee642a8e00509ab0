package trend

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/lexmetrica/juris-analyzer/internal/caselaw"
	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

// DefaultMinCasesPerBucket excludes time buckets too small to yield a
// statistically meaningful favorable ratio.
const DefaultMinCasesPerBucket = 3

// Direction classification thresholds over the half-split mean difference.
const (
	stableBand     = 0.1
	directionShift = 0.2
)

// Engine computes per-body favorable-ratio time series.
type Engine struct {
	minCasesPerBucket int
}

// NewEngine creates a trend engine. A non-positive minimum falls back to
// DefaultMinCasesPerBucket.
func NewEngine(minCasesPerBucket int) *Engine {
	if minCasesPerBucket <= 0 {
		minCasesPerBucket = DefaultMinCasesPerBucket
	}
	return &Engine{minCasesPerBucket: minCasesPerBucket}
}

// PeriodKey assigns a case to a half-year bucket such as "2023-S1".
// Cases without any temporal metadata return "" and are excluded from
// bucketing.
func PeriodKey(c models.Case) string {
	if !c.DecidedAt.IsZero() {
		semester := 1
		if c.DecidedAt.Month() > time.June {
			semester = 2
		}
		return fmt.Sprintf("%d-S%d", c.DecidedAt.Year(), semester)
	}
	if c.Year > 0 {
		// Year-only metadata lands in the first semester by convention.
		return fmt.Sprintf("%d-S1", c.Year)
	}
	return ""
}

// BucketCases groups cases by issuing body and time period. Cases without
// temporal metadata are dropped.
func BucketCases(cases []models.Case) map[models.IssuingBody]map[string][]models.Case {
	buckets := make(map[models.IssuingBody]map[string][]models.Case)
	for _, c := range cases {
		period := PeriodKey(c)
		if period == "" {
			continue
		}
		if buckets[c.Body] == nil {
			buckets[c.Body] = make(map[string][]models.Case)
		}
		buckets[c.Body][period] = append(buckets[c.Body][period], c)
	}
	return buckets
}

// AnalyzeTrend builds the favorable-ratio series for one body over its
// bucketed cases. Buckets below the per-bucket minimum are excluded. It
// returns nil when no bucket qualifies. The computation is deterministic:
// the same buckets always produce the same trend and volatility.
func (e *Engine) AnalyzeTrend(body models.IssuingBody, theme string, periods map[string][]models.Case, periodStart, periodEnd time.Time) *models.TrendAnalysis {
	if len(periods) == 0 {
		return nil
	}

	keys := make([]string, 0, len(periods))
	for k := range periods {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var points []models.TrendPoint
	var ratios []float64
	totalCases := 0

	for _, period := range keys {
		cases := periods[period]
		if len(cases) < e.minCasesPerBucket {
			continue
		}

		favorable := 0
		for _, c := range cases {
			if caselaw.Favorable(c.Decision) {
				favorable++
			}
		}
		ratio := float64(favorable) / float64(len(cases))

		representative := cases[0]
		points = append(points, models.TrendPoint{
			Period:             period,
			FavorableRatio:     ratio,
			TotalCases:         len(cases),
			RepresentativeCase: &representative,
		})
		ratios = append(ratios, ratio)
		totalCases += len(cases)
	}

	if len(points) == 0 {
		return nil
	}

	strength := 0.0
	if len(ratios) >= 2 {
		strength = abs(ratios[len(ratios)-1] - ratios[0])
	}

	return &models.TrendAnalysis{
		Body:          body,
		Theme:         theme,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		Points:        points,
		OverallTrend:  direction(ratios),
		TrendStrength: strength,
		Volatility:    volatility(ratios),
		AverageRatio:  stat.Mean(ratios, nil),
		MaxRatio:      maxOf(ratios),
		MinRatio:      minOf(ratios),
		TotalCases:    totalCases,
	}
}

// AnalyzeAll buckets cases and analyzes every issuing body present,
// returning trends sorted by body code.
func (e *Engine) AnalyzeAll(cases []models.Case, theme string, periodStart, periodEnd time.Time) []models.TrendAnalysis {
	buckets := BucketCases(cases)

	bodies := make([]models.IssuingBody, 0, len(buckets))
	for body := range buckets {
		bodies = append(bodies, body)
	}
	sort.Slice(bodies, func(i, j int) bool { return bodies[i].Code < bodies[j].Code })

	var trends []models.TrendAnalysis
	for _, body := range bodies {
		if trend := e.AnalyzeTrend(body, theme, buckets[body], periodStart, periodEnd); trend != nil {
			trends = append(trends, *trend)
		}
	}
	return trends
}

// direction classifies the series by comparing the means of its two halves.
func direction(ratios []float64) models.TrendDirection {
	if len(ratios) < 2 {
		return models.TrendStable
	}

	mid := len(ratios) / 2
	diff := stat.Mean(ratios[mid:], nil) - stat.Mean(ratios[:mid], nil)

	switch {
	case abs(diff) < stableBand:
		return models.TrendStable
	case diff > directionShift:
		return models.TrendIncreasing
	case diff < -directionShift:
		return models.TrendDecreasing
	default:
		return models.TrendVolatile
	}
}

// volatility is the population standard deviation of the ratio series.
func volatility(ratios []float64) float64 {
	if len(ratios) < 2 {
		return 0
	}
	return stat.PopStdDev(ratios, nil)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}
