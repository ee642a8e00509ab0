package trend

import (
	"math"
	"testing"
	"time"

	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

var (
	tse   = models.IssuingBody{Code: "TSE", Name: "Superior Electoral Court"}
	treSP = models.IssuingBody{Code: "TRE-SP", Name: "Regional Electoral Court SP"}
)

// bucketOf builds a period bucket with the given favorable/unfavorable
// case counts.
func bucketOf(favorable, unfavorable int) []models.Case {
	var cases []models.Case
	for i := 0; i < favorable; i++ {
		cases = append(cases, models.Case{Body: tse, Decision: models.DecisionGranted})
	}
	for i := 0; i < unfavorable; i++ {
		cases = append(cases, models.Case{Body: tse, Decision: models.DecisionDenied})
	}
	return cases
}

// bucketsWithRatios builds one qualifying bucket per ratio out of 20 cases
// each, keyed in chronological order.
func bucketsWithRatios(ratios []float64) map[string][]models.Case {
	periods := make(map[string][]models.Case)
	for i, ratio := range ratios {
		favorable := int(math.Round(ratio * 20))
		periods[periodName(i)] = bucketOf(favorable, 20-favorable)
	}
	return periods
}

func periodName(i int) string {
	year := 2020 + i/2
	semester := i%2 + 1
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006") + "-S" + string(rune('0'+semester))
}

func TestPeriodKey(t *testing.T) {
	tests := []struct {
		name string
		c    models.Case
		want string
	}{
		{"first semester", models.Case{DecidedAt: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)}, "2023-S1"},
		{"second semester", models.Case{DecidedAt: time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)}, "2023-S2"},
		{"june boundary", models.Case{DecidedAt: time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)}, "2023-S1"},
		{"year only", models.Case{Year: 2021}, "2021-S1"},
		{"no temporal metadata", models.Case{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeriodKey(tt.c); got != tt.want {
				t.Errorf("PeriodKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBucketCases(t *testing.T) {
	cases := []models.Case{
		{Body: tse, Year: 2022},
		{Body: tse, Year: 2022},
		{Body: treSP, Year: 2023},
		{Body: tse}, // no temporal metadata, dropped
	}

	buckets := BucketCases(cases)
	if len(buckets) != 2 {
		t.Fatalf("got %d bodies, want 2", len(buckets))
	}
	if got := len(buckets[tse]["2022-S1"]); got != 2 {
		t.Errorf("TSE 2022-S1 bucket = %d cases, want 2", got)
	}
	if got := len(buckets[treSP]["2023-S1"]); got != 1 {
		t.Errorf("TRE-SP 2023-S1 bucket = %d cases, want 1", got)
	}
}

func TestAnalyzeTrendSkipsSmallBuckets(t *testing.T) {
	engine := NewEngine(3)

	periods := map[string][]models.Case{
		"2022-S1": bucketOf(2, 0), // below minimum, excluded
		"2022-S2": bucketOf(3, 1),
	}

	trend := engine.AnalyzeTrend(tse, "registration", periods, time.Time{}, time.Time{})
	if trend == nil {
		t.Fatal("expected a trend")
	}
	if len(trend.Points) != 1 {
		t.Fatalf("got %d points, want 1 (small bucket excluded)", len(trend.Points))
	}
	if trend.Points[0].Period != "2022-S2" {
		t.Errorf("surviving point = %s", trend.Points[0].Period)
	}
	if got := trend.Points[0].FavorableRatio; math.Abs(got-0.75) > 1e-9 {
		t.Errorf("favorable ratio = %f, want 0.75", got)
	}
	if trend.Points[0].RepresentativeCase == nil {
		t.Error("point should carry a representative case")
	}
}

func TestAnalyzeTrendNoQualifyingBuckets(t *testing.T) {
	engine := NewEngine(3)

	periods := map[string][]models.Case{
		"2022-S1": bucketOf(1, 0),
	}

	if trend := engine.AnalyzeTrend(tse, "registration", periods, time.Time{}, time.Time{}); trend != nil {
		t.Error("expected nil when no bucket qualifies")
	}
	if trend := engine.AnalyzeTrend(tse, "registration", nil, time.Time{}, time.Time{}); trend != nil {
		t.Error("expected nil for empty periods")
	}
}

func TestAnalyzeTrendDirections(t *testing.T) {
	engine := NewEngine(1)

	tests := []struct {
		name   string
		ratios []float64
		want   models.TrendDirection
	}{
		{"decreasing", []float64{0.8, 0.75, 0.2, 0.15}, models.TrendDecreasing},
		{"increasing", []float64{0.1, 0.2, 0.8, 0.9}, models.TrendIncreasing},
		{"stable", []float64{0.5, 0.5, 0.55, 0.5}, models.TrendStable},
		{"volatile", []float64{0.4, 0.4, 0.55, 0.55}, models.TrendVolatile},
		{"single point", []float64{0.9}, models.TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend := engine.AnalyzeTrend(tse, "theme", bucketsWithRatios(tt.ratios), time.Time{}, time.Time{})
			if trend == nil {
				t.Fatal("expected a trend")
			}
			if trend.OverallTrend != tt.want {
				t.Errorf("overall trend = %s, want %s", trend.OverallTrend, tt.want)
			}
		})
	}
}

func TestAnalyzeTrendStatistics(t *testing.T) {
	engine := NewEngine(1)

	ratios := []float64{0.8, 0.75, 0.2, 0.15}
	trend := engine.AnalyzeTrend(tse, "theme", bucketsWithRatios(ratios), time.Time{}, time.Time{})
	if trend == nil {
		t.Fatal("expected a trend")
	}

	if got := trend.TrendStrength; math.Abs(got-0.65) > 1e-9 {
		t.Errorf("trend strength = %f, want 0.65", got)
	}
	if got := trend.AverageRatio; math.Abs(got-0.475) > 1e-9 {
		t.Errorf("average ratio = %f, want 0.475", got)
	}
	if trend.MaxRatio != 0.8 || trend.MinRatio != 0.15 {
		t.Errorf("max/min = %f/%f, want 0.8/0.15", trend.MaxRatio, trend.MinRatio)
	}
	if trend.TotalCases != 80 {
		t.Errorf("total cases = %d, want 80", trend.TotalCases)
	}
	// Population standard deviation of the series.
	want := math.Sqrt((0.325*0.325 + 0.275*0.275 + 0.275*0.275 + 0.325*0.325) / 4)
	if got := trend.Volatility; math.Abs(got-want) > 1e-9 {
		t.Errorf("volatility = %f, want %f", got, want)
	}
}

func TestAnalyzeTrendIdempotent(t *testing.T) {
	engine := NewEngine(1)
	periods := bucketsWithRatios([]float64{0.8, 0.3, 0.6, 0.2})

	first := engine.AnalyzeTrend(tse, "theme", periods, time.Time{}, time.Time{})
	for i := 0; i < 3; i++ {
		again := engine.AnalyzeTrend(tse, "theme", periods, time.Time{}, time.Time{})
		if again.OverallTrend != first.OverallTrend {
			t.Fatalf("run %d: trend %s != %s", i, again.OverallTrend, first.OverallTrend)
		}
		if again.Volatility != first.Volatility {
			t.Fatalf("run %d: volatility %f != %f", i, again.Volatility, first.Volatility)
		}
	}
}

func TestAnalyzeAllSortedByBody(t *testing.T) {
	engine := NewEngine(1)

	var cases []models.Case
	for i := 0; i < 3; i++ {
		cases = append(cases,
			models.Case{Body: tse, Year: 2022, Decision: models.DecisionGranted},
			models.Case{Body: treSP, Year: 2022, Decision: models.DecisionDenied},
		)
	}

	trends := engine.AnalyzeAll(cases, "theme", time.Time{}, time.Time{})
	if len(trends) != 2 {
		t.Fatalf("got %d trends, want 2", len(trends))
	}
	if trends[0].Body.Code != "TRE-SP" || trends[1].Body.Code != "TSE" {
		t.Errorf("trends not sorted by body code: %s, %s", trends[0].Body.Code, trends[1].Body.Code)
	}
}
