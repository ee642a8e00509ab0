package analysis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lexmetrica/juris-analyzer/internal/alerting"
	"github.com/lexmetrica/juris-analyzer/internal/contradiction"
	"github.com/lexmetrica/juris-analyzer/internal/report"
	"github.com/lexmetrica/juris-analyzer/internal/trend"
	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

// MonitorRequest parameterizes one theme monitoring batch.
type MonitorRequest struct {
	Theme           string
	BodyCodes       []string
	DaysBack        int
	ChangeThreshold float64
	PriorityFloor   models.Priority
}

// Monitor runs the trend pipeline: collect historical cases, bucket by
// body and period, detect shifts, explain them, alert.
type Monitor struct {
	source      CaseSource
	engine      *trend.Engine
	adjudicator contradiction.Adjudicator
	logger      *zap.Logger
}

// NewMonitor creates a theme monitor. The adjudicator is optional: when
// nil, detected shifts keep their deterministic narratives. A nil logger
// disables logging.
func NewMonitor(source CaseSource, engine *trend.Engine, adjudicator contradiction.Adjudicator, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		source:      source,
		engine:      engine,
		adjudicator: adjudicator,
		logger:      logger,
	}
}

// MonitorTheme analyzes how each issuing body has decided the theme over
// the window and reports significant shifts. Sparse data produces a report
// with advisory highlights, not an error.
func (m *Monitor) MonitorTheme(ctx context.Context, req MonitorRequest) (*models.MonitoringReport, error) {
	if err := m.validate(ctx, req); err != nil {
		return nil, err
	}

	cases, err := m.source.CasesByTheme(ctx, req.Theme, req.DaysBack)
	if err != nil {
		return nil, fmt.Errorf("analysis: collecting historical cases: %w", err)
	}
	cases = filterByBodies(cases, req.BodyCodes)

	now := time.Now()
	trends := m.engine.AnalyzeAll(cases, req.Theme, now.AddDate(0, 0, -req.DaysBack), now)
	changes := trend.DetectChanges(trends, req.ChangeThreshold)
	m.explainChanges(ctx, trends, changes)

	alerts := alerting.FromChanges(changes, req.PriorityFloor)

	m.logger.Info("theme monitoring complete",
		zap.String("theme", req.Theme),
		zap.Int("cases", len(cases)),
		zap.Int("trends", len(trends)),
		zap.Int("changes", len(changes)))

	return report.BuildMonitoringReport(req.Theme, req.BodyCodes, req.DaysBack, changes, trends, alerts), nil
}

// explainChanges replaces the deterministic narratives with adjudicator
// narratives where available. Adjudicator failures are logged and the
// defaults kept; they never abort the batch.
func (m *Monitor) explainChanges(ctx context.Context, trends []models.TrendAnalysis, changes []models.ChangeDetection) {
	if m.adjudicator == nil {
		return
	}

	directions := make(map[string]models.TrendDirection, len(trends))
	for _, t := range trends {
		directions[t.Body.Code] = t.OverallTrend
	}

	for i := range changes {
		change := &changes[i]
		explanation, err := m.adjudicator.ExplainChange(ctx, contradiction.ChangeContext{
			Body:         change.Body,
			Theme:        change.Theme,
			ChangeType:   change.Type,
			BeforeRatio:  change.BeforeRatio,
			BeforeCases:  change.BeforeCases,
			AfterRatio:   change.AfterRatio,
			AfterCases:   change.AfterCases,
			OverallTrend: directions[change.Body.Code],
		})
		if err != nil {
			m.logger.Warn("change explanation failed, keeping default narrative",
				zap.String("body", change.Body.Code),
				zap.Error(err))
			continue
		}
		change.Explanation = explanation.Explanation
		change.ImpactAssessment = explanation.Impact
		change.RecommendedAction = explanation.Recommendation
	}
}

func (m *Monitor) validate(ctx context.Context, req MonitorRequest) error {
	if req.Theme == "" {
		return fmt.Errorf("%w: theme must not be empty", ErrInvalidInput)
	}
	if req.DaysBack <= 0 {
		return fmt.Errorf("%w: daysBack must be positive, got %d", ErrInvalidInput, req.DaysBack)
	}
	if req.ChangeThreshold < 0 || req.ChangeThreshold > 1 {
		return fmt.Errorf("%w: changeThreshold must be in [0,1], got %v", ErrInvalidInput, req.ChangeThreshold)
	}
	return validateBodyCodes(ctx, m.source, req.BodyCodes)
}

func filterByBodies(cases []models.Case, bodyCodes []string) []models.Case {
	if len(bodyCodes) == 0 {
		return cases
	}

	allowed := make(map[string]bool, len(bodyCodes))
	for _, code := range bodyCodes {
		allowed[code] = true
	}

	filtered := make([]models.Case, 0, len(cases))
	for _, c := range cases {
		if allowed[c.Body.Code] {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
