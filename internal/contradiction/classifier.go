package contradiction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lexmetrica/juris-analyzer/internal/caselaw"
	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

// DefaultMaxConcurrent bounds parallel adjudication calls to respect
// upstream rate limits.
const DefaultMaxConcurrent = 5

// Classifier turns similar pairs into confirmed contradictions. A cheap
// deterministic gate (opposite decision labels) runs before the expensive
// adjudication call, so only pairs that already show label-level
// disagreement reach the network.
type Classifier struct {
	adjudicator   Adjudicator
	opposites     *caselaw.OppositeSet
	maxConcurrent int
	logger        *zap.Logger
}

// ClassifierOption configures the Classifier.
type ClassifierOption func(*Classifier)

// WithMaxConcurrent sets the adjudication concurrency limit.
func WithMaxConcurrent(n int) ClassifierOption {
	return func(c *Classifier) {
		if n > 0 {
			c.maxConcurrent = n
		}
	}
}

// WithLogger sets the classifier logger.
func WithLogger(logger *zap.Logger) ClassifierOption {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// WithOpposites replaces the default opposite-pair table.
func WithOpposites(opposites *caselaw.OppositeSet) ClassifierOption {
	return func(c *Classifier) {
		c.opposites = opposites
	}
}

// NewClassifier creates a classifier delegating semantic judgment to the
// given adjudicator.
func NewClassifier(adjudicator Adjudicator, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		adjudicator:   adjudicator,
		opposites:     caselaw.DefaultOpposites(),
		maxConcurrent: DefaultMaxConcurrent,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify evaluates one similar pair. It returns nil when the decision
// labels are not a registered opposite pair or the adjudicator rules the
// pair out. Adjudication failures never drop a label-level conflict: the
// classifier falls back to a deterministic medium-severity default.
func (c *Classifier) Classify(ctx context.Context, pair models.SimilarPair) *models.Contradiction {
	if !c.opposites.AreOpposite(pair.Case1.Decision, pair.Case2.Decision) {
		return nil
	}

	adj, err := c.adjudicator.AdjudicatePair(ctx, pair.Case1, pair.Case2)
	if err != nil {
		c.logger.Warn("adjudication failed, using fallback",
			zap.String("case1", pair.Case1.ID),
			zap.String("case2", pair.Case2.ID),
			zap.Error(err))
		adj = fallbackAdjudication(pair)
	}

	if !adj.IsContradiction {
		return nil
	}

	return &models.Contradiction{
		ID:                uuid.NewString(),
		Case1:             pair.Case1,
		Case2:             pair.Case2,
		SimilarityScore:   pair.SimilarityScore,
		Type:              adj.Type,
		Severity:          adj.Severity,
		Explanation:       adj.Explanation,
		LegalImpact:       adj.LegalImpact,
		RecommendedAction: adj.Recommendation,
		DetectedAt:        time.Now(),
	}
}

// ClassifyAll evaluates pairs with bounded concurrency. Output preserves
// input order regardless of completion order, so identical inputs yield
// identical results. Cancellation stops dispatching and returns the pairs
// classified so far.
func (c *Classifier) ClassifyAll(ctx context.Context, pairs []models.SimilarPair) []models.Contradiction {
	slots := make([]*models.Contradiction, len(pairs))

	var g errgroup.Group
	g.SetLimit(c.maxConcurrent)

	for i, pair := range pairs {
		if ctx.Err() != nil {
			break
		}
		i, pair := i, pair
		g.Go(func() error {
			slots[i] = c.Classify(ctx, pair)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]models.Contradiction, 0, len(pairs))
	for _, contradiction := range slots {
		if contradiction != nil {
			results = append(results, *contradiction)
		}
	}
	return results
}

// fallbackAdjudication is used when the external adjudicator is unavailable
// or returns malformed data.
func fallbackAdjudication(pair models.SimilarPair) *Adjudication {
	return &Adjudication{
		IsContradiction: true,
		Type:            models.TypeOppositeOutcome,
		Severity:        models.SeverityMedium,
		Explanation: fmt.Sprintf("Opposite outcomes detected: %s ruled %s while %s ruled %s on a closely similar matter.",
			pair.Case1.Body.Code, pair.Case1.Decision, pair.Case2.Body.Code, pair.Case2.Decision),
		LegalImpact:    fmt.Sprintf("Possible precedent divergence between %s and %s.", pair.Case1.Body.Code, pair.Case2.Body.Code),
		Recommendation: "Verify which holding is more recent and better reasoned before relying on either.",
	}
}
