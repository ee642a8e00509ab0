// Package analysis wires retrieval, similarity, classification, clustering
// and trend detection into the two batch entry points of the engine:
// contradiction detection and theme monitoring. Each call is an independent
// job over an in-memory snapshot of retrieved cases.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lexmetrica/juris-analyzer/internal/contradiction"
	"github.com/lexmetrica/juris-analyzer/internal/report"
	"github.com/lexmetrica/juris-analyzer/internal/similarity"
	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

// ErrInvalidInput marks malformed request parameters. Callers can map it
// to a client error; it is never produced by collaborator failures or
// sparse data.
var ErrInvalidInput = errors.New("invalid input")

// CaseSource supplies cases for analysis. It is read-only: the engine
// never mutates the corpus.
type CaseSource interface {
	Search(ctx context.Context, query string, maxResults int, bodyCodes []string) ([]models.Case, error)
	CasesByTheme(ctx context.Context, theme string, daysBack int) ([]models.Case, error)
	ListBodies(ctx context.Context) ([]models.IssuingBody, error)
}

// DetectRequest parameterizes one contradiction analysis batch.
type DetectRequest struct {
	Query     string
	Threshold float64
	MaxCases  int
	BodyCodes []string
}

// Detector runs the contradiction pipeline: retrieve, match, classify,
// cluster, report.
type Detector struct {
	source     CaseSource
	matcher    *similarity.Matcher
	classifier *contradiction.Classifier
	logger     *zap.Logger
}

// NewDetector creates a contradiction detector. A nil logger disables
// logging.
func NewDetector(source CaseSource, matcher *similarity.Matcher, classifier *contradiction.Classifier, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		source:     source,
		matcher:    matcher,
		classifier: classifier,
		logger:     logger,
	}
}

// DetectContradictions retrieves cases for the query and surfaces
// contradictions between issuing bodies. Fewer than 2 retrieved cases
// yields an insufficient-data report, not an error. Cancellation mid-batch
// returns the partial results classified so far.
func (d *Detector) DetectContradictions(ctx context.Context, req DetectRequest) (*models.ContradictionReport, error) {
	if err := d.validate(ctx, req); err != nil {
		return nil, err
	}

	cases, err := d.source.Search(ctx, req.Query, req.MaxCases, req.BodyCodes)
	if err != nil {
		return nil, fmt.Errorf("analysis: retrieving cases: %w", err)
	}

	if len(cases) < 2 {
		d.logger.Info("insufficient cases for contradiction analysis",
			zap.String("query", req.Query),
			zap.Int("cases", len(cases)))
		return report.InsufficientDataReport(req.Query, len(cases)), nil
	}

	pairs, err := d.matcher.FindSimilarPairs(ctx, cases, req.Threshold)
	if err != nil {
		// A deadline mid-batch still yields a valid report covering the
		// cases actually analyzed, never a failure.
		if ctx.Err() != nil {
			d.logger.Warn("batch cancelled during similarity matching",
				zap.String("query", req.Query),
				zap.Int("cases", len(cases)))
			return report.BuildContradictionReport(req.Query, cases, nil, nil), nil
		}
		return nil, fmt.Errorf("analysis: similarity matching: %w", err)
	}

	// ClassifyAll returns whatever was classified before cancellation, so
	// a deadline mid-batch still produces a valid partial report.
	contradictions := d.classifier.ClassifyAll(ctx, pairs)
	clusters := contradiction.Cluster(contradictions)

	d.logger.Info("contradiction analysis complete",
		zap.String("query", req.Query),
		zap.Int("cases", len(cases)),
		zap.Int("pairs", len(pairs)),
		zap.Int("contradictions", len(contradictions)))

	return report.BuildContradictionReport(req.Query, cases, contradictions, clusters), nil
}

func (d *Detector) validate(ctx context.Context, req DetectRequest) error {
	if req.Query == "" {
		return fmt.Errorf("%w: query must not be empty", ErrInvalidInput)
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be in [0,1], got %v", ErrInvalidInput, req.Threshold)
	}
	if req.MaxCases <= 0 {
		return fmt.Errorf("%w: maxCases must be positive, got %d", ErrInvalidInput, req.MaxCases)
	}
	return validateBodyCodes(ctx, d.source, req.BodyCodes)
}

// validateBodyCodes rejects unknown body codes before any processing
// starts. An empty filter is always valid.
func validateBodyCodes(ctx context.Context, source CaseSource, bodyCodes []string) error {
	if len(bodyCodes) == 0 {
		return nil
	}

	bodies, err := source.ListBodies(ctx)
	if err != nil {
		return fmt.Errorf("analysis: listing bodies: %w", err)
	}

	known := make(map[string]bool, len(bodies))
	for _, body := range bodies {
		known[body.Code] = true
	}

	for _, code := range bodyCodes {
		if !known[code] {
			return fmt.Errorf("%w: unknown body code %q", ErrInvalidInput, code)
		}
	}
	return nil
}
