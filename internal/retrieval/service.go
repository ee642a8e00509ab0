// Package retrieval searches the persisted case corpus by semantic
// similarity and normalizes results for the analysis pipeline.
package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/lexmetrica/juris-analyzer/internal/caselaw"
	"github.com/lexmetrica/juris-analyzer/internal/storage"
	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

// Embedder produces one vector per input text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Service retrieves cases relevant to a free-text query, ranked by
// relevance. Cases with an empty decision label are re-tagged from their
// text before being returned.
type Service struct {
	repo     storage.CaseRepository
	embedder Embedder
	tagger   *caselaw.Tagger
	logger   *zap.Logger
}

// NewService creates a retrieval service. A nil logger disables logging.
func NewService(repo storage.CaseRepository, embedder Embedder, tagger *caselaw.Tagger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		embedder: embedder,
		tagger:   tagger,
		logger:   logger,
	}
}

// Search returns up to maxResults cases relevant to the query, optionally
// restricted to the given issuing-body codes.
func (s *Service) Search(ctx context.Context, query string, maxResults int, bodyCodes []string) ([]models.Case, error) {
	if query == "" {
		return nil, fmt.Errorf("retrieval: empty query")
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("retrieval: maxResults must be positive, got %d", maxResults)
	}

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval: embedding query: %w", err)
	}

	results, err := s.repo.SearchSimilar(ctx, pgvector.NewVector(vector), maxResults, bodyCodes)
	if err != nil {
		return nil, fmt.Errorf("retrieval: vector search: %w", err)
	}

	cases := make([]models.Case, 0, len(results))
	for _, result := range results {
		c := result.Case.ToModel()
		if c.Decision == "" || c.Decision == models.DecisionUnknown {
			c.Decision = s.tagger.TagDecision(c.Text)
		}
		cases = append(cases, c)
	}

	s.logger.Debug("retrieval search complete",
		zap.String("query", query),
		zap.Int("results", len(cases)),
		zap.Strings("body_filter", bodyCodes))

	return cases, nil
}

// ListBodies exposes the distinct issuing bodies in the corpus.
func (s *Service) ListBodies(ctx context.Context) ([]models.IssuingBody, error) {
	return s.repo.ListBodies(ctx)
}

// CasesByTheme returns cases on a theme decided within the last daysBack
// days, oldest first, with decisions re-tagged where missing.
func (s *Service) CasesByTheme(ctx context.Context, theme string, daysBack int) ([]models.Case, error) {
	if theme == "" {
		return nil, fmt.Errorf("retrieval: empty theme")
	}
	if daysBack <= 0 {
		return nil, fmt.Errorf("retrieval: daysBack must be positive, got %d", daysBack)
	}

	since := time.Now().AddDate(0, 0, -daysBack)
	records, err := s.repo.GetByTheme(ctx, theme, since)
	if err != nil {
		return nil, fmt.Errorf("retrieval: cases by theme: %w", err)
	}

	cases := make([]models.Case, 0, len(records))
	for _, record := range records {
		c := record.ToModel()
		if c.Decision == "" || c.Decision == models.DecisionUnknown {
			c.Decision = s.tagger.TagDecision(c.Text)
		}
		cases = append(cases, c)
	}

	return cases, nil
}
