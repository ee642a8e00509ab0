package similarity

import (
	"context"
	"fmt"
	"sort"

	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

const (
	// DefaultThreshold is the minimum similarity for a pair to be reported.
	DefaultThreshold = 0.75

	// themeBoost rewards pairs that carry the same explicit theme tag.
	themeBoost = 1.1

	// maxEmbedChars bounds how much of a case text is embedded. Decisions
	// front-load their holding, so the head of the text carries the signal.
	maxEmbedChars = 1000
)

// Embedder turns texts into vectors. Implementations must be deterministic
// for identical input within a session.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Matcher finds semantically similar case pairs across issuing bodies.
type Matcher struct {
	embedder  Embedder
	threshold float64
}

// NewMatcher creates a matcher with the given embedder. A non-positive
// threshold falls back to DefaultThreshold.
func NewMatcher(embedder Embedder, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{embedder: embedder, threshold: threshold}
}

// FindSimilarPairs compares every pair of cases from different issuing
// bodies and returns the pairs at or above the threshold, sorted by
// descending similarity. Equal scores keep input order so identical inputs
// yield identical output. Fewer than two cases yields an empty slice.
func (m *Matcher) FindSimilarPairs(ctx context.Context, cases []models.Case, threshold float64) ([]models.SimilarPair, error) {
	if len(cases) < 2 {
		return []models.SimilarPair{}, nil
	}
	if threshold <= 0 {
		threshold = m.threshold
	}

	texts := make([]string, len(cases))
	for i, c := range cases {
		texts[i] = truncate(c.Text, maxEmbedChars)
	}

	embeddings, err := m.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed cases: %w", err)
	}
	if len(embeddings) != len(cases) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d cases", len(embeddings), len(cases))
	}

	pairs := []models.SimilarPair{}
	for i := 0; i < len(cases); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := i + 1; j < len(cases); j++ {
			// Contradictions only exist across issuing bodies.
			if cases[i].Body.Code == cases[j].Body.Code {
				continue
			}

			sim := score(cases[i], cases[j], embeddings[i], embeddings[j])
			if sim < threshold {
				continue
			}

			pairs = append(pairs, models.SimilarPair{
				Case1:            cases[i],
				Case2:            cases[j],
				SimilarityScore:  sim,
				SemanticDistance: 1 - sim,
			})
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].SimilarityScore > pairs[b].SimilarityScore
	})

	return pairs, nil
}

// score combines cosine similarity with a theme-match boost, clamped to [0,1].
func score(c1, c2 models.Case, e1, e2 []float32) float64 {
	sim := CosineSimilarity(e1, e2)

	if c1.Theme != "" && c2.Theme != "" && c1.Theme == c2.Theme {
		sim = min(1.0, sim*themeBoost)
	}

	return max(0.0, min(1.0, sim))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
