package similarity

import (
	"context"
	"errors"
	"testing"

	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

// stubEmbedder returns canned vectors keyed by input text.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, ok := s.vectors[text]
		if !ok {
			v = []float32{0, 0, 1}
		}
		out[i] = v
	}
	return out, nil
}

func testCase(id, body, theme, text string) models.Case {
	return models.Case{
		ID:    id,
		Title: "case " + id,
		Text:  text,
		Body:  models.IssuingBody{Code: body, Name: "Court " + body},
		Theme: theme,
	}
}

func TestFindSimilarPairs(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"alpha": {1, 0, 0},
		"beta":  {0.95, 0.3, 0},
		"gamma": {0, 1, 0},
	}}
	matcher := NewMatcher(embedder, 0.75)

	cases := []models.Case{
		testCase("1", "TSE", "", "alpha"),
		testCase("2", "TRE-SP", "", "beta"),
		testCase("3", "TRE-RJ", "", "gamma"),
	}

	pairs, err := matcher.FindSimilarPairs(context.Background(), cases, 0.75)
	if err != nil {
		t.Fatalf("FindSimilarPairs: %v", err)
	}

	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	if pairs[0].Case1.ID != "1" || pairs[0].Case2.ID != "2" {
		t.Errorf("got pair (%s, %s), want (1, 2)", pairs[0].Case1.ID, pairs[0].Case2.ID)
	}
	if pairs[0].SimilarityScore < 0.75 {
		t.Errorf("pair below threshold: %f", pairs[0].SimilarityScore)
	}
	wantDist := 1 - pairs[0].SimilarityScore
	if pairs[0].SemanticDistance != wantDist {
		t.Errorf("semantic distance = %f, want %f", pairs[0].SemanticDistance, wantDist)
	}
}

func TestFindSimilarPairsSkipsSameBody(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"alpha": {1, 0, 0},
	}}
	matcher := NewMatcher(embedder, 0.5)

	// Identical texts from the same body would score 1.0, but the pair must
	// never be produced.
	cases := []models.Case{
		testCase("1", "TSE", "", "alpha"),
		testCase("2", "TSE", "", "alpha"),
	}

	pairs, err := matcher.FindSimilarPairs(context.Background(), cases, 0.5)
	if err != nil {
		t.Fatalf("FindSimilarPairs: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("got %d pairs for same-body cases, want 0", len(pairs))
	}
}

func TestFindSimilarPairsThemeBoost(t *testing.T) {
	// Cosine similarity of these vectors is ~0.707, below the 0.75
	// threshold. The shared theme boost (x1.1) lifts it to ~0.778.
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"alpha": {1, 0, 0},
		"beta":  {1, 1, 0},
	}}
	matcher := NewMatcher(embedder, 0.75)

	unthemed := []models.Case{
		testCase("1", "TSE", "", "alpha"),
		testCase("2", "TRE-SP", "", "beta"),
	}
	pairs, err := matcher.FindSimilarPairs(context.Background(), unthemed, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 0 {
		t.Fatalf("unthemed pair should be below threshold, got %d pairs", len(pairs))
	}

	themed := []models.Case{
		testCase("1", "TSE", "candidacy registration", "alpha"),
		testCase("2", "TRE-SP", "candidacy registration", "beta"),
	}
	pairs, err = matcher.FindSimilarPairs(context.Background(), themed, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 1 {
		t.Fatalf("themed pair should pass threshold, got %d pairs", len(pairs))
	}
	if pairs[0].SimilarityScore > 1.0 {
		t.Errorf("boosted score %f exceeds 1.0", pairs[0].SimilarityScore)
	}
}

func TestFindSimilarPairsSorted(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"a": {1, 0, 0},
		"b": {0.9, 0.4, 0},
		"c": {0.99, 0.1, 0},
	}}
	matcher := NewMatcher(embedder, 0.1)

	cases := []models.Case{
		testCase("1", "TSE", "", "a"),
		testCase("2", "TRE-SP", "", "b"),
		testCase("3", "TRE-RJ", "", "c"),
	}

	pairs, err := matcher.FindSimilarPairs(context.Background(), cases, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(pairs); i++ {
		if pairs[i].SimilarityScore > pairs[i-1].SimilarityScore {
			t.Errorf("pairs not sorted descending at index %d", i)
		}
	}
}

func TestFindSimilarPairsTooFewCases(t *testing.T) {
	matcher := NewMatcher(&stubEmbedder{}, 0.75)

	for _, cases := range [][]models.Case{nil, {testCase("1", "TSE", "", "alpha")}} {
		pairs, err := matcher.FindSimilarPairs(context.Background(), cases, 0.75)
		if err != nil {
			t.Fatalf("expected no error for %d cases, got %v", len(cases), err)
		}
		if len(pairs) != 0 {
			t.Errorf("expected empty result for %d cases", len(cases))
		}
	}
}

func TestFindSimilarPairsEmbedderError(t *testing.T) {
	matcher := NewMatcher(&stubEmbedder{err: errors.New("upstream down")}, 0.75)

	cases := []models.Case{
		testCase("1", "TSE", "", "alpha"),
		testCase("2", "TRE-SP", "", "beta"),
	}

	if _, err := matcher.FindSimilarPairs(context.Background(), cases, 0.75); err == nil {
		t.Error("expected error when embedder fails")
	}
}

func TestFindSimilarPairsCancelled(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{}}
	matcher := NewMatcher(embedder, 0.75)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []models.Case{
		testCase("1", "TSE", "", "alpha"),
		testCase("2", "TRE-SP", "", "beta"),
	}

	if _, err := matcher.FindSimilarPairs(ctx, cases, 0.75); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
