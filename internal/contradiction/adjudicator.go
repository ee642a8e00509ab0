package contradiction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

// Adjudication is the structured verdict of the external adjudication
// service for a candidate pair.
type Adjudication struct {
	IsContradiction bool
	Type            models.ContradictionType
	Severity        models.Severity
	Explanation     string
	LegalImpact     string
	Recommendation  string
}

// ChangeContext describes a detected trend shift for the adjudicator to
// explain.
type ChangeContext struct {
	Body         models.IssuingBody
	Theme        string
	ChangeType   models.ChangeType
	BeforeRatio  float64
	BeforeCases  int
	AfterRatio   float64
	AfterCases   int
	OverallTrend models.TrendDirection
}

// ChangeExplanation is the adjudicator's narrative for a trend shift.
type ChangeExplanation struct {
	Explanation    string
	Impact         string
	Recommendation string
}

// Adjudicator produces semantic judgments the engine cannot make locally.
// Implementations may fail or time out; callers must fall back to
// deterministic defaults rather than abort a batch.
type Adjudicator interface {
	AdjudicatePair(ctx context.Context, case1, case2 models.Case) (*Adjudication, error)
	ExplainChange(ctx context.Context, change ChangeContext) (*ChangeExplanation, error)
}

// caseSummaryChars bounds how much decision text goes into a prompt.
const caseSummaryChars = 800

// HTTPAdjudicator adjudicates pairs via a Claude-style messages API.
type HTTPAdjudicator struct {
	apiKey     string
	baseURL    string
	model      string
	maxRetries uint64
	httpClient *http.Client
}

// Config holds adjudicator configuration
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries uint64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:    "https://api.anthropic.com/v1",
		Model:      "claude-3-haiku-20240307",
		Timeout:    30 * time.Second,
		MaxRetries: 2,
	}
}

// NewHTTPAdjudicator creates an adjudicator backed by the messages API.
func NewHTTPAdjudicator(config Config) *HTTPAdjudicator {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Model == "" {
		config.Model = DefaultConfig().Model
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultConfig().MaxRetries
	}

	return &HTTPAdjudicator{
		apiKey:     config.APIKey,
		baseURL:    config.BaseURL,
		model:      config.Model,
		maxRetries: config.MaxRetries,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// AdjudicatePair asks the model whether two similar cases truly contradict
// each other and how severely.
func (a *HTTPAdjudicator) AdjudicatePair(ctx context.Context, case1, case2 models.Case) (*Adjudication, error) {
	response, err := a.complete(ctx, buildPairPrompt(case1, case2))
	if err != nil {
		return nil, fmt.Errorf("adjudicate pair: %w", err)
	}

	var raw struct {
		IsContradiction bool   `json:"is_contradiction"`
		Type            string `json:"type"`
		Severity        string `json:"severity"`
		Explanation     string `json:"explanation"`
		LegalImpact     string `json:"legal_impact"`
		Recommendation  string `json:"recommendation"`
	}
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		return nil, fmt.Errorf("parse adjudication: %w", err)
	}

	if !raw.IsContradiction {
		return &Adjudication{IsContradiction: false}, nil
	}

	ctype, err := parseContradictionType(raw.Type)
	if err != nil {
		return nil, err
	}
	severity, err := models.ParseSeverity(raw.Severity)
	if err != nil {
		return nil, fmt.Errorf("parse adjudication: %w", err)
	}

	return &Adjudication{
		IsContradiction: true,
		Type:            ctype,
		Severity:        severity,
		Explanation:     raw.Explanation,
		LegalImpact:     raw.LegalImpact,
		Recommendation:  raw.Recommendation,
	}, nil
}

// ExplainChange asks the model to narrate a detected trend shift.
func (a *HTTPAdjudicator) ExplainChange(ctx context.Context, change ChangeContext) (*ChangeExplanation, error) {
	response, err := a.complete(ctx, buildChangePrompt(change))
	if err != nil {
		return nil, fmt.Errorf("explain change: %w", err)
	}

	var raw struct {
		Explanation    string `json:"explanation"`
		Impact         string `json:"impact"`
		Recommendation string `json:"recommendation"`
	}
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		return nil, fmt.Errorf("parse change explanation: %w", err)
	}
	if raw.Explanation == "" {
		return nil, fmt.Errorf("empty change explanation")
	}

	return &ChangeExplanation{
		Explanation:    raw.Explanation,
		Impact:         raw.Impact,
		Recommendation: raw.Recommendation,
	}, nil
}

func parseContradictionType(s string) (models.ContradictionType, error) {
	switch models.ContradictionType(s) {
	case models.TypeOppositeOutcome, models.TypeDivergentRationale,
		models.TypeDivergentInterpretation, models.TypeConflictingCriteria:
		return models.ContradictionType(s), nil
	default:
		return "", fmt.Errorf("unknown contradiction type %q", s)
	}
}

func buildPairPrompt(case1, case2 models.Case) string {
	return fmt.Sprintf(`You are an expert in judicial precedent analysis. Determine whether these two decisions from different issuing bodies contradict each other:

CASE 1 (%s):
Title: %s
Decision: %s
Text: %s

CASE 2 (%s):
Title: %s
Decision: %s
Text: %s

Respond in JSON:
{
  "is_contradiction": true/false,
  "type": "opposite-outcome" | "divergent-rationale" | "divergent-interpretation" | "conflicting-criteria",
  "severity": "low" | "medium" | "high" | "critical",
  "explanation": "clear explanation of the contradiction in 2-3 sentences",
  "legal_impact": "legal impact of this contradiction",
  "recommendation": "strategic recommendation for litigators"
}

If there is no contradiction, respond:
{"is_contradiction": false}

Respond ONLY with valid JSON.`,
		case1.Body.Name, case1.Title, case1.Decision, summary(case1.Text),
		case2.Body.Name, case2.Title, case2.Decision, summary(case2.Text))
}

func buildChangePrompt(change ChangeContext) string {
	return fmt.Sprintf(`Analyze this shift in judicial decision patterns:

Issuing body: %s
Theme: %s
Shift type: %s
Before: %.1f%% favorable (%d cases)
After: %.1f%% favorable (%d cases)
Overall trend: %s

Respond in JSON:
{
  "explanation": "clear explanation of the shift in 2-3 sentences",
  "impact": "practical impact for litigators and parties",
  "recommendation": "clear strategic recommendation"
}

Respond ONLY with valid JSON.`,
		change.Body.Name, change.Theme, change.ChangeType,
		change.BeforeRatio*100, change.BeforeCases,
		change.AfterRatio*100, change.AfterCases,
		change.OverallTrend)
}

func summary(text string) string {
	if len(text) <= caseSummaryChars {
		return text
	}
	return text[:caseSummaryChars] + "..."
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (a *HTTPAdjudicator) complete(ctx context.Context, prompt string) (string, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), a.maxRetries), ctx)

	return backoff.RetryWithData(func() (string, error) {
		return a.completeOnce(ctx, prompt)
	}, policy)
}

func (a *HTTPAdjudicator) completeOnce(ctx context.Context, prompt string) (string, error) {
	reqBody := messagesRequest{
		Model:     a.model,
		MaxTokens: 500,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", backoff.Permanent(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("API error: status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	var mr messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", err
	}

	if len(mr.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	return mr.Content[0].Text, nil
}
