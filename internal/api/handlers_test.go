package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lexmetrica/juris-analyzer/internal/analysis"
	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

type stubDetector struct {
	report *models.ContradictionReport
	err    error
	got    analysis.DetectRequest
}

func (s *stubDetector) DetectContradictions(_ context.Context, req analysis.DetectRequest) (*models.ContradictionReport, error) {
	s.got = req
	return s.report, s.err
}

type stubMonitor struct {
	report *models.MonitoringReport
	err    error
	got    analysis.MonitorRequest
}

func (s *stubMonitor) MonitorTheme(_ context.Context, req analysis.MonitorRequest) (*models.MonitoringReport, error) {
	s.got = req
	return s.report, s.err
}

type stubSearcher struct {
	cases  []models.Case
	bodies []models.IssuingBody
	err    error
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ int, _ []string) ([]models.Case, error) {
	return s.cases, s.err
}

func (s *stubSearcher) ListBodies(_ context.Context) ([]models.IssuingBody, error) {
	return s.bodies, s.err
}

type stubStats struct {
	count int
	err   error
}

func (s *stubStats) Count(_ context.Context) (int, error) {
	return s.count, s.err
}

func emptyReport() *models.ContradictionReport {
	return &models.ContradictionReport{
		Query:      "q",
		Clusters:   []models.ContradictionCluster{},
		Highlights: []string{"No contradictions detected across the analyzed cases"},
	}
}

func newTestServer(detector ContradictionDetector, monitor ThemeMonitor, searcher CaseSearcher, stats CorpusStats) *Server {
	return NewServer(detector, monitor, searcher, stats, nil)
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&stubDetector{}, &stubMonitor{}, &stubSearcher{}, &stubStats{})

	rec := doRequest(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestHandleStats(t *testing.T) {
	searcher := &stubSearcher{bodies: []models.IssuingBody{{Code: "TSE", Name: "Superior Electoral Court"}}}
	s := newTestServer(&stubDetector{}, &stubMonitor{}, searcher, &stubStats{count: 120})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		TotalCases int                  `json:"total_cases"`
		Bodies     []models.IssuingBody `json:"bodies"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if body.TotalCases != 120 {
		t.Errorf("total_cases = %d", body.TotalCases)
	}
	if len(body.Bodies) != 1 || body.Bodies[0].Code != "TSE" {
		t.Errorf("bodies = %v", body.Bodies)
	}
}

func TestHandleSearchCases(t *testing.T) {
	searcher := &stubSearcher{cases: []models.Case{
		{ID: "1", Body: models.IssuingBody{Code: "TSE"}, Decision: models.DecisionGranted},
	}}
	s := newTestServer(&stubDetector{}, &stubMonitor{}, searcher, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/cases/search?q=candidacy&max=5&bodies=TSE", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Count int           `json:"count"`
		Cases []models.Case `json:"cases"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if body.Count != 1 {
		t.Errorf("count = %d", body.Count)
	}
}

func TestHandleSearchCasesValidation(t *testing.T) {
	s := newTestServer(&stubDetector{}, &stubMonitor{}, &stubSearcher{}, nil)

	if rec := doRequest(t, s, http.MethodGet, "/api/v1/cases/search", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d", rec.Code)
	}
	if rec := doRequest(t, s, http.MethodGet, "/api/v1/cases/search?q=x&max=-1", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("negative max: status = %d", rec.Code)
	}
}

func TestHandleDetectContradictions(t *testing.T) {
	detector := &stubDetector{report: emptyReport()}
	s := newTestServer(detector, &stubMonitor{}, &stubSearcher{}, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/contradictions/detect", DetectRequest{
		Query: "candidacy registration",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Omitted fields pick up engine defaults.
	if detector.got.Threshold != 0.75 {
		t.Errorf("threshold = %v, want default 0.75", detector.got.Threshold)
	}
	if detector.got.MaxCases != defaultMaxCases {
		t.Errorf("maxCases = %d", detector.got.MaxCases)
	}

	var body struct {
		Report  *models.ContradictionReport `json:"report"`
		Alerts  []models.Alert              `json:"alerts"`
		Summary string                      `json:"summary"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if body.Report == nil {
		t.Fatal("missing report")
	}
	if body.Summary == "" {
		t.Error("missing summary")
	}
}

func TestHandleDetectContradictionsInvalidInput(t *testing.T) {
	detector := &stubDetector{err: fmt.Errorf("%w: threshold out of range", analysis.ErrInvalidInput)}
	s := newTestServer(detector, &stubMonitor{}, &stubSearcher{}, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/contradictions/detect", DetectRequest{
		Query:     "q",
		Threshold: 2.0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleDetectContradictionsInternalError(t *testing.T) {
	detector := &stubDetector{err: errors.New("database down")}
	s := newTestServer(detector, &stubMonitor{}, &stubSearcher{}, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/contradictions/detect", DetectRequest{Query: "q"})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandleDetectContradictionsBadPriorityFloor(t *testing.T) {
	s := newTestServer(&stubDetector{report: emptyReport()}, &stubMonitor{}, &stubSearcher{}, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/contradictions/detect", DetectRequest{
		Query:         "q",
		PriorityFloor: "catastrophic",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleMonitorTheme(t *testing.T) {
	monitor := &stubMonitor{report: &models.MonitoringReport{Theme: "ballot access"}}
	s := newTestServer(&stubDetector{}, monitor, &stubSearcher{}, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/trends/monitor", MonitorRequest{
		Theme:           "ballot access",
		ChangeThreshold: 0.2,
		PriorityFloor:   "high",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	if monitor.got.DaysBack != defaultDaysBack {
		t.Errorf("daysBack = %d, want default", monitor.got.DaysBack)
	}
	if monitor.got.PriorityFloor != models.PriorityHigh {
		t.Errorf("priority floor = %v", monitor.got.PriorityFloor)
	}
}

func TestHandleMonitorThemeInvalidBody(t *testing.T) {
	s := newTestServer(&stubDetector{}, &stubMonitor{}, &stubSearcher{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/trends/monitor", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
