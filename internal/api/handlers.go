package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lexmetrica/juris-analyzer/internal/alerting"
	"github.com/lexmetrica/juris-analyzer/internal/analysis"
	"github.com/lexmetrica/juris-analyzer/internal/report"
	"github.com/lexmetrica/juris-analyzer/internal/similarity"
	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

const (
	defaultMaxCases = 20
	defaultDaysBack = 365
)

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	bodies, err := s.searcher.ListBodies(r.Context())
	if err != nil {
		s.logger.Error("listing bodies", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to read corpus statistics")
		return
	}

	stats := map[string]interface{}{
		"bodies": bodies,
	}
	if s.stats != nil {
		count, err := s.stats.Count(r.Context())
		if err != nil {
			s.logger.Error("counting cases", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to read corpus statistics")
			return
		}
		stats["total_cases"] = count
	}

	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListBodies(w http.ResponseWriter, r *http.Request) {
	bodies, err := s.searcher.ListBodies(r.Context())
	if err != nil {
		s.logger.Error("listing bodies", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list bodies")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"bodies": bodies})
}

func (s *Server) handleSearchCases(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	maxResults := defaultMaxCases
	if raw := r.URL.Query().Get("max"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "max must be a positive integer")
			return
		}
		maxResults = parsed
	}

	var bodyCodes []string
	if raw := r.URL.Query().Get("bodies"); raw != "" {
		bodyCodes = strings.Split(raw, ",")
	}

	cases, err := s.searcher.Search(r.Context(), query, maxResults, bodyCodes)
	if err != nil {
		s.logger.Error("case search failed", zap.String("query", query), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "search failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"query": query,
		"count": len(cases),
		"cases": cases,
	})
}

// DetectRequest is the body of POST /contradictions/detect.
type DetectRequest struct {
	Query         string   `json:"query"`
	Threshold     float64  `json:"threshold"`
	MaxCases      int      `json:"max_cases"`
	BodyCodes     []string `json:"body_codes"`
	PriorityFloor string   `json:"priority_floor"`
}

func (s *Server) handleDetectContradictions(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Threshold == 0 {
		req.Threshold = similarity.DefaultThreshold
	}
	if req.MaxCases == 0 {
		req.MaxCases = defaultMaxCases
	}
	floor, err := parsePriorityFloor(req.PriorityFloor)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.detector.DetectContradictions(r.Context(), analysis.DetectRequest{
		Query:     req.Query,
		Threshold: req.Threshold,
		MaxCases:  req.MaxCases,
		BodyCodes: req.BodyCodes,
	})
	if err != nil {
		if errors.Is(err, analysis.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("contradiction detection failed", zap.String("query", req.Query), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"report":  result,
		"alerts":  alerting.FromContradictions(flattenContradictions(result), floor),
		"summary": report.RenderSummary(result),
	})
}

// MonitorRequest is the body of POST /trends/monitor.
type MonitorRequest struct {
	Theme           string   `json:"theme"`
	BodyCodes       []string `json:"body_codes"`
	DaysBack        int      `json:"days_back"`
	ChangeThreshold float64  `json:"change_threshold"`
	PriorityFloor   string   `json:"priority_floor"`
}

func (s *Server) handleMonitorTheme(w http.ResponseWriter, r *http.Request) {
	var req MonitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.DaysBack == 0 {
		req.DaysBack = defaultDaysBack
	}
	floor, err := parsePriorityFloor(req.PriorityFloor)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.monitor.MonitorTheme(r.Context(), analysis.MonitorRequest{
		Theme:           req.Theme,
		BodyCodes:       req.BodyCodes,
		DaysBack:        req.DaysBack,
		ChangeThreshold: req.ChangeThreshold,
		PriorityFloor:   floor,
	})
	if err != nil {
		if errors.Is(err, analysis.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("theme monitoring failed", zap.String("theme", req.Theme), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"report": result})
}

func parsePriorityFloor(raw string) (models.Priority, error) {
	if raw == "" {
		return models.PriorityLow, nil
	}
	return models.ParsePriority(raw)
}

func flattenContradictions(r *models.ContradictionReport) []models.Contradiction {
	var all []models.Contradiction
	for _, cluster := range r.Clusters {
		all = append(all, cluster.Contradictions...)
	}
	return all
}
