package api

import (
	"encoding/json"
	"net/http"

	"github.com/niatrack-data/internal/common/logger"
	"github.com/niatrack-data/pkg/trips/models"
)

// ReportSource provides the latest computed report. The runner satisfies
// it; tests can hand in a stub.
type ReportSource interface {
	Latest() *models.Report
}

// Server exposes the latest report over HTTP for dashboards and drill-down
// tooling, plus health and metrics endpoints.
type Server struct {
	source  ReportSource
	logger  logger.Logger
	metrics http.Handler
}

func NewServer(source ReportSource, metricsHandler http.Handler, log logger.Logger) *Server {
	return &Server{
		source:  source,
		logger:  log,
		metrics: metricsHandler,
	}
}

// Handler builds the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/report/wide", s.handleWide)
	mux.HandleFunc("/api/report/long", s.handleLong)
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}

func (s *Server) handleWide(w http.ResponseWriter, r *http.Request) {
	rep := s.source.Latest()
	if rep == nil {
		http.Error(w, `{"error":"no report computed yet"}`, http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, struct {
		Columns    []string         `json:"columns"`
		Rows       []models.TripRow `json:"rows"`
		RangeStart int64            `json:"range_start"`
		RangeEnd   int64            `json:"range_end"`
	}{rep.Columns, rep.Wide, rep.RangeStart, rep.RangeEnd})
}

func (s *Server) handleLong(w http.ResponseWriter, r *http.Request) {
	rep := s.source.Latest()
	if rep == nil {
		http.Error(w, `{"error":"no report computed yet"}`, http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, struct {
		Rows       []models.StationVisit `json:"rows"`
		RangeStart int64                 `json:"range_start"`
		RangeEnd   int64                 `json:"range_end"`
	}{rep.Long, rep.RangeStart, rep.RangeEnd})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}
