package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"roundcheck/internal/bootstrap/logging"
	"roundcheck/internal/errs"
	"roundcheck/internal/ports"
	"roundcheck/internal/usecase/audit"
)

// StatsProvider is the slice of the audit service the HTTP surface needs.
type StatsProvider interface {
	History(ctx context.Context, departmentID *uint64) (audit.HistoryStats, error)
	Departments(ctx context.Context) ([]ports.Department, error)
}

type Server struct {
	stats StatsProvider
}

func NewServer(stats StatsProvider) *Server {
	return &Server{stats: stats}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Get("/stats/{departmentID}", s.handleStats)
	r.Get("/departments", s.handleDepartments)
	return r
}

type statsResponse struct {
	Department        string `json:"department,omitempty"`
	Inspections       int64  `json:"inspections"`
	ActiveInspections int64  `json:"active_inspections"`
	Issues            int64  `json:"issues"`
	IssuesInWork      int64  `json:"issues_in_work"`
	IssuesFixed       int64  `json:"issues_fixed"`
}

type departmentResponse struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var departmentID *uint64
	if raw := chi.URLParam(r, "departmentID"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			writeError(w, http.StatusBadRequest, "invalid department id")
			return
		}
		departmentID = &id
	}

	stats, err := s.stats.History(r.Context(), departmentID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "department not found")
			return
		}
		logging.Error(r.Context(), "history stats failed", slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Department:        stats.DepartmentName,
		Inspections:       stats.Inspections.Total,
		ActiveInspections: stats.ActiveInspections(),
		Issues:            stats.Issues.Total,
		IssuesInWork:      stats.Issues.InWork,
		IssuesFixed:       stats.Issues.Fixed,
	})
}

func (s *Server) handleDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := s.stats.Departments(r.Context())
	if err != nil {
		logging.Error(r.Context(), "list departments failed", slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusInternalServerError, "departments unavailable")
		return
	}

	out := make([]departmentResponse, 0, len(departments))
	for _, d := range departments {
		out = append(out, departmentResponse{ID: d.ID, Name: d.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
