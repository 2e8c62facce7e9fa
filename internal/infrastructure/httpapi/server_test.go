package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"roundcheck/internal/ports"
	"roundcheck/internal/usecase/audit"
)

type fakeStats struct {
	global audit.HistoryStats
	scoped map[uint64]audit.HistoryStats
	depts  []ports.Department
}

func (f *fakeStats) History(_ context.Context, departmentID *uint64) (audit.HistoryStats, error) {
	if departmentID == nil {
		return f.global, nil
	}
	stats, ok := f.scoped[*departmentID]
	if !ok {
		return audit.HistoryStats{}, ports.ErrDepartmentNotFound
	}
	return stats, nil
}

func (f *fakeStats) Departments(context.Context) ([]ports.Department, error) {
	return f.depts, nil
}

func newTestServer() *Server {
	return NewServer(&fakeStats{
		global: audit.HistoryStats{
			Inspections: ports.InspectionCounts{Total: 10, Completed: 8},
			Issues:      ports.IssueCounts{Total: 25, InWork: 4, Fixed: 21},
		},
		scoped: map[uint64]audit.HistoryStats{
			3: {
				DepartmentName: "Electrical",
				Inspections:    ports.InspectionCounts{Total: 2, Completed: 2},
				Issues:         ports.IssueCounts{Total: 5, InWork: 1, Fixed: 4},
			},
		},
		depts: []ports.Department{{ID: 3, Name: "Electrical"}},
	})
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer().Router(), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGlobalStats(t *testing.T) {
	rec := get(t, newTestServer().Router(), "/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Department != "" {
		t.Errorf("department = %q, want empty for global stats", body.Department)
	}
	if body.Inspections != 10 || body.ActiveInspections != 2 {
		t.Errorf("inspections = (%d,%d), want (10,2)", body.Inspections, body.ActiveInspections)
	}
	if body.Issues != 25 || body.IssuesInWork != 4 || body.IssuesFixed != 21 {
		t.Errorf("issues = (%d,%d,%d)", body.Issues, body.IssuesInWork, body.IssuesFixed)
	}
}

func TestScopedStats(t *testing.T) {
	rec := get(t, newTestServer().Router(), "/stats/3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Department != "Electrical" {
		t.Errorf("department = %q, want Electrical", body.Department)
	}
}

func TestScopedStatsErrors(t *testing.T) {
	router := newTestServer().Router()

	if rec := get(t, router, "/stats/999"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown department status = %d, want 404", rec.Code)
	}
	if rec := get(t, router, "/stats/abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
	if rec := get(t, router, "/stats/0"); rec.Code != http.StatusBadRequest {
		t.Errorf("zero id status = %d, want 400", rec.Code)
	}
}

func TestDepartments(t *testing.T) {
	rec := get(t, newTestServer().Router(), "/departments")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body []departmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body) != 1 || body[0].Name != "Electrical" {
		t.Errorf("departments = %+v", body)
	}
}
