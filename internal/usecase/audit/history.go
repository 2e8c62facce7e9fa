package audit

import (
	"context"
	"errors"

	"roundcheck/internal/ports"
)

// HistoryStats is the aggregate view shown to admins: global when
// DepartmentName is empty, otherwise scoped to one department.
type HistoryStats struct {
	DepartmentName string
	Inspections    ports.InspectionCounts
	Issues         ports.IssueCounts
}

func (h HistoryStats) ActiveInspections() int64 {
	return h.Inspections.Total - h.Inspections.Completed
}

// History returns the aggregate counters. departmentID nil means global.
func (s *Service) History(ctx context.Context, departmentID *uint64) (HistoryStats, error) {
	if ctx == nil {
		return HistoryStats{}, errors.New("context is required")
	}
	if err := s.ready(); err != nil {
		return HistoryStats{}, err
	}

	var stats HistoryStats
	if departmentID != nil {
		dept, err := s.repo.GetDepartment(ctx, *departmentID)
		if err != nil {
			return HistoryStats{}, err
		}
		stats.DepartmentName = dept.Name
	}

	inspections, err := s.repo.InspectionCounts(ctx, departmentID)
	if err != nil {
		return HistoryStats{}, err
	}
	issues, err := s.repo.IssueCounts(ctx, departmentID)
	if err != nil {
		return HistoryStats{}, err
	}

	stats.Inspections = inspections
	stats.Issues = issues
	return stats, nil
}
