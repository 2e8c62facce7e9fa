package audit

import (
	"context"
	"errors"

	domainaudit "roundcheck/internal/domain/audit"
	"roundcheck/internal/ports"
)

// RemediableIssues is the per-department listing shown at the start of the
// fix flow: open and pending issues, oldest first.
type RemediableIssues struct {
	Department ports.Department
	Issues     []ports.Issue
}

func (s *Service) ListRemediableIssues(ctx context.Context, departmentID uint64) (RemediableIssues, error) {
	if ctx == nil {
		return RemediableIssues{}, errors.New("context is required")
	}
	if err := s.ready(); err != nil {
		return RemediableIssues{}, err
	}

	dept, err := s.repo.GetDepartment(ctx, departmentID)
	if err != nil {
		return RemediableIssues{}, err
	}

	issues, err := s.repo.ListIssues(ctx, ports.IssueFilter{
		DepartmentID: departmentID,
		Statuses: []string{
			string(domainaudit.IssueOpen),
			string(domainaudit.IssuePending),
		},
	})
	if err != nil {
		return RemediableIssues{}, err
	}

	return RemediableIssues{Department: dept, Issues: issues}, nil
}
