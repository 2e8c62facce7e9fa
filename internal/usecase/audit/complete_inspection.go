package audit

import (
	"context"
	"errors"

	domainaudit "roundcheck/internal/domain/audit"
)

// CompletedInspection carries the round summary for broadcast. When the
// inspection had already been completed, AlreadyCompleted is set and the
// caller must not broadcast again.
type CompletedInspection struct {
	Summary          domainaudit.RoundSummary
	AlreadyCompleted bool
}

// CompleteInspection closes the round and computes the final issue count.
// Completing twice is a safe no-op.
func (s *Service) CompleteInspection(ctx context.Context, inspectionID uint64) (CompletedInspection, error) {
	if ctx == nil {
		return CompletedInspection{}, errors.New("context is required")
	}
	if err := s.ready(); err != nil {
		return CompletedInspection{}, err
	}

	var result CompletedInspection
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		inspection, err := s.repo.GetInspection(txCtx, inspectionID)
		if err != nil {
			return err
		}

		alreadyCompleted := inspection.Status == string(domainaudit.InspectionCompleted)
		if !alreadyCompleted {
			if err := s.repo.SetInspectionStatus(txCtx, inspectionID, string(domainaudit.InspectionCompleted)); err != nil {
				return err
			}
		}

		count, err := s.repo.CountIssuesByInspection(txCtx, inspectionID)
		if err != nil {
			return err
		}

		deptName := unknownDepartmentName(inspection.DepartmentID)
		if dept, err := s.repo.GetDepartment(txCtx, inspection.DepartmentID); err == nil {
			deptName = dept.Name
		}

		inspectorName := ""
		if inspector, err := s.repo.GetUser(txCtx, inspection.InspectorID); err == nil {
			inspectorName = inspector.Name
		}

		result = CompletedInspection{
			Summary: domainaudit.RoundSummary{
				InspectionID:  inspection.ID,
				Department:    deptName,
				IssueCount:    count,
				InspectorName: inspectorName,
				Date:          inspection.Date,
				RemediateBy:   domainaudit.RemediateBy(inspection.Date),
			},
			AlreadyCompleted: alreadyCompleted,
		}
		return nil
	})
	if err != nil {
		return CompletedInspection{}, err
	}
	return result, nil
}
