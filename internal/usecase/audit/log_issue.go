package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainaudit "roundcheck/internal/domain/audit"
	"roundcheck/internal/ports"
)

// LogIssue records a defect photographed during an open inspection. The
// issue's department is copied from the inspection, which keeps the
// department/inspection invariant by construction. An empty caption leaves
// the comment unset for a follow-up text to fill in.
func (s *Service) LogIssue(ctx context.Context, input LogIssueInput) (ports.Issue, error) {
	if ctx == nil {
		return ports.Issue{}, errors.New("context is required")
	}
	if err := s.ready(); err != nil {
		return ports.Issue{}, err
	}
	if strings.TrimSpace(input.PhotoRef) == "" {
		return ports.Issue{}, errors.New("photo ref is required")
	}

	var created ports.Issue
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		inspection, err := s.repo.GetInspection(txCtx, input.InspectionID)
		if err != nil {
			return err
		}
		if inspection.Status != string(domainaudit.InspectionOpen) {
			return fmt.Errorf("%w: inspection %d is %s",
				domainaudit.ErrInvalidState, inspection.ID, inspection.Status)
		}

		var comment *string
		if caption := strings.TrimSpace(input.Caption); caption != "" {
			comment = &caption
		}

		created, err = s.repo.CreateIssue(txCtx, ports.Issue{
			InspectionID: inspection.ID,
			DepartmentID: inspection.DepartmentID,
			PhotoRef:     input.PhotoRef,
			Comment:      comment,
			Status:       string(domainaudit.IssueOpen),
			CreatedAt:    s.now(),
		})
		return err
	})
	if err != nil {
		return ports.Issue{}, err
	}
	return created, nil
}
