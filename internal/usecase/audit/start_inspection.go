package audit

import (
	"context"
	"errors"
	"fmt"

	domainaudit "roundcheck/internal/domain/audit"
	"roundcheck/internal/errs"
	"roundcheck/internal/ports"
)

// StartedInspection is the result of opening a new round.
type StartedInspection struct {
	Inspection ports.Inspection
	Department ports.Department
}

// StartInspection opens a round for the given department and inspector.
// It rejects with ErrInvalidState when the inspector already has an open
// inspection, so a second device cannot silently orphan the first round.
func (s *Service) StartInspection(ctx context.Context, input StartInspectionInput) (StartedInspection, error) {
	if ctx == nil {
		return StartedInspection{}, errors.New("context is required")
	}
	if err := s.ready(); err != nil {
		return StartedInspection{}, err
	}

	var result StartedInspection
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		dept, err := s.repo.GetDepartment(txCtx, input.DepartmentID)
		if err != nil {
			return err
		}

		inspector, err := s.repo.GetUserByChatID(txCtx, input.InspectorChatID)
		if err != nil {
			return err
		}

		_, err = s.repo.FindOpenInspection(txCtx, inspector.ID)
		if err == nil {
			return fmt.Errorf("%w: inspector %d already has an open inspection",
				domainaudit.ErrInvalidState, inspector.ID)
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return errs.Wrap(err, "check open inspection")
		}

		now := s.now()
		created, err := s.repo.CreateInspection(txCtx, ports.Inspection{
			DepartmentID: dept.ID,
			InspectorID:  inspector.ID,
			Date:         truncateToDay(now),
			Status:       string(domainaudit.InspectionOpen),
			CreatedAt:    now,
		})
		if err != nil {
			return err
		}

		result = StartedInspection{Inspection: created, Department: dept}
		return nil
	})
	if err != nil {
		return StartedInspection{}, err
	}
	return result, nil
}
