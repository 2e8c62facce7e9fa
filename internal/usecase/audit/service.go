package audit

import (
	"errors"
	"time"

	"roundcheck/internal/ports"
)

// Service owns the inspection and issue lifecycles. Every operation
// re-reads authoritative state inside a transaction; nothing is cached
// across conversation steps.
type Service struct {
	repo ports.AuditRepository
	uow  ports.UnitOfWork
	now  func() time.Time
}

func NewService(repo ports.AuditRepository, uow ports.UnitOfWork) *Service {
	return &Service{
		repo: repo,
		uow:  uow,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) ready() error {
	if s.repo == nil {
		return errors.New("audit repository is required")
	}
	if s.uow == nil {
		return errors.New("audit unit of work is required")
	}
	return nil
}

type StartInspectionInput struct {
	DepartmentID    uint64
	InspectorChatID int64
}

type LogIssueInput struct {
	InspectionID uint64
	PhotoRef     string
	Caption      string
}

type SubmitFixInput struct {
	IssueID         uint64
	PhotoRef        *string
	Comment         *string
	SubmitterChatID int64
	SubmitterName   string
}
