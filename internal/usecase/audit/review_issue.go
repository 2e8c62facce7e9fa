package audit

import (
	"context"
	"errors"

	domainaudit "roundcheck/internal/domain/audit"
	"roundcheck/internal/ports"
)

// ReviewOutcome distinguishes an applied review from one that lost a race
// against another admin or a retention purge. The losing side gets a soft
// notice, never an error.
type ReviewOutcome int

const (
	ReviewApplied ReviewOutcome = iota
	ReviewAlreadyProcessed
)

// ReturnedIssue carries what the dispatcher needs to tell the original
// submitter their fix was rejected. SubmitterChatID is nil when no fix was
// ever recorded.
type ReturnedIssue struct {
	Outcome         ReviewOutcome
	IssueID         uint64
	DepartmentName  string
	Comment         string
	SubmitterChatID *int64
}

// ApproveIssue moves a pending issue to fixed. A missing issue or one not
// awaiting review means another admin got there first.
func (s *Service) ApproveIssue(ctx context.Context, issueID uint64) (ReviewOutcome, error) {
	if ctx == nil {
		return ReviewAlreadyProcessed, errors.New("context is required")
	}
	if err := s.ready(); err != nil {
		return ReviewAlreadyProcessed, err
	}

	outcome := ReviewAlreadyProcessed
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		issue, err := s.repo.GetIssue(txCtx, issueID)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return nil
			}
			return err
		}

		status, err := domainaudit.ParseIssueStatus(issue.Status)
		if err != nil {
			return err
		}
		if !status.CanReview() {
			return nil
		}

		if err := s.repo.SetIssueStatus(txCtx, issueID, string(domainaudit.IssueFixed)); err != nil {
			return err
		}
		outcome = ReviewApplied
		return nil
	})
	if err != nil {
		return ReviewAlreadyProcessed, err
	}
	return outcome, nil
}

// ReturnIssue sends a pending issue back to open and clears the recorded
// fix evidence so the next submission starts clean.
func (s *Service) ReturnIssue(ctx context.Context, issueID uint64) (ReturnedIssue, error) {
	if ctx == nil {
		return ReturnedIssue{}, errors.New("context is required")
	}
	if err := s.ready(); err != nil {
		return ReturnedIssue{}, err
	}

	result := ReturnedIssue{Outcome: ReviewAlreadyProcessed, IssueID: issueID}
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		issue, err := s.repo.GetIssue(txCtx, issueID)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return nil
			}
			return err
		}

		status, err := domainaudit.ParseIssueStatus(issue.Status)
		if err != nil {
			return err
		}
		if !status.CanReview() {
			return nil
		}

		if err := s.repo.ApplyIssueFix(txCtx, issueID, ports.IssueFixUpdate{
			Status: string(domainaudit.IssueOpen),
		}); err != nil {
			return err
		}

		deptName := unknownDepartmentName(issue.DepartmentID)
		if dept, err := s.repo.GetDepartment(txCtx, issue.DepartmentID); err == nil {
			deptName = dept.Name
		}

		comment := ""
		if issue.Comment != nil {
			comment = *issue.Comment
		}

		result = ReturnedIssue{
			Outcome:         ReviewApplied,
			IssueID:         issueID,
			DepartmentName:  deptName,
			Comment:         comment,
			SubmitterChatID: issue.FixedByChatID,
		}
		return nil
	})
	if err != nil {
		return ReturnedIssue{}, err
	}
	return result, nil
}
