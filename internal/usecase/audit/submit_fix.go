package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainaudit "roundcheck/internal/domain/audit"
	"roundcheck/internal/ports"
)

// FixSubmission carries everything the dispatcher needs to show an admin
// both sides of the evidence without cross-referencing history.
type FixSubmission struct {
	IssueID         uint64
	DepartmentName  string
	OriginalPhoto   string
	OriginalComment string
	FixPhoto        *string
	FixComment      *string
	SubmitterChatID int64
	SubmitterName   string
}

// SubmitFix attaches remediation evidence and moves the issue to pending.
// Photo-only, comment-only and photo-with-comment submissions all go
// through here; at least one evidence kind is required. A re-submission
// after an admin return replaces whatever evidence was recorded before.
func (s *Service) SubmitFix(ctx context.Context, input SubmitFixInput) (FixSubmission, error) {
	if ctx == nil {
		return FixSubmission{}, errors.New("context is required")
	}
	if err := s.ready(); err != nil {
		return FixSubmission{}, err
	}

	photo := trimPtr(input.PhotoRef)
	comment := trimPtr(input.Comment)
	if photo == nil && comment == nil {
		return FixSubmission{}, domainaudit.ErrEvidenceRequired
	}

	var result FixSubmission
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		issue, err := s.repo.GetIssue(txCtx, input.IssueID)
		if err != nil {
			return err
		}

		status, err := domainaudit.ParseIssueStatus(issue.Status)
		if err != nil {
			return err
		}
		if !status.CanSubmitFix() {
			return fmt.Errorf("%w: issue %d is %s", domainaudit.ErrInvalidState, issue.ID, issue.Status)
		}

		now := s.now()
		fixedBy := input.SubmitterChatID
		if err := s.repo.ApplyIssueFix(txCtx, issue.ID, ports.IssueFixUpdate{
			Status:        string(domainaudit.IssuePending),
			FixPhotoRef:   photo,
			FixedAt:       &now,
			FixedByChatID: &fixedBy,
		}); err != nil {
			return err
		}

		deptName := unknownDepartmentName(issue.DepartmentID)
		if dept, err := s.repo.GetDepartment(txCtx, issue.DepartmentID); err == nil {
			deptName = dept.Name
		}

		originalComment := ""
		if issue.Comment != nil {
			originalComment = *issue.Comment
		}

		result = FixSubmission{
			IssueID:         issue.ID,
			DepartmentName:  deptName,
			OriginalPhoto:   issue.PhotoRef,
			OriginalComment: originalComment,
			FixPhoto:        photo,
			FixComment:      comment,
			SubmitterChatID: input.SubmitterChatID,
			SubmitterName:   input.SubmitterName,
		}
		return nil
	})
	if err != nil {
		return FixSubmission{}, err
	}
	return result, nil
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
