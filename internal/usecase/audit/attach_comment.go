package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainaudit "roundcheck/internal/domain/audit"
)

// AttachComment binds a follow-up text to an issue logged without a
// caption. Both comment paths (inline caption and follow-up text) converge
// here or in LogIssue on the same stored field.
//
// The guard is deliberately strict: a vanished issue or one that already
// carries a comment is reported to the caller as a typed error so the
// conversation layer can show a notice instead of overwriting anything.
func (s *Service) AttachComment(ctx context.Context, issueID uint64, text string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := s.ready(); err != nil {
		return err
	}

	comment := strings.TrimSpace(text)
	if comment == "" {
		return errors.New("comment text is required")
	}

	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		issue, err := s.repo.GetIssue(txCtx, issueID)
		if err != nil {
			return err
		}
		if issue.Comment != nil {
			return fmt.Errorf("%w: issue %d", domainaudit.ErrCommentAlreadySet, issueID)
		}
		if issue.Status != string(domainaudit.IssueOpen) {
			return fmt.Errorf("%w: issue %d is %s", domainaudit.ErrInvalidState, issueID, issue.Status)
		}

		return s.repo.SetIssueComment(txCtx, issueID, comment)
	})
}
