package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"roundcheck/internal/bootstrap/logging"
	domainaudit "roundcheck/internal/domain/audit"
	"roundcheck/internal/errs"
	"roundcheck/internal/ports"
	"roundcheck/internal/usecase/audit"
)

func (e *Engine) handleFixIssues(ctx context.Context, event ports.Event) {
	if _, err := e.svc.EnsureUser(ctx, event.UserChatID, event.UserName); err != nil {
		logging.Error(ctx, "register user failed", slog.Any("err", errs.Loggable(err)))
		e.send(ctx, event.UserChatID, msgSessionReset)
		return
	}

	e.sessions.replace(event.UserChatID, &session{Flow: FlowNone})
	departments, err := e.svc.Departments(ctx)
	if err != nil {
		logging.Error(ctx, "list departments failed", slog.Any("err", errs.Loggable(err)))
		e.send(ctx, event.UserChatID, msgSessionReset)
		return
	}

	e.send(ctx, event.UserChatID, msgChooseFixDept,
		departmentButtons(ports.ActionFixDepartment, departments)...)
}

// handleFixDepartment lists the department's open and pending issues, each
// with its photo and a select control, and moves the session into the
// issue-selecting step.
func (e *Engine) handleFixDepartment(ctx context.Context, event ports.Event, departmentID uint64) {
	listing, err := e.svc.ListRemediableIssues(ctx, departmentID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			e.send(ctx, event.UserChatID, msgSessionReset)
			return
		}
		logging.Error(ctx, "list issues failed", slog.Any("err", errs.Loggable(err)))
		e.send(ctx, event.UserChatID, msgSessionReset)
		return
	}

	if len(listing.Issues) == 0 {
		e.send(ctx, event.UserChatID, noOpenIssues(listing.Department.Name))
		return
	}

	e.sessions.replace(event.UserChatID, &session{Flow: FlowFixing})

	e.send(ctx, event.UserChatID, openIssuesHeader(listing.Department.Name))
	for _, issue := range listing.Issues {
		card := issueCard(issue)
		if issue.PhotoRef != "" {
			if ref := e.sendPhoto(ctx, event.UserChatID, issue.PhotoRef, card, selectIssueButton(issue.ID)); ref != 0 {
				continue
			}
			// Photo may have expired at the transport; fall back to text.
			card += "\n(photo unavailable)"
		}
		e.send(ctx, event.UserChatID, card, selectIssueButton(issue.ID))
	}
}

// handleSelectIssue narrows the fix session to one issue and prompts for
// evidence. The first qualifying event afterwards resolves the fix.
func (e *Engine) handleSelectIssue(ctx context.Context, event ports.Event, issueID uint64) {
	promptRef := e.send(ctx, event.UserChatID, fixPrompt(issueID))

	e.sessions.replace(event.UserChatID, &session{
		Flow:       FlowFixing,
		FixIssueID: issueID,
		Cleanup:    []int64{event.MessageRef, promptRef},
	})
}

// fixPhoto handles a photo inside the fix flow. With a caption it resolves
// the fix outright; without one the session waits for the comment text,
// mirroring the inspection-side convergence.
func (e *Engine) fixPhoto(ctx context.Context, event ports.Event, sess *session) {
	if sess.FixIssueID == 0 {
		return
	}

	caption := strings.TrimSpace(event.Caption)
	if caption == "" {
		sess.FixPhotoRef = event.PhotoRef
		noticeRef := e.send(ctx, event.UserChatID, fixPhotoAwaitingComment(sess.FixIssueID))
		sess.Cleanup = append(sess.Cleanup, event.MessageRef, noticeRef)
		return
	}

	photo := event.PhotoRef
	e.submitFix(ctx, event, sess, &photo, &caption)
}

// fixText handles a plain text inside the fix flow: either the comment for
// a photo sent earlier without a caption, or a comment-only fix.
func (e *Engine) fixText(ctx context.Context, event ports.Event, sess *session) {
	comment := event.Text

	var photo *string
	if sess.FixPhotoRef != "" {
		photoRef := sess.FixPhotoRef
		photo = &photoRef
	}

	e.submitFix(ctx, event, sess, photo, &comment)
}

func (e *Engine) submitFix(ctx context.Context, event ports.Event, sess *session, photo, comment *string) {
	submission, err := e.svc.SubmitFix(ctx, audit.SubmitFixInput{
		IssueID:         sess.FixIssueID,
		PhotoRef:        photo,
		Comment:         comment,
		SubmitterChatID: event.UserChatID,
		SubmitterName:   event.UserName,
	})
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			// Deleted by retention while the user was typing.
			e.resetSession(ctx, event.UserChatID, msgIssueGone)
			return
		}
		if errors.Is(err, domainaudit.ErrEvidenceRequired) {
			// Blank text; keep waiting for real evidence.
			noticeRef := e.send(ctx, event.UserChatID, msgEvidenceRequired)
			sess.Cleanup = append(sess.Cleanup, event.MessageRef, noticeRef)
			return
		}
		if errors.Is(err, domainaudit.ErrInvalidState) {
			e.resetSession(ctx, event.UserChatID, msgIssueGone)
			return
		}
		logging.Error(ctx, "submit fix failed", slog.Any("err", errs.Loggable(err)))
		e.resetSession(ctx, event.UserChatID, msgSessionReset)
		return
	}

	cleanup := append(sess.Cleanup, event.MessageRef)
	e.deleteMessages(ctx, event.UserChatID, cleanup)
	e.sessions.clear(event.UserChatID)

	e.send(ctx, event.UserChatID, fixSubmitted(submission.IssueID))
	e.dispatcher.FixSubmitted(ctx, submission)
}
