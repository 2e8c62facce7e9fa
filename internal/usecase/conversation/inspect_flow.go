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

// handlePhoto routes an inbound photo by flow. No session means idle, and
// idle photos are ignored.
func (e *Engine) handlePhoto(ctx context.Context, event ports.Event) {
	sess := e.sessions.get(event.UserChatID)
	if sess == nil {
		return
	}

	switch sess.Flow {
	case FlowInspecting:
		e.inspectionPhoto(ctx, event, sess)
	case FlowFixing:
		e.fixPhoto(ctx, event, sess)
	}
}

// handleText routes an inbound plain text by flow and sub-state. Menu
// commands never reach here; the transport resolves them into actions.
func (e *Engine) handleText(ctx context.Context, event ports.Event) {
	sess := e.sessions.get(event.UserChatID)
	if sess == nil {
		return
	}

	switch {
	case sess.Flow == FlowInspecting && sess.AwaitingCommentIssueID != 0:
		e.inspectionComment(ctx, event, sess)
	case sess.Flow == FlowFixing && sess.FixIssueID != 0:
		e.fixText(ctx, event, sess)
	}
}

// inspectionPhoto logs a new issue. A caption attaches the comment
// immediately; without one the session waits for the follow-up text, and
// both paths converge on the same stored comment.
func (e *Engine) inspectionPhoto(ctx context.Context, event ports.Event, sess *session) {
	issue, err := e.svc.LogIssue(ctx, audit.LogIssueInput{
		InspectionID: sess.InspectionID,
		PhotoRef:     event.PhotoRef,
		Caption:      event.Caption,
	})
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) || errors.Is(err, domainaudit.ErrInvalidState) {
			// The round vanished under us (retention or concurrent finish).
			e.resetSession(ctx, event.UserChatID, msgSessionReset)
			return
		}
		logging.Error(ctx, "log issue failed", slog.Any("err", errs.Loggable(err)))
		e.resetSession(ctx, event.UserChatID, msgSessionReset)
		return
	}

	// A new photo supersedes an issue still awaiting its comment; its stale
	// prompts get cleaned up here.
	if len(sess.Cleanup) > 0 {
		e.deleteMessages(ctx, event.UserChatID, sess.Cleanup)
		sess.Cleanup = nil
	}

	if strings.TrimSpace(event.Caption) != "" {
		e.deleteMessages(ctx, event.UserChatID, []int64{event.MessageRef})
		sess.AwaitingCommentIssueID = 0
		e.send(ctx, event.UserChatID, issueSavedWithComment(issue.ID))
		return
	}

	noticeRef := e.send(ctx, event.UserChatID, issueAwaitingComment(issue.ID))
	sess.AwaitingCommentIssueID = issue.ID
	sess.Cleanup = []int64{event.MessageRef, noticeRef}
}

// inspectionComment binds a follow-up text to the issue that is still
// waiting for one.
func (e *Engine) inspectionComment(ctx context.Context, event ports.Event, sess *session) {
	issueID := sess.AwaitingCommentIssueID

	if err := e.svc.AttachComment(ctx, issueID, event.Text); err != nil {
		sess.AwaitingCommentIssueID = 0
		sess.Cleanup = nil
		if errors.Is(err, ports.ErrNotFound) ||
			errors.Is(err, domainaudit.ErrCommentAlreadySet) ||
			errors.Is(err, domainaudit.ErrInvalidState) {
			e.send(ctx, event.UserChatID, msgCommentBindFailed)
			return
		}
		logging.Error(ctx, "attach comment failed", slog.Any("err", errs.Loggable(err)))
		e.send(ctx, event.UserChatID, msgCommentBindFailed)
		return
	}

	cleanup := append(sess.Cleanup, event.MessageRef)
	e.deleteMessages(ctx, event.UserChatID, cleanup)

	sess.AwaitingCommentIssueID = 0
	sess.Cleanup = nil
	e.send(ctx, event.UserChatID, msgCommentSaved)
}
