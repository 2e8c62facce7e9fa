package conversation

import (
	"context"
	"errors"
	"log/slog"

	"roundcheck/internal/bootstrap/logging"
	domainaudit "roundcheck/internal/domain/audit"
	"roundcheck/internal/errs"
	"roundcheck/internal/ports"
	"roundcheck/internal/usecase/audit"
)

func (e *Engine) handleAction(ctx context.Context, event ports.Event) {
	action := event.Action

	switch action.Kind {
	case ports.ActionStart:
		e.handleStart(ctx, event)
	case ports.ActionCancel:
		e.sessions.clear(event.UserChatID)
		e.send(ctx, event.UserChatID, msgActionCancelled, mainMenuButtons(e.isAdmin(event.UserChatID))...)

	case ports.ActionStartInspection:
		e.handleStartInspection(ctx, event)
	case ports.ActionInspectDepartment:
		e.handleInspectDepartment(ctx, event, action.TargetID)
	case ports.ActionFinishInspection:
		e.handleFinishInspection(ctx, event)

	case ports.ActionFixIssues:
		e.handleFixIssues(ctx, event)
	case ports.ActionFixDepartment:
		e.handleFixDepartment(ctx, event, action.TargetID)
	case ports.ActionSelectIssue:
		e.handleSelectIssue(ctx, event, action.TargetID)

	case ports.ActionApproveIssue:
		e.handleApprove(ctx, event, action.TargetID)
	case ports.ActionReturnIssue:
		e.handleReturn(ctx, event, action.TargetID)

	case ports.ActionShowHistory:
		e.handleHistory(ctx, event, nil)
	case ports.ActionHistoryDepartment:
		departmentID := action.TargetID
		e.handleHistory(ctx, event, &departmentID)
	case ports.ActionClearHistory:
		e.handleClearHistoryMenu(ctx, event)
	case ports.ActionClearHistoryPeriod:
		e.handleClearHistory(ctx, event, action.Period)

	default:
		logging.Warn(ctx, "unrecognized action dropped", slog.String("action", string(action.Kind)))
	}
}

// handleStart registers the user, drops any stale session and shows the
// main menu. Old rounds are purged opportunistically, same as the retention
// sweeper would.
func (e *Engine) handleStart(ctx context.Context, event ports.Event) {
	e.sessions.clear(event.UserChatID)

	if _, err := e.svc.EnsureUser(ctx, event.UserChatID, event.UserName); err != nil {
		logging.Error(ctx, "register user failed", slog.Any("err", errs.Loggable(err)))
		e.send(ctx, event.UserChatID, msgSessionReset)
		return
	}

	if e.retention > 0 {
		if _, err := e.svc.PurgeOlderThan(ctx, e.retention); err != nil {
			logging.Warn(ctx, "opportunistic purge failed", slog.Any("err", errs.Loggable(err)))
		}
	}

	e.send(ctx, event.UserChatID, msgChooseMenu, mainMenuButtons(e.isAdmin(event.UserChatID))...)
}

func (e *Engine) handleStartInspection(ctx context.Context, event ports.Event) {
	if !e.isAdmin(event.UserChatID) {
		e.send(ctx, event.UserChatID, msgStartOnlyAdmins, mainMenuButtons(false)...)
		return
	}

	departments, err := e.svc.Departments(ctx)
	if err != nil {
		logging.Error(ctx, "list departments failed", slog.Any("err", errs.Loggable(err)))
		e.send(ctx, event.UserChatID, msgSessionReset)
		return
	}

	e.sessions.replace(event.UserChatID, &session{Flow: FlowNone})
	e.send(ctx, event.UserChatID, msgChooseInspectDept,
		departmentButtons(ports.ActionInspectDepartment, departments)...)
}

func (e *Engine) handleInspectDepartment(ctx context.Context, event ports.Event, departmentID uint64) {
	if !e.isAdmin(event.UserChatID) {
		e.send(ctx, event.UserChatID, msgForbidden)
		return
	}

	if _, err := e.svc.EnsureUser(ctx, event.UserChatID, event.UserName); err != nil {
		logging.Error(ctx, "register user failed", slog.Any("err", errs.Loggable(err)))
		e.send(ctx, event.UserChatID, msgSessionReset)
		return
	}

	started, err := e.svc.StartInspection(ctx, audit.StartInspectionInput{
		DepartmentID:    departmentID,
		InspectorChatID: event.UserChatID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domainaudit.ErrInvalidState):
			e.send(ctx, event.UserChatID, msgAlreadyInspecting)
		case errors.Is(err, ports.ErrNotFound):
			e.send(ctx, event.UserChatID, msgSessionReset)
		default:
			logging.Error(ctx, "start inspection failed", slog.Any("err", errs.Loggable(err)))
			e.send(ctx, event.UserChatID, msgSessionReset)
		}
		return
	}

	e.sessions.replace(event.UserChatID, &session{
		Flow:         FlowInspecting,
		InspectionID: started.Inspection.ID,
		DepartmentID: started.Department.ID,
	})
	e.send(ctx, event.UserChatID, roundIntro(started.Department.Name), roundMenuButtons()...)
}

func (e *Engine) handleFinishInspection(ctx context.Context, event ports.Event) {
	sess := e.sessions.get(event.UserChatID)
	if sess == nil || sess.Flow != FlowInspecting {
		e.send(ctx, event.UserChatID, msgNoActiveRound, mainMenuButtons(e.isAdmin(event.UserChatID))...)
		return
	}

	completed, err := e.svc.CompleteInspection(ctx, sess.InspectionID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			e.resetSession(ctx, event.UserChatID, msgSessionReset)
			return
		}
		logging.Error(ctx, "complete inspection failed", slog.Any("err", errs.Loggable(err)))
		e.resetSession(ctx, event.UserChatID, msgSessionReset)
		return
	}

	if !completed.AlreadyCompleted {
		e.dispatcher.RoundCompleted(ctx, completed.Summary)
	}

	e.sessions.clear(event.UserChatID)
	e.send(ctx, event.UserChatID, msgRoundFinished, mainMenuButtons(e.isAdmin(event.UserChatID))...)
}

func (e *Engine) handleApprove(ctx context.Context, event ports.Event, issueID uint64) {
	if !e.isAdmin(event.UserChatID) {
		e.send(ctx, event.UserChatID, msgForbidden)
		return
	}

	outcome, err := e.svc.ApproveIssue(ctx, issueID)
	if err != nil {
		logging.Error(ctx, "approve issue failed", slog.Any("err", errs.Loggable(err)))
		e.send(ctx, event.UserChatID, msgSessionReset)
		return
	}

	// Drop the review card either way; a stale card is what caused the
	// second admin's press in the first place.
	e.deleteMessages(ctx, event.UserChatID, []int64{event.MessageRef})

	if outcome == audit.ReviewAlreadyProcessed {
		e.send(ctx, event.UserChatID, msgAlreadyProcessed)
		return
	}
	e.send(ctx, event.UserChatID, msgIssueApproved)
}

func (e *Engine) handleReturn(ctx context.Context, event ports.Event, issueID uint64) {
	if !e.isAdmin(event.UserChatID) {
		e.send(ctx, event.UserChatID, msgForbidden)
		return
	}

	returned, err := e.svc.ReturnIssue(ctx, issueID)
	if err != nil {
		logging.Error(ctx, "return issue failed", slog.Any("err", errs.Loggable(err)))
		e.send(ctx, event.UserChatID, msgSessionReset)
		return
	}

	e.deleteMessages(ctx, event.UserChatID, []int64{event.MessageRef})

	if returned.Outcome == audit.ReviewAlreadyProcessed {
		e.send(ctx, event.UserChatID, msgAlreadyProcessed)
		return
	}

	e.send(ctx, event.UserChatID, msgIssueReturned)
	e.dispatcher.FixReturned(ctx, returned)
}

func (e *Engine) handleHistory(ctx context.Context, event ports.Event, departmentID *uint64) {
	if !e.isAdmin(event.UserChatID) {
		e.send(ctx, event.UserChatID, msgForbidden)
		return
	}

	stats, err := e.svc.History(ctx, departmentID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			e.send(ctx, event.UserChatID, msgSessionReset)
			return
		}
		logging.Error(ctx, "history stats failed", slog.Any("err", errs.Loggable(err)))
		e.send(ctx, event.UserChatID, msgSessionReset)
		return
	}

	if departmentID != nil {
		e.send(ctx, event.UserChatID, historyReport(stats))
		return
	}

	departments, err := e.svc.Departments(ctx)
	if err != nil {
		logging.Error(ctx, "list departments failed", slog.Any("err", errs.Loggable(err)))
		e.send(ctx, event.UserChatID, historyReport(stats))
		return
	}
	e.send(ctx, event.UserChatID, historyReport(stats),
		departmentButtons(ports.ActionHistoryDepartment, departments)...)
}

func (e *Engine) handleClearHistoryMenu(ctx context.Context, event ports.Event) {
	if !e.isAdmin(event.UserChatID) {
		e.send(ctx, event.UserChatID, msgForbidden)
		return
	}

	e.send(ctx, event.UserChatID,
		"Pick the period to clear round history and related issues for:",
		clearPeriodButtons()...)
}

func (e *Engine) handleClearHistory(ctx context.Context, event ports.Event, period ports.ClearPeriod) {
	if !e.isAdmin(event.UserChatID) {
		e.send(ctx, event.UserChatID, msgForbidden)
		return
	}

	result, err := e.svc.ClearHistory(ctx, period)
	if err != nil {
		logging.Error(ctx, "clear history failed", slog.Any("err", errs.Loggable(err)))
		e.send(ctx, event.UserChatID, msgSessionReset)
		return
	}

	if result.Inspections == 0 {
		e.send(ctx, event.UserChatID, "No rounds found for that period.")
		return
	}
	e.send(ctx, event.UserChatID, clearHistoryReport(period, result))
}
