package conversation

import (
	"fmt"

	domainaudit "roundcheck/internal/domain/audit"
	"roundcheck/internal/ports"
	"roundcheck/internal/usecase/audit"
)

const (
	msgChooseMenu        = "Pick an action"
	msgForbidden         = "You don't have permission for this operation."
	msgStartOnlyAdmins   = "Only administrators can start inspection rounds right now.\nIf your department needs a round, ask your administrator."
	msgChooseInspectDept = "Pick the department you are inspecting:"
	msgChooseFixDept     = "Pick the department you are fixing issues in:"
	msgNoActiveRound     = "You have no active inspection round."
	msgRoundFinished     = "Round finished. Everything is saved."
	msgActionCancelled   = "Action cancelled."
	msgAlreadyProcessed  = "This issue has already been processed."
	msgIssueApproved     = "Issue closed."
	msgIssueReturned     = "Issue returned to work."
	msgCommentSaved      = "Comment saved. Send the next photo or finish the round."
	msgCommentBindFailed = "Couldn't bind the comment to the issue, please try again."
	msgEvidenceRequired  = "That doesn't count as a fix. Send a photo or a short comment."
	msgIssueGone         = "Couldn't find that issue. Start again from the fix menu."
	msgSessionReset      = "Something went wrong with the current step. Start again from the menu."
	msgAlreadyInspecting = "You already have an open inspection round. Finish it before starting a new one."
)

func roundIntro(departmentName string) string {
	return fmt.Sprintf("Inspection round for department %q.\n\n"+
		"1. Photograph a violation\n"+
		"2. Then send a short text comment.\n"+
		"Repeat for every issue.\n\n"+
		"When you are done, press \"Finish round\".", departmentName)
}

func issueSavedWithComment(issueID uint64) string {
	return fmt.Sprintf("Issue #%d saved. Send the next photo or finish the round.", issueID)
}

func issueAwaitingComment(issueID uint64) string {
	return fmt.Sprintf("Issue #%d, photo saved. Now send a text: what is wrong here?", issueID)
}

func fixPrompt(issueID uint64) string {
	return fmt.Sprintf("Fix for issue #%d.\nSend any of:\n1. a photo\n2. a comment\n3. a photo with the comment as caption", issueID)
}

func fixPhotoAwaitingComment(issueID uint64) string {
	return fmt.Sprintf("Photo for issue #%d received. Now send a short comment.", issueID)
}

func fixSubmitted(issueID uint64) string {
	return fmt.Sprintf("Issue #%d went off for review. Thanks!", issueID)
}

func noOpenIssues(departmentName string) string {
	return fmt.Sprintf("No open issues for department %q.", departmentName)
}

func openIssuesHeader(departmentName string) string {
	return fmt.Sprintf("Open issues for department %q:", departmentName)
}

func issueCard(issue ports.Issue) string {
	comment := "(no comment)"
	if issue.Comment != nil {
		comment = *issue.Comment
	}
	status := domainaudit.IssueStatus(issue.Status).Label()
	return fmt.Sprintf("#%d\n%s\nStatus: %s", issue.ID, comment, status)
}

func historyReport(stats audit.HistoryStats) string {
	header := "Overall statistics"
	footer := "\n\nPick a department below to see its details."
	if stats.DepartmentName != "" {
		header = stats.DepartmentName
		footer = ""
	}

	return fmt.Sprintf("%s\nRounds: %d\nCompleted: %d\nActive: %d\n\nIssues: %d\nIn work: %d\nClosed: %d%s",
		header,
		stats.Inspections.Total,
		stats.Inspections.Completed,
		stats.ActiveInspections(),
		stats.Issues.Total,
		stats.Issues.InWork,
		stats.Issues.Fixed,
		footer,
	)
}

func clearHistoryReport(period ports.ClearPeriod, result audit.PurgeResult) string {
	periodText := "all time"
	switch period {
	case ports.ClearLast7Days:
		periodText = "last 7 days"
	case ports.ClearLast30Days:
		periodText = "last 30 days"
	}
	return fmt.Sprintf("History cleared.\nPeriod: %s.\nRounds removed: %d\nIssues removed: %d",
		periodText, result.Inspections, result.Issues)
}

// --- keyboards ---

func mainMenuButtons(isAdmin bool) []ports.Button {
	if !isAdmin {
		return []ports.Button{
			{Label: "FIX ISSUES", Action: ports.Action{Kind: ports.ActionFixIssues}},
		}
	}
	return []ports.Button{
		{Label: "DO A ROUND", Action: ports.Action{Kind: ports.ActionStartInspection}},
		{Label: "ROUND HISTORY", Action: ports.Action{Kind: ports.ActionShowHistory}},
		{Label: "CLEAR HISTORY", Action: ports.Action{Kind: ports.ActionClearHistory}},
		{Label: "FIX ISSUES", Action: ports.Action{Kind: ports.ActionFixIssues}},
	}
}

func roundMenuButtons() []ports.Button {
	return []ports.Button{
		{Label: "Finish round", Action: ports.Action{Kind: ports.ActionFinishInspection}},
		{Label: "Back", Action: ports.Action{Kind: ports.ActionCancel}},
	}
}

func departmentButtons(kind ports.ActionKind, departments []ports.Department) []ports.Button {
	buttons := make([]ports.Button, 0, len(departments))
	for _, dept := range departments {
		buttons = append(buttons, ports.Button{
			Label:  dept.Name,
			Action: ports.Action{Kind: kind, TargetID: dept.ID},
		})
	}
	return buttons
}

func selectIssueButton(issueID uint64) ports.Button {
	return ports.Button{
		Label:  "Fixed",
		Action: ports.Action{Kind: ports.ActionSelectIssue, TargetID: issueID},
	}
}

func clearPeriodButtons() []ports.Button {
	return []ports.Button{
		{Label: "Last 7 days", Action: ports.Action{Kind: ports.ActionClearHistoryPeriod, Period: ports.ClearLast7Days}},
		{Label: "Last 30 days", Action: ports.Action{Kind: ports.ActionClearHistoryPeriod, Period: ports.ClearLast30Days}},
		{Label: "All time", Action: ports.Action{Kind: ports.ActionClearHistoryPeriod, Period: ports.ClearAll}},
	}
}
