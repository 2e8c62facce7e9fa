package notify

import (
	"fmt"

	domainaudit "roundcheck/internal/domain/audit"
	"roundcheck/internal/usecase/audit"
)

const dateLayout = "02.01.2006"

const noCommentPlaceholder = "(no comment)"

func beforeFixCaption(sub audit.FixSubmission) string {
	comment := sub.OriginalComment
	if comment == "" {
		comment = noCommentPlaceholder
	}
	return fmt.Sprintf("Before the fix. Issue #%d, department %q.\n%s",
		sub.IssueID, sub.DepartmentName, comment)
}

func afterFixCaption(sub audit.FixSubmission) string {
	comment := noCommentPlaceholder
	if sub.FixComment != nil {
		comment = *sub.FixComment
	}

	body := fmt.Sprintf("After the fix for issue #%d, department %q.\nFixed by: %s\n\nFix comment: %s",
		sub.IssueID, sub.DepartmentName, sub.SubmitterName, comment)
	if sub.FixPhoto == nil {
		body += "\nFix photo: (not attached)"
	}
	return body
}

func returnedNotice(ret audit.ReturnedIssue) string {
	comment := ret.Comment
	if comment == "" {
		comment = noCommentPlaceholder
	}
	return fmt.Sprintf("Your fix for issue #%d was returned to work.\nDepartment: %s\nIssue: %s\n\nPlease check again and submit a new fix.",
		ret.IssueID, ret.DepartmentName, comment)
}

func roundSummaryBody(summary domainaudit.RoundSummary) string {
	return fmt.Sprintf("Inspection round completed\nDepartment: %s\nIssues: %d\nInspector: %s\nAudit date: %s\nFix by: %s",
		summary.Department,
		summary.IssueCount,
		summary.InspectorName,
		summary.Date.Format(dateLayout),
		summary.RemediateBy.Format(dateLayout),
	)
}
