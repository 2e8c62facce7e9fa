package audit

import "fmt"

// IssueStatus is the remediation state of a logged issue.
//
// The cycle is open -> pending -> fixed, with an admin "return" sending a
// pending issue back to open. fixed is terminal.
type IssueStatus string

const (
	IssueOpen    IssueStatus = "open"
	IssuePending IssueStatus = "pending"
	IssueFixed   IssueStatus = "fixed"
)

func ParseIssueStatus(raw string) (IssueStatus, error) {
	switch IssueStatus(raw) {
	case IssueOpen, IssuePending, IssueFixed:
		return IssueStatus(raw), nil
	default:
		return "", fmt.Errorf("%w: issue status %q", ErrInvalidState, raw)
	}
}

// AwaitsRemediation reports whether the issue should show up in the
// per-department fix listing.
func (s IssueStatus) AwaitsRemediation() bool {
	return s == IssueOpen || s == IssuePending
}

// CanSubmitFix reports whether remediation evidence may be attached.
// Re-submitting on a pending issue replaces the previous evidence.
func (s IssueStatus) CanSubmitFix() bool {
	return s == IssueOpen || s == IssuePending
}

// CanReview reports whether an admin approve/return applies. Anything else
// means a concurrent admin already resolved the issue.
func (s IssueStatus) CanReview() bool {
	return s == IssuePending
}

// Label is the human wording used in chat messages.
func (s IssueStatus) Label() string {
	switch s {
	case IssueOpen:
		return "open"
	case IssuePending:
		return "awaiting review"
	case IssueFixed:
		return "fixed"
	default:
		return string(s)
	}
}

// InspectionStatus is the lifecycle state of one inspection round.
type InspectionStatus string

const (
	InspectionOpen      InspectionStatus = "open"
	InspectionCompleted InspectionStatus = "completed"
)

func (s InspectionStatus) IsOpen() bool { return s == InspectionOpen }
