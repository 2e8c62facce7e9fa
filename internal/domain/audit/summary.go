package audit

import "time"

// RemediationWindow is how long staff have to fix issues after a round.
const RemediationWindow = 7 * 24 * time.Hour

// RoundSummary is the broadcast payload emitted when a round completes.
type RoundSummary struct {
	InspectionID  uint64
	Department    string
	IssueCount    int64
	InspectorName string
	Date          time.Time
	RemediateBy   time.Time
}

// RemediateBy computes the deadline for fixing issues found on the given
// inspection date.
func RemediateBy(inspectionDate time.Time) time.Time {
	return inspectionDate.Add(RemediationWindow)
}
