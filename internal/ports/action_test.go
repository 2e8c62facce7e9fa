package ports

import (
	"errors"
	"testing"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		raw  string
		want Action
	}{
		{"start", Action{Kind: ActionStart}},
		{"finish-inspection", Action{Kind: ActionFinishInspection}},
		{"inspect-department:3", Action{Kind: ActionInspectDepartment, TargetID: 3}},
		{"fix-department:12", Action{Kind: ActionFixDepartment, TargetID: 12}},
		{"select-issue:42", Action{Kind: ActionSelectIssue, TargetID: 42}},
		{"admin-approve:7", Action{Kind: ActionApproveIssue, TargetID: 7}},
		{"admin-return:7", Action{Kind: ActionReturnIssue, TargetID: 7}},
		{"clear-history", Action{Kind: ActionClearHistory}},
		{"clear-history:7", Action{Kind: ActionClearHistoryPeriod, Period: ClearLast7Days}},
		{"clear-history:30", Action{Kind: ActionClearHistoryPeriod, Period: ClearLast30Days}},
		{"clear-history:all", Action{Kind: ActionClearHistoryPeriod, Period: ClearAll}},
		{" history ", Action{Kind: ActionShowHistory}},
	}
	for _, tt := range tests {
		got, err := ParseAction(tt.raw)
		if err != nil {
			t.Errorf("ParseAction(%q) error = %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAction(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func TestParseActionRejectsBadInput(t *testing.T) {
	bad := []string{
		"",
		"dance",
		"start:1",
		"select-issue",
		"select-issue:0",
		"select-issue:abc",
		"admin-approve:-1",
		"clear-history:90",
	}
	for _, raw := range bad {
		_, err := ParseAction(raw)
		if err == nil {
			t.Errorf("ParseAction(%q) expected error", raw)
			continue
		}
		if !errors.Is(err, ErrUnknownAction) {
			t.Errorf("ParseAction(%q) error = %v, want ErrUnknownAction", raw, err)
		}
	}
}

func TestActionEncodeRoundTrip(t *testing.T) {
	actions := []Action{
		{Kind: ActionStart},
		{Kind: ActionFixIssues},
		{Kind: ActionInspectDepartment, TargetID: 5},
		{Kind: ActionHistoryDepartment, TargetID: 9},
		{Kind: ActionApproveIssue, TargetID: 100},
		{Kind: ActionClearHistoryPeriod, Period: ClearAll},
	}
	for _, action := range actions {
		parsed, err := ParseAction(action.Encode())
		if err != nil {
			t.Errorf("ParseAction(%q) error = %v", action.Encode(), err)
			continue
		}
		if parsed != action {
			t.Errorf("round trip %q = %+v, want %+v", action.Encode(), parsed, action)
		}
	}
}
