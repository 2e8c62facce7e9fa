package audit

import (
	"errors"
	"testing"
	"time"
)

func TestParseIssueStatus(t *testing.T) {
	for _, raw := range []string{"open", "pending", "fixed"} {
		status, err := ParseIssueStatus(raw)
		if err != nil {
			t.Errorf("ParseIssueStatus(%q) error = %v", raw, err)
		}
		if string(status) != raw {
			t.Errorf("ParseIssueStatus(%q) = %q", raw, status)
		}
	}

	if _, err := ParseIssueStatus("resolved"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("ParseIssueStatus(resolved) error = %v, want ErrInvalidState", err)
	}
}

func TestIssueStatusTransitions(t *testing.T) {
	tests := []struct {
		status            IssueStatus
		awaitsRemediation bool
		canSubmitFix      bool
		canReview         bool
	}{
		{IssueOpen, true, true, false},
		{IssuePending, true, true, true},
		{IssueFixed, false, false, false},
	}
	for _, tt := range tests {
		if got := tt.status.AwaitsRemediation(); got != tt.awaitsRemediation {
			t.Errorf("%s.AwaitsRemediation() = %v, want %v", tt.status, got, tt.awaitsRemediation)
		}
		if got := tt.status.CanSubmitFix(); got != tt.canSubmitFix {
			t.Errorf("%s.CanSubmitFix() = %v, want %v", tt.status, got, tt.canSubmitFix)
		}
		if got := tt.status.CanReview(); got != tt.canReview {
			t.Errorf("%s.CanReview() = %v, want %v", tt.status, got, tt.canReview)
		}
	}
}

func TestIssueStatusLabel(t *testing.T) {
	if got := IssuePending.Label(); got != "awaiting review" {
		t.Errorf("pending label = %q", got)
	}
	if got := IssueStatus("weird").Label(); got != "weird" {
		t.Errorf("unknown label = %q", got)
	}
}

func TestRemediateBy(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	want := time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)
	if got := RemediateBy(date); !got.Equal(want) {
		t.Errorf("RemediateBy() = %v, want %v", got, want)
	}
}
