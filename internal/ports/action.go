package ports

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ActionKind tags a recognized menu command or button press.
type ActionKind string

const (
	ActionStart            ActionKind = "start"
	ActionStartInspection  ActionKind = "start-inspection"
	ActionFinishInspection ActionKind = "finish-inspection"
	ActionCancel           ActionKind = "cancel"
	ActionFixIssues        ActionKind = "fix-issues"
	ActionShowHistory      ActionKind = "history"
	ActionClearHistory     ActionKind = "clear-history"

	// Parameterized kinds; TargetID or Period carries the argument.
	ActionInspectDepartment  ActionKind = "inspect-department"
	ActionFixDepartment      ActionKind = "fix-department"
	ActionHistoryDepartment  ActionKind = "history-department"
	ActionSelectIssue        ActionKind = "select-issue"
	ActionApproveIssue       ActionKind = "admin-approve"
	ActionReturnIssue        ActionKind = "admin-return"
	ActionClearHistoryPeriod ActionKind = "clear-history-period"
)

// ClearPeriod selects how much history a bulk clear removes.
type ClearPeriod string

const (
	ClearLast7Days  ClearPeriod = "7"
	ClearLast30Days ClearPeriod = "30"
	ClearAll        ClearPeriod = "all"
)

var ErrUnknownAction = errors.New("unknown action")

// Action is the tagged form of a button press or menu command.
type Action struct {
	Kind     ActionKind
	TargetID uint64
	Period   ClearPeriod
}

// Encode renders the wire form used in button callback data, e.g.
// "select-issue:42" or "clear-history:7".
func (a Action) Encode() string {
	switch a.Kind {
	case ActionInspectDepartment, ActionFixDepartment, ActionHistoryDepartment,
		ActionSelectIssue, ActionApproveIssue, ActionReturnIssue:
		return fmt.Sprintf("%s:%d", a.Kind, a.TargetID)
	case ActionClearHistoryPeriod:
		return fmt.Sprintf("%s:%s", ActionClearHistory, a.Period)
	default:
		return string(a.Kind)
	}
}

// ParseAction decodes the wire form back into a tagged Action.
func ParseAction(raw string) (Action, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Action{}, fmt.Errorf("%w: empty", ErrUnknownAction)
	}

	kind, arg, hasArg := strings.Cut(trimmed, ":")

	switch ActionKind(kind) {
	case ActionStart, ActionStartInspection, ActionFinishInspection,
		ActionCancel, ActionFixIssues, ActionShowHistory:
		if hasArg {
			return Action{}, fmt.Errorf("%w: %q takes no argument", ErrUnknownAction, kind)
		}
		return Action{Kind: ActionKind(kind)}, nil

	case ActionClearHistory:
		if !hasArg {
			return Action{Kind: ActionClearHistory}, nil
		}
		switch ClearPeriod(arg) {
		case ClearLast7Days, ClearLast30Days, ClearAll:
			return Action{Kind: ActionClearHistoryPeriod, Period: ClearPeriod(arg)}, nil
		default:
			return Action{}, fmt.Errorf("%w: clear-history period %q", ErrUnknownAction, arg)
		}

	case ActionInspectDepartment, ActionFixDepartment, ActionHistoryDepartment,
		ActionSelectIssue, ActionApproveIssue, ActionReturnIssue:
		if !hasArg {
			return Action{}, fmt.Errorf("%w: %q needs an id", ErrUnknownAction, kind)
		}
		id, err := strconv.ParseUint(arg, 10, 64)
		if err != nil || id == 0 {
			return Action{}, fmt.Errorf("%w: bad id %q for %q", ErrUnknownAction, arg, kind)
		}
		return Action{Kind: ActionKind(kind), TargetID: id}, nil

	default:
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, kind)
	}
}
