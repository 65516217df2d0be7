// Package workflow holds the visit lifecycle state machine and the weight
// capture validation gate. Transitions are a closed table, not string
// comparisons scattered across handlers.
package workflow

import (
	"fmt"

	"harir-backend/internal/models"
)

// Action is a requested lifecycle transition.
type Action string

const (
	ActionCheckIn       Action = "check-in"
	ActionBeginCheckOut Action = "begin-checkout"
	ActionVerifyExit    Action = "verify-exit"
)

// transitions maps current status × action → next status. An absent entry
// means the action is rejected with no state change.
var transitions = map[models.VisitStatus]map[Action]models.VisitStatus{
	models.StatusPreRegistered: {
		ActionCheckIn: models.StatusCheckedIn,
	},
	models.StatusCheckedIn: {
		ActionBeginCheckOut: models.StatusPendingExit,
	},
	models.StatusPendingExit: {
		ActionVerifyExit: models.StatusCheckedOut,
	},
	models.StatusCheckedOut: {
		// Re-check-in: mints a fresh gate entry id, supersedes the old one.
		ActionCheckIn: models.StatusCheckedIn,
	},
}

// Next returns the status reached by applying action from the current
// status, or a descriptive error naming the current status if the action is
// not allowed.
func Next(from models.VisitStatus, action Action) (models.VisitStatus, error) {
	if allowed, ok := transitions[from]; ok {
		if to, ok := allowed[action]; ok {
			return to, nil
		}
	}
	return "", fmt.Errorf("cannot %s while status is %s", action, from)
}

// ActionForTarget maps a requested target status (as sent by the dashboard
// in PUT /api/vehicle-visits) to the lifecycle action it implies.
func ActionForTarget(target models.VisitStatus) (Action, error) {
	switch target {
	case models.StatusCheckedIn:
		return ActionCheckIn, nil
	case models.StatusPendingExit:
		return ActionBeginCheckOut, nil
	case models.StatusCheckedOut:
		return ActionVerifyExit, nil
	}
	return "", fmt.Errorf("no transition targets status %q", string(target))
}

// CanWeigh reports whether a visit is eligible for weight capture: the
// vehicle must be on-site, which means Checked-in and nothing else.
func CanWeigh(status models.VisitStatus) error {
	if status != models.StatusCheckedIn {
		return fmt.Errorf("cannot select for weighing while status is %s", status)
	}
	return nil
}
