// Package suggestion models the review lifecycle of an edit suggestion.
package suggestion

import (
	"fmt"
	"strings"
)

// State is a suggestion's position in the review workflow.
type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateRejected State = "rejected"
	StateAppeal   State = "appeal"
	StateFinal    State = "final"
)

// Action is a moderation verb applied to a suggestion.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionAppeal  Action = "appeal"
	ActionFinal   Action = "final"
)

// Next returns the state reached by applying action to current.
// Actions that are not valid for the current state leave it unchanged;
// callers that need to distinguish a real transition compare the result
// against the input.
func Next(current State, action Action) State {
	switch current {
	case StatePending:
		if action == ActionApprove {
			return StateApproved
		}
		if action == ActionReject {
			return StateRejected
		}
	case StateRejected:
		if action == ActionAppeal {
			return StateAppeal
		}
	case StateAppeal:
		if action == ActionFinal {
			return StateFinal
		}
	case StateApproved:
		if action == ActionFinal {
			return StateFinal
		}
	}
	return current
}

// ParseState validates a stored state value.
func ParseState(raw string) (State, error) {
	switch State(strings.TrimSpace(raw)) {
	case StatePending, StateApproved, StateRejected, StateAppeal, StateFinal:
		return State(strings.TrimSpace(raw)), nil
	}
	return "", fmt.Errorf("unknown suggestion state %q", raw)
}

// ParseAction validates a moderation action value.
func ParseAction(raw string) (Action, error) {
	switch Action(strings.TrimSpace(raw)) {
	case ActionApprove, ActionReject, ActionAppeal, ActionFinal:
		return Action(strings.TrimSpace(raw)), nil
	}
	return "", fmt.Errorf("unknown suggestion action %q", raw)
}

// String returns the raw state value.
func (state State) String() string { return string(state) }

// String returns the raw action value.
func (action Action) String() string { return string(action) }
