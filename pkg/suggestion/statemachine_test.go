package suggestion

import "testing"

func TestNextAppliesValidTransitions(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name    string
		current State
		action  Action
		want    State
	}{
		{name: "pending approve", current: StatePending, action: ActionApprove, want: StateApproved},
		{name: "pending reject", current: StatePending, action: ActionReject, want: StateRejected},
		{name: "rejected appeal", current: StateRejected, action: ActionAppeal, want: StateAppeal},
		{name: "appeal final", current: StateAppeal, action: ActionFinal, want: StateFinal},
		{name: "approved final", current: StateApproved, action: ActionFinal, want: StateFinal},
	}

	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			got := Next(testCase.current, testCase.action)
			if got != testCase.want {
				test.Fatalf("expected %s, got %s", testCase.want, got)
			}
		})
	}
}

func TestNextLeavesStateUnchangedOnInvalidAction(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name    string
		current State
		action  Action
	}{
		{name: "pending appeal", current: StatePending, action: ActionAppeal},
		{name: "pending final", current: StatePending, action: ActionFinal},
		{name: "rejected approve", current: StateRejected, action: ActionApprove},
		{name: "rejected reject", current: StateRejected, action: ActionReject},
		{name: "rejected final", current: StateRejected, action: ActionFinal},
		{name: "approved approve", current: StateApproved, action: ActionApprove},
		{name: "approved reject", current: StateApproved, action: ActionReject},
		{name: "appeal approve", current: StateAppeal, action: ActionApprove},
		{name: "appeal appeal", current: StateAppeal, action: ActionAppeal},
		{name: "final approve", current: StateFinal, action: ActionApprove},
		{name: "final reject", current: StateFinal, action: ActionReject},
		{name: "final appeal", current: StateFinal, action: ActionAppeal},
		{name: "final final", current: StateFinal, action: ActionFinal},
	}

	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			got := Next(testCase.current, testCase.action)
			if got != testCase.current {
				test.Fatalf("expected unchanged %s, got %s", testCase.current, got)
			}
		})
	}
}

func TestParseStateAcceptsKnownValues(test *testing.T) {
	test.Parallel()
	for _, raw := range []string{"pending", "approved", "rejected", "appeal", "final"} {
		state, err := ParseState(raw)
		if err != nil {
			test.Fatalf("parse state %q: %v", raw, err)
		}
		if state.String() != raw {
			test.Fatalf("expected %q, got %q", raw, state.String())
		}
	}
	if _, err := ParseState("archived"); err == nil {
		test.Fatal("expected error for unknown state")
	}
}

func TestParseActionAcceptsKnownValues(test *testing.T) {
	test.Parallel()
	for _, raw := range []string{"approve", "reject", "appeal", "final"} {
		action, err := ParseAction(raw)
		if err != nil {
			test.Fatalf("parse action %q: %v", raw, err)
		}
		if action.String() != raw {
			test.Fatalf("expected %q, got %q", raw, action.String())
		}
	}
	if _, err := ParseAction("escalate"); err == nil {
		test.Fatal("expected error for unknown action")
	}
}

func TestParseTrimsWhitespace(test *testing.T) {
	test.Parallel()
	state, err := ParseState("  pending ")
	if err != nil {
		test.Fatalf("parse state: %v", err)
	}
	if state != StatePending {
		test.Fatalf("expected pending, got %s", state)
	}
	action, err := ParseAction(" approve\n")
	if err != nil {
		test.Fatalf("parse action: %v", err)
	}
	if action != ActionApprove {
		test.Fatalf("expected approve, got %s", action)
	}
}
