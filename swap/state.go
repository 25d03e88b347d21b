package swap

import "fmt"

// State tracks the lifecycle of one swap request.
type State string

const (
	StateValidated  State = "VALIDATED"
	StateQuoted     State = "QUOTED"
	StateDispatched State = "DISPATCHED"
	StateSettled    State = "SETTLED"
	StateRejected   State = "REJECTED"
)

type stateTransition struct {
	From State
	To   State
}

// StateMachine enforces the legal swap lifecycle: Validated -> Quoted ->
// Dispatched -> Settled, with any non-final state able to fall to Rejected.
type StateMachine struct {
	transitions map[stateTransition]bool
}

func NewStateMachine() *StateMachine {
	sm := &StateMachine{transitions: make(map[stateTransition]bool)}
	legal := []stateTransition{
		{StateValidated, StateQuoted},
		{StateQuoted, StateDispatched},
		{StateDispatched, StateSettled},

		{StateValidated, StateRejected},
		{StateQuoted, StateRejected},
		{StateDispatched, StateRejected},
	}
	for _, t := range legal {
		sm.transitions[t] = true
	}
	return sm
}

// ValidateTransition reports whether from -> to is a legal lifecycle step.
// Repeating the current state is allowed for idempotency.
func (sm *StateMachine) ValidateTransition(from, to State) error {
	if from == to {
		return nil
	}
	if !sm.transitions[stateTransition{From: from, To: to}] {
		return fmt.Errorf("illegal swap transition: %s -> %s", from, to)
	}
	return nil
}

// IsFinal reports whether the state terminates the swap.
func (sm *StateMachine) IsFinal(s State) bool {
	return s == StateSettled || s == StateRejected
}
