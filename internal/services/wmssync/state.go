package wmssync

import (
	"context"

	"github.com/looplab/fsm"
)

// Outbound Push states.
const (
	stateUnsent = "unsent"
	stateSent   = "sent"
	eventSend   = "send"
)

// Return line states.
const (
	stateUnprocessed = "unprocessed"
	stateReturned    = "returned"
	eventReturn      = "return"
)

// newPushMachine starts in unsent unless the picking already has a remote id.
// onSent runs when the send event completes.
func newPushMachine(remoteOrderID string, onSent func(ctx context.Context, e *fsm.Event)) *fsm.FSM {
	initial := stateUnsent
	if remoteOrderID != "" {
		initial = stateSent
	}
	return fsm.NewFSM(
		initial,
		fsm.Events{
			{Name: eventSend, Src: []string{stateUnsent}, Dst: stateSent},
		},
		fsm.Callbacks{
			"enter_" + stateSent: onSent,
		},
	)
}

// newReturnLineMachine starts in returned when the ledger already holds the line.
func newReturnLineMachine(processed bool) *fsm.FSM {
	initial := stateUnprocessed
	if processed {
		initial = stateReturned
	}
	return fsm.NewFSM(
		initial,
		fsm.Events{
			{Name: eventReturn, Src: []string{stateUnprocessed}, Dst: stateReturned},
		},
		fsm.Callbacks{},
	)
}
