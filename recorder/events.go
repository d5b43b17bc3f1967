package recorder

import "voxpense/expense"

// EventSink abstracts the display layer so the TUI and tests receive the
// same flow events without the controller knowing either.
type EventSink interface {
	StateChanged(s State)
	DraftReady(d expense.Draft)
	FlowFailed(f Failure)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) StateChanged(State)          {}
func (NopSink) DraftReady(expense.Draft)    {}
func (NopSink) FlowFailed(Failure)          {}
