package main

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"voxpense/expense"
	"voxpense/recorder"
)

// teaSink forwards recorder events into the Bubble Tea program. The
// program is attached after construction because the model needs the
// controller and the controller needs the sink.
type teaSink struct {
	mu sync.Mutex
	p  *tea.Program
}

func (s *teaSink) attach(p *tea.Program) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

func (s *teaSink) send(msg tea.Msg) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (s *teaSink) StateChanged(st recorder.State) { s.send(stateMsg{state: st}) }
func (s *teaSink) DraftReady(d expense.Draft)     { s.send(draftMsg{draft: d}) }
func (s *teaSink) FlowFailed(f recorder.Failure)  { s.send(failureMsg{failure: f}) }
