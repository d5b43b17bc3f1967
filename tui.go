package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"voxpense/bus"
	"voxpense/confirm"
	"voxpense/expense"
	"voxpense/recorder"
)

type stateMsg struct{ state recorder.State }
type draftMsg struct{ draft expense.Draft }
type failureMsg struct{ failure recorder.Failure }
type savedMsg struct{ saved expense.Saved }
type noticeMsg struct{ text string }
type tickMsg time.Time

const (
	fieldAmount = iota
	fieldMerchant
	fieldCategory
	fieldCount
)

var fieldLabels = [fieldCount]string{"Amount", "Merchant", "Category"}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	recordStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	focusStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	blurStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	quoteStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
)

type model struct {
	ctrl  *recorder.Controller
	store expense.Store
	bus   *bus.Bus

	state    recorder.State
	failure  *recorder.Failure
	editor   *confirm.Editor
	inputs   [fieldCount]string
	focus    int
	notice   string
	recStart time.Time
	elapsed  time.Duration
}

func newModel(ctrl *recorder.Controller, store expense.Store, b *bus.Bus) model {
	return model{ctrl: ctrl, store: store, bus: b, state: recorder.StateIdle}
}

func (m model) Init() tea.Cmd {
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = msg.state
		switch m.state {
		case recorder.StateRecording:
			m.recStart = time.Now()
			m.elapsed = 0
			m.notice = ""
			return m, tick()
		case recorder.StateIdle:
			m.failure = nil
		}
		return m, nil

	case draftMsg:
		m.editor = confirm.NewEditor(msg.draft, m.store, m.bus)
		m.inputs[fieldAmount] = strconv.FormatFloat(msg.draft.Amount, 'f', -1, 64)
		m.inputs[fieldMerchant] = msg.draft.Merchant
		m.inputs[fieldCategory] = msg.draft.Category
		m.focus = fieldAmount
		return m, nil

	case failureMsg:
		f := msg.failure
		m.failure = &f
		return m, nil

	case savedMsg:
		m.editor = nil
		m.ctrl.Resolve()
		m.notice = okStyle.Render(fmt.Sprintf("Saved %s — %s %.2f", msg.saved.ID, msg.saved.Merchant, msg.saved.Amount))
		return m, nil

	case noticeMsg:
		m.notice = errorStyle.Render(msg.text)
		return m, nil

	case tickMsg:
		if m.state == recorder.StateRecording {
			m.elapsed = time.Since(m.recStart)
			return m, tick()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.ctrl.Close()
		return m, tea.Quit
	}

	switch m.state {
	case recorder.StateIdle:
		switch msg.String() {
		case "q":
			m.ctrl.Close()
			return m, tea.Quit
		case "r":
			return m, m.record()
		}

	case recorder.StateRecording:
		switch msg.String() {
		case "s", " ", "enter":
			if err := m.ctrl.Stop(); err != nil {
				m.notice = errorStyle.Render(err.Error())
			}
		}

	case recorder.StatePermissionDenied:
		m.ctrl.Acknowledge()

	case recorder.StateFailed:
		switch msg.String() {
		case "r", "enter":
			m.ctrl.Retry()
		}

	case recorder.StateSucceeded:
		return m.handleEditKey(msg)
	}
	return m, nil
}

func (m model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editor == nil {
		return m, nil
	}
	switch msg.String() {
	case "tab", "down":
		m.focus = (m.focus + 1) % fieldCount
	case "shift+tab", "up":
		m.focus = (m.focus + fieldCount - 1) % fieldCount
	case "esc":
		m.editor.Cancel()
		m.editor = nil
		m.ctrl.Resolve()
		m.notice = hintStyle.Render("Discarded. Press r to record again.")
	case "enter":
		return m, m.confirmDraft()
	case "backspace":
		if in := m.inputs[m.focus]; in != "" {
			m.inputs[m.focus] = in[:len(in)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.inputs[m.focus] += string(msg.Runes)
		}
	}
	return m, nil
}

// record opens the surface and starts capture; gate refusals become an
// upgrade/enable prompt instead of entering the flow.
func (m model) record() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		if err := ctrl.Open(context.Background()); err != nil {
			return noticeMsg{text: gateText(err)}
		}
		if err := ctrl.Record(context.Background()); err != nil {
			if errors.Is(err, recorder.ErrUpgradeRequired) || errors.Is(err, recorder.ErrVoiceDisabled) {
				return noticeMsg{text: gateText(err)}
			}
			return nil // the sink already delivered the failure state
		}
		return nil
	}
}

func (m model) confirmDraft() tea.Cmd {
	editor := m.editor
	inputs := m.inputs
	return func() tea.Msg {
		if err := editor.SetAmount(inputs[fieldAmount]); err != nil {
			return noticeMsg{text: err.Error()}
		}
		editor.SetMerchant(inputs[fieldMerchant])
		editor.SetCategory(inputs[fieldCategory])
		saved, err := editor.Confirm(context.Background())
		if err != nil {
			return noticeMsg{text: err.Error()}
		}
		return savedMsg{saved: saved}
	}
}

func gateText(err error) string {
	switch {
	case errors.Is(err, recorder.ErrVoiceDisabled):
		return "Voice capture is turned off — enable it in preferences."
	default:
		return "Voice capture is a premium feature — upgrade to use it."
	}
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("voxpense — voice expense capture"))
	b.WriteString("\n\n")

	switch m.state {
	case recorder.StateIdle:
		b.WriteString("Press " + focusStyle.Render("r") + " to record an expense, " +
			focusStyle.Render("q") + " to quit.\n")

	case recorder.StateRecording:
		b.WriteString(recordStyle.Render("● recording"))
		b.WriteString(fmt.Sprintf("  %04.1fs\n\n", m.elapsed.Seconds()))
		b.WriteString(hintStyle.Render("Say something like \"10 manat taksi\". Press s to stop.\n"))

	case recorder.StateProcessing:
		b.WriteString("Understanding your expense…\n")

	case recorder.StatePermissionDenied:
		b.WriteString(errorStyle.Render("Microphone access denied.") + "\n")
		b.WriteString(hintStyle.Render("Grant microphone access in system settings, then press any key.\n"))

	case recorder.StateFailed:
		if m.failure != nil {
			b.WriteString(errorStyle.Render(m.failure.Message) + "\n")
		}
		b.WriteString(hintStyle.Render("Press r to retry.\n"))

	case recorder.StateSucceeded:
		m.viewEditor(&b)
	}

	if m.notice != "" {
		b.WriteString("\n" + m.notice + "\n")
	}
	return b.String()
}

func (m model) viewEditor(b *strings.Builder) {
	if m.editor == nil {
		return
	}
	if heard := m.editor.Draft().TranscribedText; heard != "" {
		b.WriteString(quoteStyle.Render("heard: "+heard) + "\n\n")
	}
	for i := 0; i < fieldCount; i++ {
		label := fmt.Sprintf("%-9s", fieldLabels[i])
		line := label + m.inputs[i]
		if i == m.focus {
			b.WriteString(focusStyle.Render("▶ "+line) + "\n")
		} else {
			b.WriteString(blurStyle.Render("  "+line) + "\n")
		}
	}
	b.WriteString("\n" + hintStyle.Render("tab: next field · enter: save · esc: discard") + "\n")
}
