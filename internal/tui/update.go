package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"advisor-chat/internal/domain"
	"advisor-chat/internal/usecase"
)

// queryDoneMsg carries the backend answer for a turn back to the UI thread.
type queryDoneMsg struct {
	turn usecase.Turn
	resp domain.QueryResponse
	err  error
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case queryDoneMsg:
		out := m.conv.Settle(msg.turn, msg.resp, msg.err)
		if out.Err != nil {
			m.logger.Debug("turn settled with error", zap.String("code", string(usecase.CodeOf(out.Err))))
		}
		m.textarea.Focus()
		m.refreshHistory(false)
		return m, nil

	case uploadDoneMsg:
		return m.handleUploadDone(msg)

	case closeDialogMsg:
		if m.dialog.open && msg.gen == m.dialog.gen {
			m.dialog.close()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.dialog.open {
		return m.handleDialogKey(msg)
	}

	switch msg.Type {
	case tea.KeyCtrlU:
		m.dialog.show()
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyEnter:
		if !msg.Alt {
			return m.submit()
		}
	}

	// The input is disabled while a query is pending.
	if m.conv.Querying() {
		return m, nil
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.fitInput()
	return m, cmd
}

// submit starts a turn with the current input. Plain Enter only sends when the
// input is not blank and no query is in flight; otherwise it is a no-op.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.textarea.Value()
	if !m.conv.CanSubmit(text) {
		return m, nil
	}
	turn, err := m.conv.Begin(text)
	if err != nil {
		m.logger.Debug("send rejected", zap.Error(err))
		return m, nil
	}

	m.textarea.Reset()
	m.textarea.Blur()
	m.fitInput()
	m.refreshHistory(false)
	return m, tea.Batch(m.submitQuery(turn), m.spinner.Tick)
}

func (m Model) submitQuery(turn usecase.Turn) tea.Cmd {
	ctx, conv := m.ctx, m.conv
	return func() tea.Msg {
		resp, err := conv.Submit(ctx, turn)
		return queryDoneMsg{turn: turn, resp: resp, err: err}
	}
}
