// Package tui is the terminal interface of advisor-chat: a conversation view,
// a multi-line input, a web-resources sidebar and an upload dialog. All state
// changes are delegated to usecase.Conversation; the model only keeps
// presentation state.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"advisor-chat/internal/logging"
	"advisor-chat/internal/usecase"
)

// Options configures New.
type Options struct {
	// Context is passed to every backend call. Defaults to Background.
	Context context.Context
	Logger  *zap.Logger
	// Theme is "dark" or "light".
	Theme string
}

// Model is the bubbletea model for the chat screen.
type Model struct {
	ctx    context.Context
	conv   *usecase.Conversation
	logger *zap.Logger
	styles Styles

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	dialog   uploadDialog

	renderer    *glamour.TermRenderer
	renderWidth int
	rendered    map[string]string

	layout     layout
	ready      bool
	shownCount int
	shownBusy  bool
}

func New(conv *usecase.Conversation, opts Options) (Model, error) {
	if conv == nil {
		return Model{}, errors.New("tui: conversation must not be nil")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.OrNop(opts.Logger)
	styles := NewStyles(ThemeByName(opts.Theme))

	ta := textarea.New()
	ta.Placeholder = "Ask about budgeting, investments, savings, or any financial question..."
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(minInputLines)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, minViewport)

	m := Model{
		ctx:      ctx,
		conv:     conv,
		logger:   logger,
		styles:   styles,
		textarea: ta,
		viewport: vp,
		spinner:  sp,
		dialog:   newUploadDialog(),
		rendered: make(map[string]string),
	}
	m.resize(80, 24)
	m.ready = false
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnableBracketedPaste, tea.SetWindowTitle("AI Financial Advisor"))
}

func (m *Model) busy() bool {
	return m.conv.Querying() || m.dialog.uploading
}

func (m *Model) resize(width, height int) {
	m.layout = computeLayout(width, height, clampInputLines(m.textarea.LineCount()))
	m.textarea.SetWidth(max(m.layout.mainWidth-inputBorder, 1))
	m.viewport.Width = max(m.layout.mainWidth, 1)
	m.viewport.Height = m.layout.viewportHeight
	m.dialog.setWidth(dialogWidth)
	m.ready = true
	m.refreshHistory(true)
}

// fitInput grows or shrinks the textarea with its content.
func (m *Model) fitInput() {
	lines := clampInputLines(m.textarea.LineCount())
	if lines == m.textarea.Height() {
		return
	}
	m.textarea.SetHeight(lines)
	m.layout = computeLayout(m.layout.width, m.layout.height, lines)
	m.viewport.Height = m.layout.viewportHeight
}

// refreshHistory re-renders the conversation and scrolls to the bottom when
// the message count or the loading flag changed since the last render.
func (m *Model) refreshHistory(force bool) {
	msgs := m.conv.Messages()
	busy := m.conv.Querying()
	if !force && len(msgs) == m.shownCount && busy == m.shownBusy {
		return
	}
	m.viewport.SetContent(m.renderHistory(msgs))
	m.viewport.GotoBottom()
	m.shownCount = len(msgs)
	m.shownBusy = busy
}

// markdownRenderer returns a glamour renderer wrapped to width, rebuilding it
// when the width changes. Nil means render plain text.
func (m *Model) markdownRenderer(width int) *glamour.TermRenderer {
	if m.renderer != nil && m.renderWidth == width {
		return m.renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(m.styles.Theme.Name),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.logger.Warn("markdown renderer unavailable", zap.Error(err))
		r = nil
	}
	m.renderer = r
	m.renderWidth = width
	clear(m.rendered)
	return r
}
