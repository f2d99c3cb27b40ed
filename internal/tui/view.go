package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"advisor-chat/internal/domain"
)

var exampleQuestions = []string{
	`💰 "How should I create a monthly budget?"`,
	`📈 "What are the best investment strategies?"`,
	`🏠 "Should I buy a house or keep renting?"`,
	`💳 "How can I pay off my credit card debt?"`,
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.dialog.open {
		return lipgloss.Place(m.layout.width, m.layout.height,
			lipgloss.Center, lipgloss.Center, m.dialogView())
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.statusView(),
		m.inputView(),
		m.footerView(),
	)
	body := main
	if m.layout.sidebarWidth > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, main, m.sidebarView())
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), body)
}

func (m Model) headerView() string {
	s := m.styles
	content := s.Title.Render("AI Financial Advisor") + "\n" +
		s.Subtitle.Render("Your personal finance companion")
	return s.Header.Width(max(m.layout.width, 1)).Render(content)
}

func (m Model) statusView() string {
	switch {
	case m.conv.Querying():
		return " " + m.spinner.View() + m.styles.Muted.Render(" Analyzing your query...")
	case m.dialog.uploading:
		return " " + m.spinner.View() + m.styles.Muted.Render(" Processing document...")
	default:
		return ""
	}
}

func (m Model) inputView() string {
	style := m.styles.Input
	if m.conv.Querying() {
		style = m.styles.InputBusy
	}
	return style.Width(max(m.layout.mainWidth-inputBorder, 1)).Render(m.textarea.View())
}

func (m Model) footerView() string {
	hints := "enter send · alt+enter newline · ctrl+u upload · pgup/pgdn scroll · ctrl+c quit"
	if m.layout.sidebarWidth == 0 {
		if n := len(m.conv.Links()); n > 0 {
			hints = fmt.Sprintf("%d web resources · ", n) + hints
		}
	}
	return m.styles.Footer.MaxWidth(m.layout.mainWidth).Render(hints)
}

func (m Model) sidebarView() string {
	s := m.styles
	width := m.layout.sidebarWidth
	height := max(m.layout.height-headerHeight, 1)

	var b strings.Builder
	b.WriteString(s.Title.Render("Web Resources"))
	b.WriteString("\n\n")

	links := m.conv.Links()
	if len(links) == 0 {
		b.WriteString(s.Muted.Width(max(width-3, 1)).Render("No web resources available for this query"))
	} else {
		cards := make([]string, 0, len(links))
		for _, l := range links {
			card := s.LinkTitle.Render(l.Title) + "\n" + s.LinkHost.Render(l.Host())
			cards = append(cards, s.LinkCard.Width(max(width-5, 1)).Render(card))
		}
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, cards...))
	}

	return s.Sidebar.
		Width(max(width-1, 1)).
		Height(height).
		MaxHeight(height).
		Render(b.String())
}

// renderHistory renders the whole message log, or the welcome block when it
// is empty.
func (m *Model) renderHistory(msgs []domain.Message) string {
	if len(msgs) == 0 {
		return m.welcomeView()
	}

	width := max(m.layout.mainWidth-markdownPadding, 10)
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, m.messageView(msg, width))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) messageView(msg domain.Message, width int) string {
	s := m.styles
	stamp := s.Timestamp.Render(msg.CreatedAt.Format("15:04"))

	if msg.Role == domain.RoleUser {
		label := s.UserLabel.Render("You") + " " + stamp
		return label + "\n" + s.UserText.Width(width).Render(msg.Content)
	}
	label := s.AdvisorLabel.Render("Advisor") + " " + stamp
	return label + "\n" + m.markdown(msg, width)
}

// markdown renders an advisor message, caching the result per message ID for
// the current width.
func (m *Model) markdown(msg domain.Message, width int) string {
	r := m.markdownRenderer(width)
	if r == nil {
		return m.styles.UserText.Width(width).Render(msg.Content)
	}
	if out, ok := m.rendered[msg.ID]; ok {
		return out
	}
	out, err := r.Render(msg.Content)
	if err != nil {
		m.logger.Warn("markdown render failed", zap.String("message_id", msg.ID), zap.Error(err))
		out = m.styles.UserText.Width(width).Render(msg.Content)
	}
	out = strings.Trim(out, "\n")
	m.rendered[msg.ID] = out
	return out
}

func (m *Model) welcomeView() string {
	s := m.styles
	width := max(m.layout.mainWidth-markdownPadding, 10)

	var b strings.Builder
	b.WriteString(s.Title.Render("Welcome to Your Financial Advisor"))
	b.WriteString("\n\n")
	b.WriteString(s.Muted.Width(width).Render(
		"I'm here to help you with budgeting, investments, savings strategies, and all your financial questions. " +
			"Start by asking me anything about your finances!"))
	b.WriteString("\n\n")

	cards := make([]string, 0, len(exampleQuestions))
	for _, q := range exampleQuestions {
		cards = append(cards, s.ExampleCard.Width(width-2).Render(q))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, cards...))
	b.WriteString("\n\n")
	b.WriteString(s.Muted.Render("Press Ctrl+U to upload a financial document"))

	return s.Welcome.Render(b.String())
}
