package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"advisor-chat/internal/domain"
	"advisor-chat/internal/usecase"
)

// uploadCloseDelay is how long the dialog stays up after a successful upload.
const uploadCloseDelay = 2 * time.Second

type uploadStatus int

const (
	statusIdle uploadStatus = iota
	statusSuccess
	statusError
)

type uploadDoneMsg struct {
	doc    domain.Document
	result domain.UploadResult
	err    error
}

// closeDialogMsg closes the dialog if it is still the same opening that
// scheduled it.
type closeDialogMsg struct {
	gen int
}

// uploadDialog is the local state of the upload modal: the path input, the
// staged file and the status banner. It is reset each time it opens.
type uploadDialog struct {
	open      bool
	input     textinput.Model
	staged    *domain.Document
	status    uploadStatus
	message   string
	uploading bool
	gen       int
}

func newUploadDialog() uploadDialog {
	ti := textinput.New()
	ti.Placeholder = "~/Documents/financial-habits.docx"
	ti.Prompt = "› "
	ti.CharLimit = 1024
	return uploadDialog{input: ti}
}

func (d *uploadDialog) setWidth(width int) {
	// border, padding and prompt
	d.input.Width = max(width-8, 10)
}

func (d *uploadDialog) show() {
	d.open = true
	d.gen++
	d.input.Reset()
	d.input.Focus()
	d.staged = nil
	d.status = statusIdle
	d.message = ""
}

func (d *uploadDialog) close() {
	d.open = false
	d.gen++
	d.input.Blur()
}

func (d *uploadDialog) fail(message string) {
	d.status = statusError
	d.message = message
}

// stage validates the path in the input and remembers the file on success.
func (d *uploadDialog) stage() {
	doc, err := usecase.OpenDocument(d.input.Value())
	if err != nil {
		d.staged = nil
		d.fail(usecase.ValidationMessage(err))
		return
	}
	d.staged = &doc
	d.status = statusIdle
	d.message = ""
}

func (d *uploadDialog) canUpload() bool {
	return d.staged != nil && !d.uploading && d.status != statusSuccess
}

func (d *uploadDialog) buttonLabel() string {
	switch {
	case d.uploading:
		return "Processing..."
	case d.status == statusSuccess:
		return "Success!"
	default:
		return "Remember Document"
	}
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.dialog.close()
		return m, nil
	case tea.KeyEnter:
		if m.dialog.uploading || m.dialog.status == statusSuccess {
			return m, nil
		}
		if m.dialog.staged == nil {
			m.dialog.stage()
			return m, nil
		}
		return m.startUpload()
	}

	if m.dialog.uploading {
		return m, nil
	}
	before := m.dialog.input.Value()
	var cmd tea.Cmd
	m.dialog.input, cmd = m.dialog.input.Update(msg)
	if m.dialog.input.Value() != before {
		m.dialog.staged = nil
		if msg.Paste {
			// Terminals deliver a dropped file as a bracketed paste of its path.
			m.dialog.stage()
		}
	}
	return m, cmd
}

func (m Model) startUpload() (tea.Model, tea.Cmd) {
	doc := *m.dialog.staged
	if err := m.conv.BeginUpload(doc); err != nil {
		message := usecase.ValidationMessage(err)
		if message == "" {
			message = "An upload is already in progress"
		}
		m.dialog.fail(message)
		return m, nil
	}
	m.dialog.uploading = true
	m.dialog.status = statusIdle
	m.dialog.message = ""

	ctx, conv := m.ctx, m.conv
	upload := func() tea.Msg {
		result, err := conv.SubmitUpload(ctx, doc)
		return uploadDoneMsg{doc: doc, result: result, err: err}
	}
	return m, tea.Batch(upload, m.spinner.Tick)
}

func (m Model) handleUploadDone(msg uploadDoneMsg) (tea.Model, tea.Cmd) {
	out := m.conv.SettleUpload(msg.doc, msg.result, msg.err)
	m.dialog.uploading = false
	if !out.Success {
		m.logger.Debug("upload not accepted", zap.String("status", out.Status))
		m.dialog.fail(out.Status)
		return m, nil
	}

	m.refreshHistory(false)
	if !m.dialog.open {
		return m, nil
	}
	m.dialog.status = statusSuccess
	m.dialog.message = out.Status
	gen := m.dialog.gen
	return m, tea.Tick(uploadCloseDelay, func(time.Time) tea.Msg {
		return closeDialogMsg{gen: gen}
	})
}

func (m Model) dialogView() string {
	s := m.styles
	d := m.dialog
	inner := dialogWidth - 6

	var b strings.Builder
	b.WriteString(s.Title.Render("Upload Financial Document"))
	b.WriteString("\n")
	b.WriteString(s.Subtitle.Render("Upload your financial habits document"))
	b.WriteString("\n\n")

	zone := s.DropZone
	var zoneText string
	if d.staged != nil {
		zone = s.DropZoneActive
		zoneText = s.Title.Render(d.staged.Name) + "\n" +
			s.Muted.Render(fmt.Sprintf("%.2f MB", float64(d.staged.Size)/1024/1024))
	} else {
		zoneText = s.Title.Render("Drop your document here") + "\n" +
			s.Muted.Render("or type its path below")
	}
	b.WriteString(zone.Width(inner - 2).Render(zoneText))
	b.WriteString("\n")
	b.WriteString(d.input.View())
	b.WriteString("\n")

	switch d.status {
	case statusSuccess:
		b.WriteString("\n" + s.StatusOK.Width(inner).Render("✓ "+d.message) + "\n")
	case statusError:
		b.WriteString("\n" + s.StatusErr.Width(inner).Render("✗ "+d.message) + "\n")
	}

	label := d.buttonLabel()
	if d.uploading {
		label = m.spinner.View() + " " + label
	}
	button := s.ButtonDisabled.Render(label)
	if d.canUpload() {
		button = s.Button.Render(label)
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, s.ButtonDisabled.Render("Esc Cancel"), "  ", button))
	b.WriteString("\n\n")

	notes := []string{
		"• Only .docx files are supported",
		"• Document will be processed to create your personal financial knowledge base",
		"• This helps provide more personalized financial advice",
	}
	b.WriteString(s.Muted.Width(inner).Render(strings.Join(notes, "\n")))

	return s.Dialog.Width(dialogWidth - 2).Render(b.String())
}
