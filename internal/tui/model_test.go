package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"advisor-chat/internal/domain"
	"advisor-chat/internal/usecase"
)

type fakeAPI struct {
	mu sync.Mutex

	resp     domain.QueryResponse
	queryErr error
	queries  []string

	result    domain.UploadResult
	uploadErr error
	uploads   []domain.Document
}

func (f *fakeAPI) SubmitQuery(_ context.Context, text string) (domain.QueryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, text)
	return f.resp, f.queryErr
}

func (f *fakeAPI) UploadDocument(_ context.Context, doc domain.Document) (domain.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, doc)
	return f.result, f.uploadErr
}

func (f *fakeAPI) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func newTestModel(t *testing.T, api *fakeAPI, width, height int) Model {
	t.Helper()
	conv, err := usecase.NewConversation(api, nil)
	require.NoError(t, err)
	m, err := New(conv, Options{})
	require.NoError(t, err)
	return update(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// runCmd executes cmd and any batched commands one level deep. Commands that
// return timers must not be passed here.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, runCmd(c)...)
	}
	return out
}

func findMsg[T tea.Msg](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v
		}
	}
	var zero T
	require.Failf(t, "message not produced", "%T not found in %v", zero, msgs)
	return zero
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestNewRejectsNilConversation(t *testing.T) {
	_, err := New(nil, Options{})
	require.Error(t, err)
}

func TestSubmitRunsTurnAndShowsLinks(t *testing.T) {
	api := &fakeAPI{resp: domain.QueryResponse{
		Advisor:  domain.TextReply("Start with the 50/30/20 rule."),
		WebLinks: "- [Budget Guide](https://example.com/budget)",
	}}
	m := newTestModel(t, api, 130, 40)

	m = typeText(t, m, "How do I budget?")
	require.Equal(t, "How do I budget?", m.textarea.Value())

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.True(t, m.conv.Querying())
	require.Empty(t, m.textarea.Value())
	require.False(t, m.textarea.Focused())
	require.Contains(t, m.View(), "Analyzing your query...")
	require.Len(t, m.conv.Messages(), 1)

	done := findMsg[queryDoneMsg](t, runCmd(cmd))
	m = update(t, m, done)

	require.False(t, m.conv.Querying())
	require.True(t, m.textarea.Focused())
	msgs := m.conv.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, domain.RoleAdvisor, msgs[1].Role)
	require.Equal(t, "Start with the 50/30/20 rule.", msgs[1].Content)
	require.Equal(t, []string{"How do I budget?"}, api.queries)

	view := m.View()
	require.NotContains(t, view, "Analyzing your query...")
	require.Contains(t, view, "Web Resources")
	require.Contains(t, view, "Budget Guide")
	require.Contains(t, view, "example.com")
}

func TestEnterIgnoredForBlankInput(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(t, api, 100, 30)

	m = typeText(t, m, "   ")
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Nil(t, cmd)
	require.False(t, m.conv.Querying())
	require.Empty(t, m.conv.Messages())
	require.Empty(t, api.queries)
}

func TestAltEnterInsertsNewline(t *testing.T) {
	m := newTestModel(t, &fakeAPI{}, 100, 30)

	m = typeText(t, m, "first")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	m = typeText(t, m, "second")

	require.Equal(t, "first\nsecond", m.textarea.Value())
	require.Equal(t, 2, m.textarea.Height())
	require.False(t, m.conv.Querying())
}

func TestInputGrowsUpToSixLines(t *testing.T) {
	m := newTestModel(t, &fakeAPI{}, 100, 40)
	before := m.viewport.Height

	for i := 0; i < 9; i++ {
		m = typeText(t, m, "line")
		m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlJ})
	}

	require.Equal(t, maxInputLines, m.textarea.Height())
	require.Equal(t, before-(maxInputLines-minInputLines), m.viewport.Height)
}

func TestLongPasteIsSentInFull(t *testing.T) {
	api := &fakeAPI{resp: domain.QueryResponse{Advisor: domain.TextReply("ok")}}
	m := newTestModel(t, api, 100, 30)
	long := strings.Repeat("a", 5000)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(long), Paste: true})
	require.Equal(t, long, m.textarea.Value())

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, findMsg[queryDoneMsg](t, runCmd(cmd)))

	require.Equal(t, []string{long}, api.queries)
	require.Equal(t, long, m.conv.Messages()[0].Content)
}

func TestHistoryScrollsToBottomOnChange(t *testing.T) {
	api := &fakeAPI{resp: domain.QueryResponse{Advisor: domain.TextReply("Noted.")}}
	conv, err := usecase.NewConversation(api, nil)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		_, err := conv.Send(context.Background(), fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}
	m, err := New(conv, Options{})
	require.NoError(t, err)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 12})
	require.True(t, m.viewport.AtBottom())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyPgUp})
	require.False(t, m.viewport.AtBottom())

	m = typeText(t, m, "one more")
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.conv.Querying())
	require.True(t, m.viewport.AtBottom())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyPgUp})
	require.False(t, m.viewport.AtBottom())

	m = update(t, m, findMsg[queryDoneMsg](t, runCmd(cmd)))
	require.False(t, m.conv.Querying())
	require.True(t, m.viewport.AtBottom())
}

func TestTypingIgnoredWhileQuerying(t *testing.T) {
	m := newTestModel(t, &fakeAPI{}, 100, 30)

	m = typeText(t, m, "hello")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.conv.Querying())

	m = typeText(t, m, "more")
	require.Empty(t, m.textarea.Value())

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Len(t, m.conv.Messages(), 1)
}

func TestTransportFailureAppendsApology(t *testing.T) {
	api := &fakeAPI{queryErr: errors.New("connection refused")}
	m := newTestModel(t, api, 100, 30)

	m = typeText(t, m, "hello")
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, findMsg[queryDoneMsg](t, runCmd(cmd)))

	last, ok := m.conv.LastMessage()
	require.True(t, ok)
	require.Equal(t, domain.RoleAdvisor, last.Role)
	require.True(t, strings.HasPrefix(last.Content, "I apologize"))
	require.Empty(t, m.conv.Links())
}

func TestWelcomeShownForEmptyConversation(t *testing.T) {
	m := newTestModel(t, &fakeAPI{}, 130, 40)

	view := m.View()
	require.Contains(t, view, "Welcome to Your Financial Advisor")
	require.Contains(t, view, "How should I create a monthly budget?")
	require.Contains(t, view, "No web resources available for this query")
}

func TestNarrowTerminalHidesSidebar(t *testing.T) {
	api := &fakeAPI{resp: domain.QueryResponse{
		Advisor:  domain.TextReply("ok"),
		WebLinks: "- [A](https://a.example)\n- [B](https://b.example)",
	}}
	m := newTestModel(t, api, 60, 30)

	m = typeText(t, m, "q")
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, findMsg[queryDoneMsg](t, runCmd(cmd)))

	view := m.View()
	require.NotContains(t, view, "Web Resources")
	require.Contains(t, view, "2 web resources")
}

func TestCtrlCQuits(t *testing.T) {
	m := newTestModel(t, &fakeAPI{}, 80, 24)

	_, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSpinnerTickDroppedWhenIdle(t *testing.T) {
	m := newTestModel(t, &fakeAPI{}, 80, 24)

	_, cmd := updateCmd(t, m, m.spinner.Tick())
	require.Nil(t, cmd)
}

func writeFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
	return path
}

func TestUploadDialogRejectsNonWordFile(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(t, api, 100, 30)
	path := writeFile(t, "report.pdf", 10)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	require.True(t, m.dialog.open)
	require.Contains(t, m.View(), "Upload Financial Document")

	m = typeText(t, m, path)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Nil(t, m.dialog.staged)
	require.Equal(t, statusError, m.dialog.status)
	require.Equal(t, "Please select a valid Word document (.docx file)", m.dialog.message)
	require.Zero(t, api.uploadCount())
}

func TestUploadDialogUploadsAndCloses(t *testing.T) {
	chunks := 4
	api := &fakeAPI{result: domain.UploadResult{Success: true, Message: "Stored", ChunksCreated: &chunks}}
	m := newTestModel(t, api, 100, 30)
	path := writeFile(t, "habits.docx", 2048)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	m = typeText(t, m, `"`+path+`"`)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, m.dialog.staged)
	require.Equal(t, "habits.docx", m.dialog.staged.Name)
	require.Contains(t, m.View(), "Remember Document")

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.dialog.uploading)
	require.Contains(t, m.View(), "Processing...")

	done := findMsg[uploadDoneMsg](t, runCmd(cmd))
	m, cmd = updateCmd(t, m, done)
	require.NotNil(t, cmd)
	require.False(t, m.dialog.uploading)
	require.Equal(t, statusSuccess, m.dialog.status)
	require.Contains(t, m.View(), "Success!")
	require.Equal(t, 1, api.uploadCount())

	msgs := m.conv.Messages()
	require.Len(t, msgs, 1)
	require.Contains(t, msgs[0].Content, "Document Upload Successful")

	m = update(t, m, closeDialogMsg{gen: m.dialog.gen})
	require.False(t, m.dialog.open)
}

func TestUploadDialogKeepsOpenOnRejection(t *testing.T) {
	api := &fakeAPI{result: domain.UploadResult{Success: false, Message: "Could not parse document"}}
	m := newTestModel(t, api, 100, 30)
	path := writeFile(t, "habits.docx", 10)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	m = typeText(t, m, path)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd = updateCmd(t, m, findMsg[uploadDoneMsg](t, runCmd(cmd)))

	require.Nil(t, cmd)
	require.True(t, m.dialog.open)
	require.Equal(t, statusError, m.dialog.status)
	require.Equal(t, "Could not parse document", m.dialog.message)
	require.Empty(t, m.conv.Messages())
}

func TestPastedPathIsStaged(t *testing.T) {
	m := newTestModel(t, &fakeAPI{}, 100, 30)
	path := writeFile(t, "habits.docx", 10)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("'" + path + "'"), Paste: true})

	require.NotNil(t, m.dialog.staged)
	require.Equal(t, path, m.dialog.staged.Path)
}

func TestStaleCloseIgnoredAfterReopen(t *testing.T) {
	m := newTestModel(t, &fakeAPI{}, 100, 30)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	stale := m.dialog.gen
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.dialog.open)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	m = update(t, m, closeDialogMsg{gen: stale})
	require.True(t, m.dialog.open)
}
