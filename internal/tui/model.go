// Package tui implements the terminal interface described for noted: two
// panes (recent apps, notes for the selected app) driven entirely
// through dispatcher requests. The UI never touches persisted state
// directly.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/noted-app/noted/internal/config"
	"github.com/noted-app/noted/internal/dispatcher"
	"github.com/noted-app/noted/internal/notes"
	"github.com/noted-app/noted/internal/sampler"
)

// pollInterval is how often the UI refetches the apps and notes panes
// from the dispatcher, since both change from goroutines the UI doesn't
// own.
const pollInterval = config.DefaultUITickPeriod

// recentAppsLimit bounds how many recent app sessions the apps pane requests.
const recentAppsLimit = 20

// pane identifies which of the two panes has keyboard focus.
type pane int

const (
	paneApps pane = iota
	paneNotes
)

// mode identifies what the input area, if visible, is being used for.
type mode int

const (
	modeNormal mode = iota
	modeInsert
	modeEdit
)

// Model is the bubbletea model driving the two-pane note-taking UI.
type Model struct {
	disp *dispatcher.Dispatcher

	width  int
	height int

	apps         []sampler.WindowSession
	appsSelected int

	notesList     []notes.Note
	notesSelected int

	focus pane
	mode  mode

	textInput textarea.Model
	editingID string

	keys     KeyMap
	help     help.Model
	showHelp bool

	status string
}

// New constructs a Model that drives disp. Call tea.NewProgram(model) to
// run it.
func New(disp *dispatcher.Dispatcher) *Model {
	ta := textarea.New()
	ta.Placeholder = "note text..."
	ta.ShowLineNumbers = false
	ta.SetHeight(3)

	return &Model{
		disp:      disp,
		textInput: ta,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		focus:     paneApps,
	}
}

// appsMsg carries a refreshed recent-apps list.
type appsMsg []sampler.WindowSession

// notesMsg carries a refreshed notes-for-link list.
type notesMsg []notes.Note

// tickMsg triggers the next poll.
type tickMsg time.Time

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchApps(), m.tick())
}

func (m *Model) fetchApps() tea.Cmd {
	return func() tea.Msg {
		return appsMsg(m.disp.RecentApps(recentAppsLimit))
	}
}

// currentLinkLabel returns the app title the notes pane is scoped to:
// the selected entry in the apps pane, falling back to the dispatcher's
// live current app when the apps pane is empty.
func (m *Model) currentLinkLabel() (string, bool) {
	if m.appsSelected >= 0 && m.appsSelected < len(m.apps) {
		return m.apps[m.appsSelected].Title, true
	}
	if session, ok := m.disp.CurrentApp(); ok {
		return session.Title, true
	}
	return "", false
}

func (m *Model) fetchNotes() tea.Cmd {
	label, ok := m.currentLinkLabel()
	if !ok {
		return func() tea.Msg { return notesMsg(nil) }
	}
	return func() tea.Msg {
		return notesMsg(m.disp.GetLinkNotes(label))
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case appsMsg:
		m.apps = msg
		if m.appsSelected >= len(m.apps) {
			m.appsSelected = len(m.apps) - 1
		}
		if m.appsSelected < 0 && len(m.apps) > 0 {
			m.appsSelected = 0
		}
		return m, m.fetchNotes()

	case notesMsg:
		m.notesList = msg
		if m.notesSelected >= len(m.notesList) {
			m.notesSelected = len(m.notesList) - 1
		}
		if m.notesSelected < 0 && len(m.notesList) > 0 {
			m.notesSelected = 0
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchApps(), m.tick())

	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m.updateInput(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m *Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.disp.Quit()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.SwitchPane):
		if m.focus == paneApps {
			m.focus = paneNotes
		} else {
			m.focus = paneApps
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
		return m, m.maybeRefetchNotes()

	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
		return m, m.maybeRefetchNotes()

	case key.Matches(msg, m.keys.Top):
		m.setSelection(0)
		return m, m.maybeRefetchNotes()

	case key.Matches(msg, m.keys.Bottom):
		m.setSelection(m.paneLen() - 1)
		return m, m.maybeRefetchNotes()

	case key.Matches(msg, m.keys.Insert):
		m.mode = modeInsert
		m.editingID = ""
		m.textInput.Reset()
		m.textInput.Focus()
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		if m.focus == paneNotes && m.notesSelected >= 0 && m.notesSelected < len(m.notesList) {
			m.mode = modeEdit
			m.editingID = m.notesList[m.notesSelected].ID
			m.textInput.SetValue(m.notesList[m.notesSelected].Text)
			m.textInput.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.focus == paneNotes && m.notesSelected >= 0 && m.notesSelected < len(m.notesList) {
			m.mode = modeEdit
			m.editingID = m.notesList[m.notesSelected].ID
			m.textInput.SetValue(m.notesList[m.notesSelected].Text)
			m.textInput.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Archive):
		if m.focus == paneNotes && m.notesSelected >= 0 && m.notesSelected < len(m.notesList) {
			m.disp.ArchiveNote(m.notesList[m.notesSelected].ID)
			m.status = "archived"
			return m, m.fetchNotes()
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeNormal
		m.textInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		text := m.textInput.Value()
		if text == "" {
			m.mode = modeNormal
			m.textInput.Blur()
			return m, nil
		}
		if m.mode == modeEdit {
			m.disp.EditNote(m.editingID, text)
		} else {
			label, _ := m.currentLinkLabel()
			var links []string
			if label != "" {
				links = []string{label}
			}
			m.disp.NewNote(text, links)
		}
		m.mode = modeNormal
		m.textInput.Blur()
		return m, m.fetchNotes()
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) moveSelection(delta int) {
	m.setSelection(m.paneSelection() + delta)
}

func (m *Model) setSelection(i int) {
	n := m.paneLen()
	if n == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	if m.focus == paneApps {
		m.appsSelected = i
	} else {
		m.notesSelected = i
	}
}

func (m *Model) paneSelection() int {
	if m.focus == paneApps {
		return m.appsSelected
	}
	return m.notesSelected
}

func (m *Model) paneLen() int {
	if m.focus == paneApps {
		return len(m.apps)
	}
	return len(m.notesList)
}

// maybeRefetchNotes refetches the notes pane after a selection change in
// the apps pane, since it is scoped to the selected app's link label.
func (m *Model) maybeRefetchNotes() tea.Cmd {
	if m.focus == paneApps {
		return m.fetchNotes()
	}
	return nil
}

func (m *Model) View() string {
	return m.renderView()
}
