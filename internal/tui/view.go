package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const minPaneWidth = 24

func (m *Model) renderView() string {
	if m.width == 0 {
		return "loading..."
	}

	title := titleStyle.Render("noted")
	apps := m.renderAppsPane()
	notes := m.renderNotesPane()

	panes := lipgloss.JoinHorizontal(lipgloss.Top, apps, notes)

	sections := []string{title, panes}

	if m.mode != modeNormal {
		sections = append(sections, m.renderInput())
	}

	if m.status != "" {
		sections = append(sections, statusStyle.Render(m.status))
	}

	if m.showHelp {
		sections = append(sections, helpStyle.Render(m.help.View(m.keys)))
	} else {
		sections = append(sections, helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func paneWidth(total int) int {
	w := total/2 - 2
	if w < minPaneWidth {
		w = minPaneWidth
	}
	return w
}

func (m *Model) renderAppsPane() string {
	w := paneWidth(m.width)
	var b strings.Builder
	b.WriteString(paneTitleStyle.Render("recent apps"))
	b.WriteString("\n")

	if len(m.apps) == 0 {
		b.WriteString(mutedItemStyle.Render("(none yet)"))
	}
	for i, session := range m.apps {
		line := session.Title
		if len(line) > w-2 {
			line = line[:w-2]
		}
		if i == m.appsSelected && m.focus == paneApps {
			b.WriteString(selectedItemStyle.Render(line))
		} else {
			b.WriteString(normalItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	style := paneBorderStyle
	if m.focus == paneApps {
		style = activePaneBorderStyle
	}
	return style.Width(w).Render(b.String())
}

func (m *Model) renderNotesPane() string {
	w := paneWidth(m.width)
	var b strings.Builder

	label, ok := m.currentLinkLabel()
	heading := "notes"
	if ok {
		heading = fmt.Sprintf("notes: %s", label)
	}
	b.WriteString(paneTitleStyle.Render(heading))
	b.WriteString("\n")

	if len(m.notesList) == 0 {
		b.WriteString(mutedItemStyle.Render("(no notes)"))
	}
	for i, n := range m.notesList {
		line := n.Text
		if len(line) > w-2 {
			line = line[:w-2]
		}
		if i == m.notesSelected && m.focus == paneNotes {
			b.WriteString(selectedItemStyle.Render(line))
		} else {
			b.WriteString(normalItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	style := paneBorderStyle
	if m.focus == paneNotes {
		style = activePaneBorderStyle
	}
	return style.Width(w).Render(b.String())
}

func (m *Model) renderInput() string {
	label := "new note"
	if m.mode == modeEdit {
		label = "edit note"
	}
	return inputLabelStyle.Render(label) + "\n" + inputStyle.Render(m.textInput.View())
}
