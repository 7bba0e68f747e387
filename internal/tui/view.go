package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/apptbook/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.pendingDelete != nil:
		content = m.viewConfirmDelete()
	case m.route.Screen == ScreenAdd || m.route.Screen == ScreenEdit:
		content = m.viewForm()
	case m.route.Screen == ScreenDetails:
		content = m.viewDetails()
	default:
		content = m.list.View()
	}

	parts := []string{titleStyle.Render("apptbook · " + m.route.String()), docStyle.Render(content)}
	if m.status != "" {
		parts = append(parts, warningStyle.Render("  "+m.status))
	}
	if m.validationWarning != "" && m.route.Screen == ScreenList {
		parts = append(parts, warningStyle.Render("  "+m.validationWarning))
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewForm() string {
	if m.form == nil {
		return "Loading..."
	}
	return m.form.View()
}

func (m Model) viewDetails() string {
	if m.details == nil {
		return "Loading..."
	}
	a := m.details

	status := a.Status
	if a.IsCompleted() {
		status = completedStyle.Render(status)
	}

	rows := []string{
		lipgloss.NewStyle().Bold(true).Render(a.ClientName),
		"",
		labelStyle.Render("Date") + a.FormatDate(constants.DisplayDateFormat),
		labelStyle.Render("Time") + a.TimeString,
		labelStyle.Render("Status") + status,
		labelStyle.Render("Notes") + a.NotesOrPlaceholder(),
	}
	return strings.Join(rows, "\n")
}

func (m Model) viewConfirmDelete() string {
	a := m.pendingDelete
	return lipgloss.JoinVertical(lipgloss.Left,
		dangerStyle.Render("Delete the appointment with "+a.ClientName+" on "+a.FormatDate(constants.DisplayDateFormat)+"?"),
		"",
		"[y] Yes",
		"[n] No",
	)
}
