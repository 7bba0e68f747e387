package appointmentlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/apptbook/internal/constants"
	"github.com/julianstephens/apptbook/internal/controller"
	"github.com/julianstephens/apptbook/internal/models"
)

type AddMsg struct{}

type OpenMsg struct {
	ID int64
}

type EditMsg struct {
	ID int64
}

type DeleteMsg struct {
	Appointment models.Appointment
}

type CompleteMsg struct {
	Appointment models.Appointment
}

type Item struct {
	Appointment models.Appointment
}

func (i Item) Title() string { return i.Appointment.ClientName }
func (i Item) Description() string {
	return fmt.Sprintf("%s %s | %s",
		i.Appointment.FormatDate(constants.DisplayDateFormat), i.Appointment.TimeString, i.Appointment.Status)
}
func (i Item) FilterValue() string { return i.Appointment.ClientName }

type KeyMap struct {
	Add      key.Binding
	Open     key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Complete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete"),
		),
	}
}

// Model renders one controller.State as a selectable list.
type Model struct {
	list  list.Model
	keys  KeyMap
	state controller.State
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Appointments"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // We handle help globally in the main model
	l.DisableQuitKeybindings()

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Open, keys.Edit, keys.Delete, keys.Complete}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys, state: controller.State{Status: controller.Loading}}
}

// SetState replaces the rows. The selection stays on the same index.
func (m *Model) SetState(s controller.State) tea.Cmd {
	m.state = s
	items := make([]list.Item, len(s.Appointments))
	for i, a := range s.Appointments {
		items[i] = Item{Appointment: a}
	}
	return m.list.SetItems(items)
}

// Selected returns the highlighted appointment.
func (m Model) Selected() (models.Appointment, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Appointment, ok
}

// Filtering reports whether the user is typing a filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		if key.Matches(msg, m.keys.Add) {
			return m, func() tea.Msg { return AddMsg{} }
		}
		a, ok := m.Selected()
		if !ok {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Open):
			return m, func() tea.Msg { return OpenMsg{ID: a.ID} }
		case key.Matches(msg, m.keys.Edit):
			return m, func() tea.Msg { return EditMsg{ID: a.ID} }
		case key.Matches(msg, m.keys.Delete):
			return m, func() tea.Msg { return DeleteMsg{Appointment: a} }
		case key.Matches(msg, m.keys.Complete):
			if !a.IsCompleted() {
				return m, func() tea.Msg { return CompleteMsg{Appointment: a} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	switch m.state.Status {
	case controller.Loading:
		return "\n  Loading..."
	case controller.Error:
		return "\n  " + m.state.Message
	case controller.Empty:
		return "\n  No appointments\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
