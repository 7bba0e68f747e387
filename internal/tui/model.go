// Package tui is the interactive appointment book. Screens read the
// controller's state and send every change back through it.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/apptbook/internal/controller"
	"github.com/julianstephens/apptbook/internal/models"
	"github.com/julianstephens/apptbook/internal/tui/components/appointmentlist"
)

// stateMsg carries a controller state into the update loop
type stateMsg struct {
	state controller.State
}

// loadedMsg is the answer to a one-shot GetByID for route
type loadedMsg struct {
	route       Route
	appointment *models.Appointment
	err         error
}

type Model struct {
	ctx    context.Context
	ctrl   *controller.Controller
	states <-chan controller.State

	route    Route
	keys     KeyMap
	help     help.Model
	list     appointmentlist.Model
	form     *huh.Form
	formData *FormModel

	// details holds the appointment shown on the details screen and the
	// one being edited
	details *models.Appointment
	// pendingDelete is set while the delete confirmation is shown
	pendingDelete *models.Appointment

	initCmd           tea.Cmd
	status            string
	validationWarning string
	now               func() time.Time
	quitting          bool
	width             int
	height            int
}

// NewModel builds the program model starting at route. Controller states
// are read until ctx is done.
func NewModel(ctx context.Context, ctrl *controller.Controller, route Route) Model {
	m := Model{
		ctx:    ctx,
		ctrl:   ctrl,
		states: ctrl.Observe(ctx),
		keys:   DefaultKeyMap(),
		help:   help.New(),
		list:   appointmentlist.New(0, 0),
		now:    time.Now,
	}
	m, m.initCmd = m.navigate(route)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForState(m.states), m.initCmd)
}

// waitForState delivers the next controller state. A closed channel ends
// the subscription.
func waitForState(states <-chan controller.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-states
		if !ok {
			return nil
		}
		return stateMsg{state: s}
	}
}

func (m Model) fetch(route Route) tea.Cmd {
	return func() tea.Msg {
		a, err := m.ctrl.GetByID(m.ctx, route.ID)
		return loadedMsg{route: route, appointment: a, err: err}
	}
}

// navigate switches to route and returns the command that prepares it.
func (m Model) navigate(route Route) (Model, tea.Cmd) {
	m.route = route
	m.status = ""
	m.form = nil
	m.formData = nil
	m.details = nil
	m.pendingDelete = nil

	switch route.Screen {
	case ScreenAdd:
		m.formData = newFormModel(m.now())
		m.form = NewAppointmentForm("New appointment", m.formData)
		return m, m.form.Init()
	case ScreenEdit, ScreenDetails:
		return m, m.fetch(route)
	}
	return m, nil
}

func (m Model) Route() Route {
	return m.route
}

func (m Model) ShortHelp() []key.Binding {
	switch m.route.Screen {
	case ScreenDetails:
		return []key.Binding{m.keys.Edit, m.keys.Delete, m.keys.Complete, m.keys.Back}
	case ScreenAdd, ScreenEdit:
		return []key.Binding{m.keys.Back}
	}
	return []key.Binding{m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{m.ShortHelp()}
}
