package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/apptbook/internal/controller"
	"github.com/julianstephens/apptbook/internal/logger"
	"github.com/julianstephens/apptbook/internal/tui/components/appointmentlist"
	"github.com/julianstephens/apptbook/internal/validation"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case stateMsg:
		cmd := m.list.SetState(msg.state)
		m.updateValidationStatus(msg.state)
		return m, tea.Batch(cmd, waitForState(m.states))

	case loadedMsg:
		return m.handleLoaded(msg)

	case appointmentlist.AddMsg:
		return m.navigate(AddRoute)
	case appointmentlist.OpenMsg:
		return m.navigate(DetailsRoute(msg.ID))
	case appointmentlist.EditMsg:
		return m.navigate(EditRoute(msg.ID))
	case appointmentlist.DeleteMsg:
		a := msg.Appointment
		m.pendingDelete = &a
		return m, nil
	case appointmentlist.CompleteMsg:
		m.ctrl.MarkCompleted(msg.Appointment)
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	if m.pendingDelete != nil {
		return m.updateConfirmDelete(msg)
	}

	switch m.route.Screen {
	case ScreenAdd, ScreenEdit:
		return m.updateForm(msg)
	case ScreenDetails:
		return m.updateDetails(msg)
	default:
		return m.updateList(msg)
	}
}

// updateValidationStatus counts the conflicts in the latest list
func (m *Model) updateValidationStatus(s controller.State) {
	result := validation.New().ValidateAppointments(s.Appointments)
	if result.HasConflicts() {
		m.validationWarning = fmt.Sprintf("⚠ %d validation warning(s), run 'apptbook validate'", len(result.Conflicts))
	} else {
		m.validationWarning = ""
	}
}

func (m Model) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	// A late answer for a screen the user already left
	if msg.route != m.route {
		return m, nil
	}

	switch {
	case msg.err != nil:
		logger.Error("Failed to load appointment", "id", msg.route.ID, "error", msg.err)
		next, cmd := m.navigate(ListRoute)
		next.status = msg.err.Error()
		return next, cmd
	case msg.appointment == nil:
		next, cmd := m.navigate(ListRoute)
		next.status = fmt.Sprintf("Appointment %d not found", msg.route.ID)
		return next, cmd
	}

	m.details = msg.appointment
	if m.route.Screen == ScreenEdit {
		m.formData = formModelFrom(*msg.appointment)
		m.form = NewAppointmentForm("Edit appointment", m.formData)
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && !m.list.Filtering() {
		switch {
		case key.Matches(k, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(k, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		m.status = ""
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateDetails(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(k, m.keys.Back):
		return m.navigate(ListRoute)
	case key.Matches(k, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	}

	// Still loading
	if m.details == nil {
		return m, nil
	}

	switch {
	case key.Matches(k, m.keys.Edit):
		return m.navigate(EditRoute(m.details.ID))
	case key.Matches(k, m.keys.Delete):
		a := *m.details
		m.pendingDelete = &a
	case key.Matches(k, m.keys.Complete):
		if !m.details.IsCompleted() {
			m.ctrl.MarkCompleted(*m.details)
			return m.navigate(ListRoute)
		}
	}
	return m, nil
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(k, m.keys.Confirm):
		m.ctrl.Delete(*m.pendingDelete)
		return m.navigate(ListRoute)
	case key.Matches(k, m.keys.Cancel):
		m.pendingDelete = nil
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Back) {
		return m.navigate(ListRoute)
	}

	// Edit form still waiting for GetByID
	if m.form == nil {
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		if err := m.submit(); err != nil {
			// Stay in form state on error to allow retry
			m.status = err.Error()
			m.form.State = huh.StateNormal
			break
		}
		next, cmd := m.navigate(ListRoute)
		return next, tea.Batch(append(cmds, cmd)...)
	case huh.StateAborted:
		return m.navigate(ListRoute)
	}
	return m, tea.Batch(cmds...)
}

// submit hands the form values to the controller.
func (m Model) submit() error {
	name, date, timeStr, notes, err := m.formData.Fields()
	if err != nil {
		return err
	}

	if m.route.Screen == ScreenEdit {
		if name == "" {
			return controller.ErrBlankName
		}
		m.ctrl.Update(m.route.ID, name, date, timeStr, notes)
		return nil
	}

	if err := m.ctrl.Add(name, date, timeStr, notes); err != nil {
		if errors.Is(err, controller.ErrBlankName) {
			return fmt.Errorf("client name is required")
		}
		return err
	}
	return nil
}
