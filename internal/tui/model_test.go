package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/apptbook/internal/constants"
	"github.com/julianstephens/apptbook/internal/controller"
	"github.com/julianstephens/apptbook/internal/models"
	"github.com/julianstephens/apptbook/internal/repository"
	"github.com/julianstephens/apptbook/internal/storage"
	"github.com/julianstephens/apptbook/internal/storage/sqlite"
)

var day = time.Date(2024, time.March, 15, 0, 0, 0, 0, time.Local).UnixMilli()

func setupTestModel(t *testing.T, route Route, seed ...models.Appointment) (Model, *controller.Controller, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "apptbook.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	for _, a := range seed {
		if _, err := store.InsertAppointment(context.Background(), a); err != nil {
			t.Fatalf("failed to seed: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	ctrl := controller.New(ctx, repository.New(storage.NewAppointments(store)))
	t.Cleanup(func() {
		cancel()
		ctrl.Close()
		store.Close()
	})
	return NewModel(ctx, ctrl, route), ctrl, store
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// settle feeds controller states to m until one is not Loading
func settle(t *testing.T, m Model) Model {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-m.states:
			m = update(t, m, stateMsg{state: s})
			if s.Status != controller.Loading {
				return m
			}
		case <-timeout:
			t.Fatal("controller never settled")
		}
	}
}

func load(t *testing.T, m Model) Model {
	t.Helper()
	return update(t, m, m.fetch(m.route)())
}

func stored(t *testing.T, store *sqlite.Store) []models.Appointment {
	t.Helper()
	list, err := store.ListAppointments(context.Background())
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	return list
}

func TestListView(t *testing.T) {
	m, _, _ := setupTestModel(t, ListRoute)
	if !strings.Contains(m.View(), "Loading...") {
		t.Errorf("initial view should be loading:\n%s", m.View())
	}

	m = settle(t, m)
	if !strings.Contains(m.View(), "No appointments") {
		t.Errorf("expected empty message:\n%s", m.View())
	}
}

func TestListShowsAppointments(t *testing.T) {
	m, _, _ := setupTestModel(t, ListRoute, models.NewAppointment("Alice", day, "09:30", ""))
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = settle(t, m)

	view := m.View()
	if !strings.Contains(view, "Alice") || !strings.Contains(view, "15/03/2024 09:30") {
		t.Errorf("appointment missing from list:\n%s", view)
	}
}

func TestAddRouteStartsWithDefaults(t *testing.T) {
	m, _, _ := setupTestModel(t, AddRoute)

	if m.form == nil || m.formData == nil {
		t.Fatal("add route should open the form")
	}
	if m.formData.Time != constants.DefaultTime {
		t.Errorf("default time = %q, want %q", m.formData.Time, constants.DefaultTime)
	}
	if m.formData.Date != time.Now().Format(constants.DateFormat) {
		t.Errorf("default date = %q, want today", m.formData.Date)
	}
}

func TestSubmitAdd(t *testing.T) {
	m, ctrl, store := setupTestModel(t, AddRoute)
	*m.formData = FormModel{Name: " John Doe ", Date: "2024-03-15", Time: "10:00", Notes: "Test Note"}

	if err := m.submit(); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := ctrl.Wait(); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	list := stored(t, store)
	if len(list) != 1 {
		t.Fatalf("expected one appointment, got %d", len(list))
	}
	want := models.NewAppointment("John Doe", day, "10:00", "Test Note").WithID(list[0].ID)
	if list[0] != want {
		t.Errorf("stored %+v, want %+v", list[0], want)
	}
}

func TestSubmitRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		form FormModel
	}{
		{"blank name", FormModel{Name: "  ", Date: "2024-03-15", Time: "10:00"}},
		{"bad date", FormModel{Name: "Alice", Date: "15/03/2024", Time: "10:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ctrl, store := setupTestModel(t, AddRoute)
			*m.formData = tt.form
			if err := m.submit(); err == nil {
				t.Fatal("expected an error")
			}
			_ = ctrl.Wait()
			if n := len(stored(t, store)); n != 0 {
				t.Errorf("expected no rows, got %d", n)
			}
		})
	}
}

func TestEditHydratesAndResetsStatus(t *testing.T) {
	done := models.NewAppointment("Alice", day, "09:00", "first").WithStatus(constants.StatusCompleted)
	m, ctrl, store := setupTestModel(t, EditRoute(1), done)

	if m.form != nil {
		t.Fatal("edit form should wait for the appointment")
	}
	m = load(t, m)
	if m.formData == nil || m.formData.Name != "Alice" || m.formData.Date != "2024-03-15" {
		t.Fatalf("form not hydrated: %+v", m.formData)
	}

	m.formData.Name = "Alice Smith"
	if err := m.submit(); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := ctrl.Wait(); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got := stored(t, store)[0]
	if got.ClientName != "Alice Smith" || got.Status != constants.StatusScheduled || got.Notes != "first" {
		t.Errorf("unexpected row after edit: %+v", got)
	}
}

func TestMissingAppointmentReturnsToList(t *testing.T) {
	m, _, _ := setupTestModel(t, DetailsRoute(9))
	m = load(t, m)

	if m.Route() != ListRoute {
		t.Errorf("route = %v, want list", m.Route())
	}
	if !strings.Contains(m.View(), "Appointment 9 not found") {
		t.Errorf("expected not found status:\n%s", m.View())
	}
}

func TestStaleLoadIsIgnored(t *testing.T) {
	m, _, _ := setupTestModel(t, DetailsRoute(1), models.NewAppointment("Alice", day, "09:00", ""))
	msg := m.fetch(m.route)()

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = update(t, m, msg)
	if m.Route() != ListRoute || m.details != nil {
		t.Errorf("late load changed the screen: route %v", m.Route())
	}
}

func TestDetailsView(t *testing.T) {
	m, _, _ := setupTestModel(t, DetailsRoute(1), models.NewAppointment("Alice", day, "09:00", ""))
	m = load(t, m)

	view := m.View()
	for _, want := range []string{"Alice", "15/03/2024", "09:00", "Scheduled", "No notes"} {
		if !strings.Contains(view, want) {
			t.Errorf("details view missing %q:\n%s", want, view)
		}
	}
}

func TestDetailsMarkCompleted(t *testing.T) {
	m, ctrl, store := setupTestModel(t, DetailsRoute(1), models.NewAppointment("Alice", day, "09:00", "notes"))
	m = load(t, m)

	m = update(t, m, keyPress("c"))
	if m.Route() != ListRoute {
		t.Errorf("route = %v, want list after completing", m.Route())
	}
	if err := ctrl.Wait(); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if got := stored(t, store)[0]; !got.IsCompleted() || got.Notes != "notes" {
		t.Errorf("unexpected row: %+v", got)
	}
}

func TestDetailsDeleteAsksFirst(t *testing.T) {
	m, ctrl, store := setupTestModel(t, DetailsRoute(1), models.NewAppointment("Alice", day, "09:00", ""))
	m = load(t, m)

	m = update(t, m, keyPress("d"))
	if !strings.Contains(m.View(), "[y] Yes") {
		t.Fatalf("expected confirmation:\n%s", m.View())
	}

	m = update(t, m, keyPress("n"))
	if m.pendingDelete != nil || m.Route() != DetailsRoute(1) {
		t.Fatal("cancel should return to the details screen")
	}

	m = update(t, m, keyPress("d"))
	m = update(t, m, keyPress("y"))
	if m.Route() != ListRoute {
		t.Errorf("route = %v, want list after delete", m.Route())
	}
	if err := ctrl.Wait(); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if n := len(stored(t, store)); n != 0 {
		t.Errorf("expected no rows, got %d", n)
	}
}

func TestDetailsEditKey(t *testing.T) {
	m, _, _ := setupTestModel(t, DetailsRoute(1), models.NewAppointment("Alice", day, "09:00", ""))
	m = load(t, m)

	m = update(t, m, keyPress("e"))
	if m.Route() != EditRoute(1) {
		t.Errorf("route = %v, want edit/1", m.Route())
	}
}

func TestEscLeavesForm(t *testing.T) {
	m, _, _ := setupTestModel(t, AddRoute)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Route() != ListRoute || m.form != nil {
		t.Errorf("esc should discard the form, route %v", m.Route())
	}
}

func TestListShowsValidationWarning(t *testing.T) {
	m, _, _ := setupTestModel(t, ListRoute,
		models.NewAppointment("Alice", day, "09:00", ""),
		models.NewAppointment("Bob", day, "09:00", ""),
	)
	m = settle(t, m)

	if !strings.Contains(m.View(), "1 validation warning(s)") {
		t.Errorf("expected double booking warning:\n%s", m.View())
	}
}
