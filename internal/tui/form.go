package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/apptbook/internal/constants"
	"github.com/julianstephens/apptbook/internal/models"
)

// FormModel backs the add and edit screens.
type FormModel struct {
	Name  string
	Date  string
	Time  string
	Notes string
}

// newFormModel returns the add screen defaults: today at the default time.
func newFormModel(now time.Time) *FormModel {
	return &FormModel{
		Date: now.Format(constants.DateFormat),
		Time: constants.DefaultTime,
	}
}

// formModelFrom hydrates the edit screen from a stored appointment.
func formModelFrom(a models.Appointment) *FormModel {
	return &FormModel{
		Name:  a.ClientName,
		Date:  a.FormatDate(constants.DateFormat),
		Time:  a.TimeString,
		Notes: a.Notes,
	}
}

// Fields returns the trimmed values with the date as epoch milliseconds.
func (fm *FormModel) Fields() (name string, date int64, timeStr, notes string, err error) {
	date, err = models.ParseDate(fm.Date)
	if err != nil {
		return "", 0, "", "", err
	}
	return strings.TrimSpace(fm.Name), date, strings.TrimSpace(fm.Time), fm.Notes, nil
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("client name is required")
	}
	return nil
}

func validateDate(s string) error {
	_, err := models.ParseDate(s)
	return err
}

// NewAppointmentForm creates the form used by both add and edit
func NewAppointmentForm(title string, fm *FormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(title),
			huh.NewInput().
				Title("Client Name").
				Value(&fm.Name).
				Validate(validateName),
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD").
				Value(&fm.Date).
				Validate(validateDate),
			huh.NewInput().
				Title("Time").
				Description("HH:MM").
				Value(&fm.Time).
				Validate(models.ValidateTime),
			huh.NewText().
				Title("Notes").
				Value(&fm.Notes),
		),
	).WithTheme(huh.ThemeDracula())
}
