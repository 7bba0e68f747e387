package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/apptbook/internal/constants"
)

// Appointment is a single row of the appointments table
type Appointment struct {
	ID            int64  `json:"id" yaml:"id"`                         // assigned by the store, 0 before insert
	ClientName    string `json:"client_name" yaml:"client_name"`       // non-empty, checked by the controller
	DateTimestamp int64  `json:"date_timestamp" yaml:"date_timestamp"` // epoch milliseconds
	TimeString    string `json:"time" yaml:"time"`                     // free-form, e.g. "14:30"
	Notes         string `json:"notes" yaml:"notes"`
	Status        string `json:"status" yaml:"status"`
}

// NewAppointment builds an unsaved appointment with the default status
func NewAppointment(name string, date int64, timeStr, notes string) Appointment {
	return Appointment{
		ClientName:    name,
		DateTimestamp: date,
		TimeString:    timeStr,
		Notes:         notes,
		Status:        constants.StatusScheduled,
	}
}

// WithStatus returns a copy of a with only Status changed
func (a Appointment) WithStatus(status string) Appointment {
	a.Status = status
	return a
}

// WithID returns a copy of a with its id set
func (a Appointment) WithID(id int64) Appointment {
	a.ID = id
	return a
}

// IsCompleted reports whether the appointment has been marked completed
func (a Appointment) IsCompleted() bool {
	return a.Status == constants.StatusCompleted
}

// Date returns DateTimestamp as a local time
func (a Appointment) Date() time.Time {
	return time.UnixMilli(a.DateTimestamp)
}

// FormatDate renders the date with the given layout
func (a Appointment) FormatDate(layout string) string {
	return a.Date().Format(layout)
}

// NotesOrPlaceholder returns the notes, or "No notes" when they are blank
func (a Appointment) NotesOrPlaceholder() string {
	if strings.TrimSpace(a.Notes) == "" {
		return "No notes"
	}
	return a.Notes
}

func (a Appointment) String() string {
	return fmt.Sprintf("#%d %s on %s at %s [%s]", a.ID, a.ClientName, a.FormatDate(constants.DateFormat), a.TimeString, a.Status)
}

// ParseDate converts a YYYY-MM-DD date in the local zone to epoch milliseconds
func ParseDate(s string) (int64, error) {
	t, err := time.ParseInLocation(constants.DateFormat, strings.TrimSpace(s), time.Local)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t.UnixMilli(), nil
}

// ValidateTime checks that s is an HH:MM time of day
func ValidateTime(s string) error {
	if _, err := time.Parse(constants.TimeFormat, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	return nil
}
