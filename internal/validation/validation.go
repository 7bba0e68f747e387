package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/apptbook/internal/constants"
	"github.com/julianstephens/apptbook/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDoubleBooking ConflictType = "double_booking"
	ConflictBlankName     ConflictType = "blank_name"
	ConflictUnknownStatus ConflictType = "unknown_status"
	ConflictInvalidTime   ConflictType = "invalid_time"
)

// IsError reports whether the conflict means the stored data is broken,
// as opposed to something the user may want to look at.
func (t ConflictType) IsError() bool {
	return t == ConflictBlankName || t == ConflictUnknownStatus
}

// Conflict represents a detected problem in the appointment book
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string  // YYYY-MM-DD (if applicable)
	IDs         []int64 // appointments involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Errors returns only the conflicts for which IsError is true.
func (vr *ValidationResult) Errors() []Conflict {
	var errs []Conflict
	for _, c := range vr.Conflicts {
		if c.Type.IsError() {
			errs = append(errs, c)
		}
	}
	return errs
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// Validator checks appointments for conflicts
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateAppointments checks every appointment on its own and then looks
// for scheduled appointments sharing a date and time.
func (v *Validator) ValidateAppointments(appts []models.Appointment) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	type slot struct {
		date string
		time string
	}
	booked := make(map[slot][]int64)

	for _, a := range appts {
		date := a.FormatDate(constants.DateFormat)

		if strings.TrimSpace(a.ClientName) == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictBlankName,
				Description: fmt.Sprintf("Appointment %d has a blank client name", a.ID),
				Date:        date,
				IDs:         []int64{a.ID},
			})
		}

		if a.Status != constants.StatusScheduled && a.Status != constants.StatusCompleted {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictUnknownStatus,
				Description: fmt.Sprintf("Appointment %d has unknown status %q", a.ID, a.Status),
				Date:        date,
				IDs:         []int64{a.ID},
			})
		}

		// Time is free-form; only flag it when it is not empty
		if a.TimeString != "" && models.ValidateTime(a.TimeString) != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidTime,
				Description: fmt.Sprintf("Appointment %d (%s) has a time that is not HH:MM: %q", a.ID, a.ClientName, a.TimeString),
				Date:        date,
				IDs:         []int64{a.ID},
			})
		}

		if a.Status == constants.StatusScheduled && a.TimeString != "" {
			key := slot{date: date, time: strings.TrimSpace(a.TimeString)}
			booked[key] = append(booked[key], a.ID)
		}
	}

	var doubles []Conflict
	for s, ids := range booked {
		if len(ids) < 2 {
			continue
		}
		doubles = append(doubles, Conflict{
			Type:        ConflictDoubleBooking,
			Description: fmt.Sprintf("Double booking on %s at %s (IDs: %v)", s.date, s.time, ids),
			Date:        s.date,
			IDs:         ids,
		})
	}
	// Map order is random
	sort.Slice(doubles, func(i, j int) bool { return doubles[i].Description < doubles[j].Description })
	result.Conflicts = append(result.Conflicts, doubles...)

	return result
}
