package controller

import (
	"fmt"

	"github.com/julianstephens/apptbook/internal/models"
	"github.com/julianstephens/apptbook/internal/storage"
)

// Status is the kind of screen state the appointment list is in.
type Status int

const (
	Loading Status = iota
	Success
	Empty
	Error
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "Loading"
	case Success:
		return "Success"
	case Empty:
		return "Empty"
	case Error:
		return "Error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// State is what the list screen renders. Appointments is only set for
// Success and Message only for Error.
type State struct {
	Status       Status
	Appointments []models.Appointment
	Message      string
}

func stateFrom(snap storage.Snapshot) State {
	switch {
	case snap.Err != nil:
		return State{Status: Error, Message: snap.Err.Error()}
	case len(snap.Appointments) == 0:
		return State{Status: Empty}
	default:
		return State{Status: Success, Appointments: snap.Appointments}
	}
}
