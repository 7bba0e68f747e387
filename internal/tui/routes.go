package tui

import (
	"fmt"
	"strconv"
	"strings"
)

// Screen identifies which TUI screen is active
type Screen int

const (
	ScreenList Screen = iota
	ScreenAdd
	ScreenEdit
	ScreenDetails
)

// Route is a screen plus the appointment it is about, if any.
type Route struct {
	Screen Screen
	ID     int64
}

var (
	ListRoute = Route{Screen: ScreenList}
	AddRoute  = Route{Screen: ScreenAdd}
)

func EditRoute(id int64) Route    { return Route{Screen: ScreenEdit, ID: id} }
func DetailsRoute(id int64) Route { return Route{Screen: ScreenDetails, ID: id} }

func (r Route) String() string {
	switch r.Screen {
	case ScreenAdd:
		return "add"
	case ScreenEdit:
		return fmt.Sprintf("edit/%d", r.ID)
	case ScreenDetails:
		return fmt.Sprintf("details/%d", r.ID)
	default:
		return "list"
	}
}

// ParseRoute accepts "list", "add", "edit/{id}" and "details/{id}". An
// empty string is the list.
func ParseRoute(s string) (Route, error) {
	s = strings.Trim(strings.TrimSpace(s), "/")
	switch s {
	case "", "list":
		return ListRoute, nil
	case "add":
		return AddRoute, nil
	}

	name, idStr, ok := strings.Cut(s, "/")
	if !ok {
		return Route{}, fmt.Errorf("unknown route %q", s)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return Route{}, fmt.Errorf("invalid appointment id in route %q", s)
	}

	switch name {
	case "edit":
		return EditRoute(id), nil
	case "details":
		return DetailsRoute(id), nil
	default:
		return Route{}, fmt.Errorf("unknown route %q", s)
	}
}
