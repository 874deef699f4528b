package session

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned for navigation the current screen does not allow.
var ErrInvalidTransition = errors.New("session: invalid screen transition")

// Screen is the closed set of views a user can be on.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenInicio
	ScreenGestion
)

// Stored page names.
const (
	PaginaInicio  = "inicio"
	PaginaGestion = "gestion"
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "login"
	case ScreenInicio:
		return PaginaInicio
	case ScreenGestion:
		return PaginaGestion
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// Pagina returns the value persisted in the sesiones table. Login is never persisted.
func (s Screen) Pagina() string {
	switch s {
	case ScreenInicio:
		return PaginaInicio
	case ScreenGestion:
		return PaginaGestion
	default:
		return ""
	}
}

// ParsePagina maps a stored page name to a Screen, rejecting anything unknown.
func ParsePagina(raw string) (Screen, error) {
	switch raw {
	case PaginaInicio:
		return ScreenInicio, nil
	case PaginaGestion:
		return ScreenGestion, nil
	default:
		return ScreenLogin, fmt.Errorf("session: unknown pagina %q", raw)
	}
}

// State is the navigation position of a user: a screen plus, on Gestion, the selected centro.
type State struct {
	screen   Screen
	centroID int64
}

// LoggedOut is the unauthenticated state.
func LoggedOut() State {
	return State{screen: ScreenLogin}
}

// Authenticated is the state right after a successful login.
func Authenticated() State {
	return State{screen: ScreenInicio}
}

// Restore rebuilds a state from a stored record.
func Restore(pagina string, centro *int64) (State, error) {
	screen, err := ParsePagina(pagina)
	if err != nil {
		return LoggedOut(), err
	}
	if screen == ScreenGestion {
		if centro == nil {
			return LoggedOut(), fmt.Errorf("%w: gestion without centro", ErrInvalidTransition)
		}
		return State{screen: ScreenGestion, centroID: *centro}, nil
	}
	return Authenticated(), nil
}

// Screen returns the current view.
func (s State) Screen() Screen { return s.screen }

// CentroID returns the selected centro, if any.
func (s State) CentroID() (int64, bool) {
	if s.screen != ScreenGestion {
		return 0, false
	}
	return s.centroID, true
}

// CentroPtr returns the selected centro in its nullable stored form.
func (s State) CentroPtr() *int64 {
	id, ok := s.CentroID()
	if !ok {
		return nil
	}
	return &id
}

// SelectCentro moves to the management view of a centro.
func (s State) SelectCentro(id int64) (State, error) {
	if s.screen == ScreenLogin {
		return s, ErrInvalidTransition
	}
	return State{screen: ScreenGestion, centroID: id}, nil
}

// BackToList returns from management to the site list.
func (s State) BackToList() (State, error) {
	if s.screen != ScreenGestion {
		return s, ErrInvalidTransition
	}
	return Authenticated(), nil
}
