package model

import "errors"

// Phase names the distinct stages of a voting session.
type Phase string

const (
	// PhaseUnauthenticated is the initial state: no verified PIN on this device.
	PhaseUnauthenticated Phase = "unauthenticated"
	// PhaseCategory means the voter is choosing within one contest category.
	PhaseCategory Phase = "category"
	// PhaseReadyToSubmit means every category holds a valid selection.
	PhaseReadyToSubmit Phase = "ready_to_submit"
	// PhaseVoted is terminal: the ballot was confirmed, or the backend reported
	// the PIN as already spent. No transition leaves it except an explicit reset.
	PhaseVoted Phase = "voted"
)

// Transition errors. Illegal moves are rejected explicitly rather than being
// silently absorbed.
var (
	ErrNotAuthenticated  = errors.New("session is not authenticated")
	ErrSelectionRequired = errors.New("a selection is required before advancing")
	ErrSessionTerminal   = errors.New("session has already voted")
	ErrAtFirstCategory   = errors.New("already at the first category")
	ErrNotReadyToSubmit  = errors.New("not all categories have a selection")
)

// SessionState is the explicit state machine over the ordered category
// sequence. It is a pure value; all mutation happens through the transition
// methods, which return the successor state or an error.
type SessionState struct {
	Phase      Phase
	Categories []Category
	// Index is the position within Categories; meaningful only in PhaseCategory.
	Index int
}

// NewSessionState returns the initial, unauthenticated state over the given
// ballot order.
func NewSessionState(categories []Category) SessionState {
	return SessionState{Phase: PhaseUnauthenticated, Categories: categories}
}

// Current returns the category the session is positioned at, if any.
func (s SessionState) Current() (Category, bool) {
	if s.Phase != PhaseCategory || s.Index < 0 || s.Index >= len(s.Categories) {
		return "", false
	}
	return s.Categories[s.Index], true
}

// Authenticate moves an unauthenticated session forward after a successful PIN
// verification. A spent PIN lands directly in the terminal voted phase.
func (s SessionState) Authenticate(alreadyVoted bool) (SessionState, error) {
	switch s.Phase {
	case PhaseVoted:
		return s, ErrSessionTerminal
	case PhaseUnauthenticated:
		if alreadyVoted {
			s.Phase = PhaseVoted
			return s, nil
		}
		s.Phase = PhaseCategory
		s.Index = 0
		return s, nil
	default:
		// Re-verifying mid-session is a no-op unless the PIN turned out spent.
		if alreadyVoted {
			s.Phase = PhaseVoted
		}
		return s, nil
	}
}

// Advance moves to the next category, or to ReadyToSubmit from the last one.
// hasValidSelection must reflect a persisted, roster-valid choice for the
// current category; without it the transition is rejected.
func (s SessionState) Advance(hasValidSelection bool) (SessionState, error) {
	switch s.Phase {
	case PhaseUnauthenticated:
		return s, ErrNotAuthenticated
	case PhaseVoted:
		return s, ErrSessionTerminal
	case PhaseReadyToSubmit:
		return s, nil
	}

	if !hasValidSelection {
		return s, ErrSelectionRequired
	}

	if s.Index == len(s.Categories)-1 {
		s.Phase = PhaseReadyToSubmit
		return s, nil
	}
	s.Index++
	return s, nil
}

// Retreat moves back one category. Back navigation never requires a selection.
// From ReadyToSubmit it returns to the last category.
func (s SessionState) Retreat() (SessionState, error) {
	switch s.Phase {
	case PhaseUnauthenticated:
		return s, ErrNotAuthenticated
	case PhaseVoted:
		return s, ErrSessionTerminal
	case PhaseReadyToSubmit:
		s.Phase = PhaseCategory
		s.Index = len(s.Categories) - 1
		return s, nil
	}

	if s.Index == 0 {
		return s, ErrAtFirstCategory
	}
	s.Index--
	return s, nil
}

// MarkVoted records a confirmed submission, entering the terminal phase.
// Only a ReadyToSubmit session may submit.
func (s SessionState) MarkVoted() (SessionState, error) {
	switch s.Phase {
	case PhaseVoted:
		return s, nil
	case PhaseReadyToSubmit:
		s.Phase = PhaseVoted
		return s, nil
	default:
		return s, ErrNotReadyToSubmit
	}
}
