package application

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/votebooth/internal/domain/model"
	"github.com/ericfisherdev/votebooth/internal/domain/port/driven"
)

// Navigator derives the session's position in the category sequence from
// store contents. Nothing is cached across calls: the store is the only state
// of record, so a reload or a second booth window always lands on the same
// page the persisted selections imply.
type Navigator struct {
	store      driven.SessionStore
	categories []model.Category
}

// NewNavigator creates a Navigator over the configured ballot order.
func NewNavigator(store driven.SessionStore, categories []model.Category) *Navigator {
	return &Navigator{store: store, categories: categories}
}

// State reconstructs the current session state by replaying the legal
// transitions over store contents:
//
//   - a voted marker wins over everything else (terminal),
//   - no credential means unauthenticated,
//   - otherwise the session authenticates and advances through every category
//     holding a roster-valid selection, stopping at the first one without or
//     landing on ReadyToSubmit when none is missing.
func (n *Navigator) State(ctx context.Context) (model.SessionState, error) {
	state := model.NewSessionState(n.categories)

	votedAt, err := n.store.VotedAt(ctx)
	if err != nil {
		return state, fmt.Errorf("read voted marker: %w", err)
	}
	if votedAt != nil {
		return state.Authenticate(true)
	}

	pin, err := n.store.Credential(ctx)
	if err != nil {
		return state, fmt.Errorf("read credential: %w", err)
	}
	if pin == "" {
		return state, nil
	}

	state, err = state.Authenticate(false)
	if err != nil {
		return state, fmt.Errorf("replay authentication: %w", err)
	}

	for state.Phase == model.PhaseCategory {
		cat, ok := state.Current()
		if !ok {
			break
		}
		valid, err := n.hasValidSelection(ctx, cat)
		if err != nil {
			return state, err
		}
		if !valid {
			break
		}
		state, err = state.Advance(true)
		if err != nil {
			return state, fmt.Errorf("replay advance past %s: %w", cat, err)
		}
	}

	return state, nil
}

// CanAdvance reports whether the given category holds a persisted,
// roster-valid selection, the precondition for any forward transition.
func (n *Navigator) CanAdvance(ctx context.Context, cat model.Category) (bool, error) {
	return n.hasValidSelection(ctx, cat)
}

// hasValidSelection checks a stored selection against the last-fetched roster.
// A selection with no recorded roster is trusted: it was validated when made,
// and the next page load re-verifies it against a fresh fetch.
func (n *Navigator) hasValidSelection(ctx context.Context, cat model.Category) (bool, error) {
	sel, err := n.store.Selection(ctx, cat)
	if err != nil {
		return false, fmt.Errorf("read %s selection: %w", cat, err)
	}
	if sel == nil {
		return false, nil
	}

	roster, err := n.store.Roster(ctx, cat)
	if err != nil {
		return false, fmt.Errorf("read %s roster: %w", cat, err)
	}
	if len(roster) > 0 && model.FindCandidate(roster, sel.Candidate.Number) == nil {
		return false, nil
	}

	return true, nil
}
