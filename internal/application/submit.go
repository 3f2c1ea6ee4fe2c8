package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ericfisherdev/votebooth/internal/domain/model"
	"github.com/ericfisherdev/votebooth/internal/domain/port/driven"
)

// SubmitService is the bulk submission client. It builds the ballot fresh
// from store state, issues exactly one request per attempt, and never retries
// on its own: a write with uncertain server-side effect is surfaced to the
// voter for an explicit re-attempt instead.
type SubmitService struct {
	store      driven.SessionStore
	api        driven.VotingAPI
	categories []model.Category
	inFlight   atomic.Bool
}

// NewSubmitService creates a SubmitService over the configured ballot.
func NewSubmitService(store driven.SessionStore, api driven.VotingAPI, categories []model.Category) *SubmitService {
	return &SubmitService{store: store, api: api, categories: categories}
}

// Submit sends all persisted selections in one atomic request.
//
// Completeness is re-verified here even though the navigator gates entry to
// ReadyToSubmit: store contents can change between page loads. Selections are
// cleared only after a confirmed success; every failure path leaves them
// intact so the voter never re-chooses on retry. Concurrent calls are
// single-flight: the loser gets ErrSubmitInFlight.
func (s *SubmitService) Submit(ctx context.Context) (*model.Receipt, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer s.inFlight.Store(false)

	votedAt, err := s.store.VotedAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("read voted marker: %w", err)
	}
	if votedAt != nil {
		return nil, ErrAlreadyVoted
	}

	pin, err := s.store.Credential(ctx)
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}
	if pin == "" {
		return nil, model.ErrNotAuthenticated
	}

	deviceID, err := s.store.DeviceID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read device id: %w", err)
	}

	ballot := model.Ballot{PIN: pin, DeviceID: deviceID, Votes: make([]model.BallotEntry, 0, len(s.categories))}
	for _, cat := range s.categories {
		sel, err := s.store.Selection(ctx, cat)
		if err != nil {
			return nil, fmt.Errorf("read %s selection: %w", cat, err)
		}
		if sel == nil {
			return nil, fmt.Errorf("%s: %w", cat, ErrIncompleteBallot)
		}
		roster, err := s.store.Roster(ctx, cat)
		if err != nil {
			return nil, fmt.Errorf("read %s roster: %w", cat, err)
		}
		if len(roster) > 0 && model.FindCandidate(roster, sel.Candidate.Number) == nil {
			// The choice no longer matches the candidate list it was made
			// against; the voter has to pick again.
			return nil, fmt.Errorf("%s: %w", cat, ErrIncompleteBallot)
		}
		ballot.Votes = append(ballot.Votes, model.BallotEntry{
			Category:        cat,
			CandidateNumber: sel.Candidate.Number,
		})
	}

	receipt, err := s.api.SubmitBallot(ctx, ballot)
	if err != nil {
		// Rejections and transport failures alike leave the selections in
		// place; the server owns idempotency for any duplicate that may have
		// landed despite the error.
		return nil, err
	}

	if err := s.store.ClearSelections(ctx); err != nil {
		slog.Warn("could not clear selections after submission", "error", err)
	}
	if err := s.store.MarkVoted(ctx, time.Now().UTC()); err != nil {
		slog.Warn("could not persist voted marker", "error", err)
	}

	slog.Info("ballot submitted", "votes", len(ballot.Votes), "device", deviceID)
	return receipt, nil
}

// Reset wipes the session for a fresh start: credential, selections, and the
// voted marker. The device identity is kept; it only changes when the
// underlying storage is wiped.
func (s *SubmitService) Reset(ctx context.Context) error {
	if err := s.store.ClearSelections(ctx); err != nil {
		return fmt.Errorf("clear selections: %w", err)
	}
	if err := s.store.ClearCredential(ctx); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	if err := s.store.ClearVoted(ctx); err != nil {
		return fmt.Errorf("clear voted marker: %w", err)
	}
	return nil
}
