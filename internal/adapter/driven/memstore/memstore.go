// Package memstore implements the SessionStore port in process memory. It is
// the fallback used when the SQLite file cannot be opened (read-only mounts,
// locked-down kiosk profiles): the session stays usable for the current run,
// at the cost of losing state on restart.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/votebooth/internal/domain/model"
	"github.com/ericfisherdev/votebooth/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*Store)(nil)

// Store is an in-memory SessionStore. Safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	deviceID   string
	pin        string
	selections map[model.Category]model.Selection
	rosters    map[model.Category][]model.Candidate
	votedAt    *time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		selections: make(map[model.Category]model.Selection),
		rosters:    make(map[model.Category][]model.Candidate),
	}
}

// DeviceID returns the process-lifetime device identity, generating one on
// first call.
func (s *Store) DeviceID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deviceID == "" {
		s.deviceID = uuid.NewString()
	}
	return s.deviceID, nil
}

// Credential returns the stored PIN, or "" when absent.
func (s *Store) Credential(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pin, nil
}

// SetCredential stores the PIN, replacing any prior one.
func (s *Store) SetCredential(_ context.Context, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pin = pin
	return nil
}

// ClearCredential removes the stored PIN.
func (s *Store) ClearCredential(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pin = ""
	return nil
}

// Selection returns the stored choice for a category, or nil when absent.
func (s *Store) Selection(_ context.Context, c model.Category) (*model.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.selections[c]
	if !ok {
		return nil, nil
	}
	return &sel, nil
}

// SetSelection stores a choice, replacing any prior one for its category.
func (s *Store) SetSelection(_ context.Context, sel model.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sel.ChosenAt.IsZero() {
		sel.ChosenAt = time.Now().UTC()
	}
	s.selections[sel.Category] = sel
	return nil
}

// ClearSelection removes the choice for one category.
func (s *Store) ClearSelection(_ context.Context, c model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selections, c)
	return nil
}

// ClearSelections removes the choices for all categories.
func (s *Store) ClearSelections(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections = make(map[model.Category]model.Selection)
	return nil
}

// Roster returns the last recorded candidate list for a category, or nil when
// no fetch has been recorded.
func (s *Store) Roster(_ context.Context, c model.Category) ([]model.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roster, ok := s.rosters[c]
	if !ok {
		return nil, nil
	}
	out := make([]model.Candidate, len(roster))
	copy(out, roster)
	return out, nil
}

// SetRoster replaces the recorded candidate list for a category.
func (s *Store) SetRoster(_ context.Context, c model.Category, roster []model.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]model.Candidate, len(roster))
	copy(stored, roster)
	s.rosters[c] = stored
	return nil
}

// VotedAt returns when the session voted, or nil when it has not.
func (s *Store) VotedAt(_ context.Context) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.votedAt == nil {
		return nil, nil
	}
	at := *s.votedAt
	return &at, nil
}

// MarkVoted records the terminal voted marker.
func (s *Store) MarkVoted(_ context.Context, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votedAt = &at
	return nil
}

// ClearVoted removes the voted marker.
func (s *Store) ClearVoted(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votedAt = nil
	return nil
}
