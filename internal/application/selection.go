package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/votebooth/internal/domain/model"
	"github.com/ericfisherdev/votebooth/internal/domain/port/driven"
)

// CategoryPage is everything the booth needs to render one selection page.
type CategoryPage struct {
	Category   model.Category
	Candidates []model.Candidate
	// Selected is the restored prior choice, nil when none survives
	// reconciliation against the fresh roster.
	Selected *model.Selection
	// Featured is a representative candidate shown in the detail pane when
	// nothing is selected. Display only; it never enables advancing.
	Featured *model.Candidate
	// CanAdvance is true only when Selected is non-nil.
	CanAdvance bool
}

// SelectionService is the per-category selection controller: it loads the
// candidate roster, reconciles any stored choice against it, and records new
// choices.
type SelectionService struct {
	store      driven.SessionStore
	api        driven.VotingAPI
	categories []model.Category
}

// NewSelectionService creates a SelectionService over the configured ballot.
func NewSelectionService(store driven.SessionStore, api driven.VotingAPI, categories []model.Category) *SelectionService {
	return &SelectionService{store: store, api: api, categories: categories}
}

// LoadPage fetches the roster for one category and assembles its page.
//
// A stored selection survives only if its candidate number is still present in
// the freshly fetched roster; otherwise it is discarded from the store, and
// the page comes back unselected. An empty roster yields a page with no
// candidates and CanAdvance false; reconciliation still runs, so a choice made
// against a since-withdrawn list is discarded rather than silently kept.
func (s *SelectionService) LoadPage(ctx context.Context, raw string) (*CategoryPage, error) {
	cat, err := s.resolve(raw)
	if err != nil {
		return nil, err
	}

	roster, err := s.api.FetchCandidates(ctx, cat)
	if err != nil {
		return nil, fmt.Errorf("load %s page: %w", cat, err)
	}

	page := &CategoryPage{Category: cat, Candidates: roster}

	if err := s.store.SetRoster(ctx, cat, roster); err != nil {
		// Roster caching is best-effort: the page still renders, but
		// stale-selection checks after a restart lose this fetch.
		slog.Warn("could not record roster", "category", cat, "error", err)
	}

	stored, err := s.store.Selection(ctx, cat)
	if err != nil {
		return nil, fmt.Errorf("load %s selection: %w", cat, err)
	}

	if stored != nil {
		if model.FindCandidate(roster, stored.Candidate.Number) != nil {
			page.Selected = stored
			page.CanAdvance = true
		} else {
			// The stored choice points at a candidate that no longer exists.
			// Discard it; the voter simply has no selection yet.
			slog.Info("discarding stale selection",
				"category", cat,
				"candidate", stored.Candidate.Number,
			)
			if err := s.store.ClearSelection(ctx, cat); err != nil {
				slog.Warn("could not clear stale selection", "category", cat, "error", err)
			}
		}
	}

	if page.Selected == nil && len(roster) > 0 {
		page.Featured = &roster[0]
	}

	return page, nil
}

// Select records the voter's choice for a category, replacing any prior one.
// The number must belong to the most recently fetched roster; choices against
// unloaded or outdated lists are rejected, never silently stored.
func (s *SelectionService) Select(ctx context.Context, raw string, number int) (*model.Selection, error) {
	cat, err := s.resolve(raw)
	if err != nil {
		return nil, err
	}

	roster, err := s.store.Roster(ctx, cat)
	if err != nil {
		return nil, fmt.Errorf("read %s roster: %w", cat, err)
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("%s: %w", cat, ErrNoRoster)
	}

	cand := model.FindCandidate(roster, number)
	if cand == nil {
		return nil, fmt.Errorf("%s #%d: %w", cat, number, ErrUnknownCandidate)
	}

	sel := model.Selection{Category: cat, Candidate: *cand, ChosenAt: time.Now().UTC()}
	if err := s.store.SetSelection(ctx, sel); err != nil {
		return nil, fmt.Errorf("persist %s selection: %w", cat, err)
	}

	return &sel, nil
}

// resolve normalizes a raw category token and checks it against the ballot.
func (s *SelectionService) resolve(raw string) (model.Category, error) {
	cat := model.NormalizeCategory(raw)
	if model.CategoryIndex(s.categories, cat) < 0 {
		return "", fmt.Errorf("%q: %w", raw, ErrUnknownCategory)
	}
	return cat, nil
}
