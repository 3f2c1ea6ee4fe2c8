package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/votebooth/internal/domain/model"
)

// SessionStore defines the driven port for per-device session persistence:
// the device identity, the verified PIN credential, one selection per
// category, the last-fetched candidate roster per category, and the terminal
// voted marker. Implementations must be safe for concurrent use.
//
// Absent values are returned as zero values ("" / nil) with a nil error;
// errors are reserved for storage failures.
type SessionStore interface {
	// DeviceID returns the stable device identity, generating and persisting
	// one on first call. Subsequent calls return the same identity until the
	// store is wiped.
	DeviceID(ctx context.Context) (string, error)

	// Credential returns the stored PIN, or "" when none is stored.
	Credential(ctx context.Context) (string, error)
	// SetCredential stores the PIN, replacing any prior one. A device holds at
	// most one credential at a time.
	SetCredential(ctx context.Context, pin string) error
	// ClearCredential removes the stored PIN.
	ClearCredential(ctx context.Context) error

	// Selection returns the stored choice for a category, or nil when absent.
	Selection(ctx context.Context, c model.Category) (*model.Selection, error)
	// SetSelection stores a choice, replacing any prior one for its category.
	SetSelection(ctx context.Context, sel model.Selection) error
	// ClearSelection removes the choice for one category.
	ClearSelection(ctx context.Context, c model.Category) error
	// ClearSelections removes the choices for all categories.
	ClearSelections(ctx context.Context) error

	// Roster returns the most recently fetched candidate list for a category,
	// or nil when no fetch has been recorded.
	Roster(ctx context.Context, c model.Category) ([]model.Candidate, error)
	// SetRoster replaces the recorded candidate list for a category.
	SetRoster(ctx context.Context, c model.Category, roster []model.Candidate) error

	// VotedAt returns when the ballot was confirmed (or the PIN found spent),
	// or nil when the session has not voted.
	VotedAt(ctx context.Context) (*time.Time, error)
	// MarkVoted records the terminal voted marker.
	MarkVoted(ctx context.Context, at time.Time) error
	// ClearVoted removes the voted marker as part of a full reset.
	ClearVoted(ctx context.Context) error
}
