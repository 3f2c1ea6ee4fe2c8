// Package application contains the use-case services of the voting session:
// the PIN gate, the per-category selection controller, the session navigator,
// and the bulk submission client.
package application

import "errors"

// Error kinds surfaced to the driving adapter. Each one maps to a distinct
// user-visible outcome; none of them triggers an automatic retry.
var (
	// ErrMalformedPIN rejects input that does not match the required PIN
	// format. Raised locally, before any network call.
	ErrMalformedPIN = errors.New("pin must be numeric and of the configured length")

	// ErrUnknownCategory rejects category tokens outside the configured ballot.
	ErrUnknownCategory = errors.New("unknown ballot category")

	// ErrNoRoster means a selection was attempted before the category's
	// candidate list was loaded in this session.
	ErrNoRoster = errors.New("candidate list not loaded for category")

	// ErrUnknownCandidate rejects a choice whose number is not in the most
	// recently fetched roster for its category.
	ErrUnknownCandidate = errors.New("candidate not in current list")

	// ErrIncompleteBallot means at least one category lacks a valid selection
	// at submission time.
	ErrIncompleteBallot = errors.New("not every category has a selection")

	// ErrSubmitInFlight means a submission is already outstanding; the second
	// trigger is dropped rather than queued.
	ErrSubmitInFlight = errors.New("a submission is already in progress")

	// ErrAlreadyVoted means the session is terminal: the ballot was confirmed
	// earlier, or the backend reported the PIN as spent.
	ErrAlreadyVoted = errors.New("this device or pin has already voted")
)
