package driven

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/votebooth/internal/domain/model"
)

// RejectedError reports that the backend understood a request and refused it,
// carrying the server-provided message for display to the voter. It is
// distinct from transport failures, which surface as plain wrapped errors.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected by server (status %d): %s", e.StatusCode, e.Message)
}

// VotingAPI defines the driven port for the election backend.
type VotingAPI interface {
	// VerifyPIN checks a PIN with the backend. An unknown PIN is not an error:
	// it returns {Valid: false, AlreadyVoted: false}. Errors are reserved for
	// transport and server failures.
	VerifyPIN(ctx context.Context, pin string) (model.VerifyResult, error)

	// FetchCandidates returns the candidate roster for one category. An empty
	// roster is returned as an empty slice, not an error.
	FetchCandidates(ctx context.Context, c model.Category) ([]model.Candidate, error)

	// SubmitBallot submits all votes in one atomic request. A server-side
	// rejection (validation or authentication) is returned as *RejectedError
	// with the backend's message; anything else is a transport failure.
	SubmitBallot(ctx context.Context, ballot model.Ballot) (*model.Receipt, error)

	// FetchResults returns the aggregated tallies for all categories.
	FetchResults(ctx context.Context) ([]model.CategoryResult, error)
}
