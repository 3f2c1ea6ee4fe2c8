package application_test

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/votebooth/internal/domain/model"
)

// mockVotingAPI implements driven.VotingAPI with overridable behavior.
type mockVotingAPI struct {
	verifyPINFunc       func(ctx context.Context, pin string) (model.VerifyResult, error)
	fetchCandidatesFunc func(ctx context.Context, cat model.Category) ([]model.Candidate, error)
	submitBallotFunc    func(ctx context.Context, ballot model.Ballot) (*model.Receipt, error)
	fetchResultsFunc    func(ctx context.Context) ([]model.CategoryResult, error)
}

func (m *mockVotingAPI) VerifyPIN(ctx context.Context, pin string) (model.VerifyResult, error) {
	if m.verifyPINFunc != nil {
		return m.verifyPINFunc(ctx, pin)
	}
	return model.VerifyResult{}, errors.New("verifyPINFunc not set")
}

func (m *mockVotingAPI) FetchCandidates(ctx context.Context, cat model.Category) ([]model.Candidate, error) {
	if m.fetchCandidatesFunc != nil {
		return m.fetchCandidatesFunc(ctx, cat)
	}
	return nil, errors.New("fetchCandidatesFunc not set")
}

func (m *mockVotingAPI) SubmitBallot(ctx context.Context, ballot model.Ballot) (*model.Receipt, error) {
	if m.submitBallotFunc != nil {
		return m.submitBallotFunc(ctx, ballot)
	}
	return nil, errors.New("submitBallotFunc not set")
}

func (m *mockVotingAPI) FetchResults(ctx context.Context) ([]model.CategoryResult, error) {
	if m.fetchResultsFunc != nil {
		return m.fetchResultsFunc(ctx)
	}
	return nil, errors.New("fetchResultsFunc not set")
}

// testRoster is a small fixed candidate list shared across tests.
func testRoster() []model.Candidate {
	return []model.Candidate{
		{Number: 1, Name: "Alex Tan", Department: "Engineering"},
		{Number: 2, Name: "Sam Wu", Department: "Business"},
		{Number: 3, Name: "Dana Lee", Department: "Physics"},
	}
}

func fixedReceipt(msg string) *model.Receipt {
	return &model.Receipt{Message: msg, SubmittedAt: time.Now().UTC()}
}
