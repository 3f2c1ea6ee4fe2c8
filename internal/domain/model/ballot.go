package model

import "time"

// BallotEntry is one (category, candidate number) pair of a bulk submission.
type BallotEntry struct {
	Category        Category
	CandidateNumber int
}

// Ballot is the aggregate submitted to the backend in a single request. It is
// built fresh from store state on every submit attempt and never persisted.
type Ballot struct {
	PIN      string
	DeviceID string
	Votes    []BallotEntry
}

// VerifyResult is the backend's answer to a PIN verification attempt.
// An unknown PIN yields {false, false}; a spent PIN yields {true, true}.
type VerifyResult struct {
	Valid        bool
	AlreadyVoted bool
}

// Receipt acknowledges a confirmed bulk submission.
type Receipt struct {
	Message     string
	SubmittedAt time.Time
}

// CategoryResult is the aggregated tally for one category as published by the
// backend's results endpoint.
type CategoryResult struct {
	Category   Category
	TotalVotes int64
	Candidates []CandidateResult
}

// CandidateResult is one candidate's line within a category tally.
type CandidateResult struct {
	Number     int
	Name       string
	Department string
	ImageURL   string
	VoteCount  int64
	Percentage float64
}
