package model

// Candidate is an immutable snapshot of a candidate as presented to the voter
// at selection time. Number is the contest-scoped candidate number, distinct
// from any database identifier, and is unique within a category.
type Candidate struct {
	Number     int
	Name       string
	Department string
	ImageURL   string // Empty when the backend sent null.
}

// FindCandidate returns the candidate with the given number from a roster,
// or nil if no such candidate exists.
func FindCandidate(roster []Candidate, number int) *Candidate {
	for i := range roster {
		if roster[i].Number == number {
			return &roster[i]
		}
	}
	return nil
}
