package model

import "time"

// Selection records the voter's single choice for one category. The full
// candidate snapshot is kept alongside the number so the booth can re-display
// the choice without refetching, mirroring what the roster showed at the time.
type Selection struct {
	Category  Category
	Candidate Candidate
	ChosenAt  time.Time
}
