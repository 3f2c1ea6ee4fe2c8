package model

import "strings"

// Category identifies one contest within the ballot. The set of categories is
// fixed per election and supplied through configuration; the values here are
// the defaults for the standard five-contest ballot.
type Category string

const (
	CategoryKing     Category = "KING"
	CategoryQueen    Category = "QUEEN"
	CategoryPrince   Category = "PRINCE"
	CategoryPrincess Category = "PRINCESS"
	CategoryCouple   Category = "COUPLE"
)

// DefaultCategories returns the standard ballot order.
func DefaultCategories() []Category {
	return []Category{CategoryKing, CategoryQueen, CategoryPrince, CategoryPrincess, CategoryCouple}
}

// NormalizeCategory canonicalizes a category token. The backend matches
// category path segments case-insensitively, so the client does too.
func NormalizeCategory(raw string) Category {
	return Category(strings.ToUpper(strings.TrimSpace(raw)))
}

// CategoryIndex returns the position of c within the ordered ballot, or -1 if
// c is not part of it.
func CategoryIndex(categories []Category, c Category) int {
	for i, candidate := range categories {
		if candidate == c {
			return i
		}
	}
	return -1
}
