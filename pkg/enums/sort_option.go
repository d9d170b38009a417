package enums

import "fmt"

// SortOption enumerates the catalog/search orderings exposed to clients.
type SortOption string

const (
	SortNewest     SortOption = "newest"
	SortPriceAsc   SortOption = "price-asc"
	SortPriceDesc  SortOption = "price-desc"
	SortRating     SortOption = "rating"
	SortPopularity SortOption = "popularity"
	SortRelevance  SortOption = "relevance"
)

var validSortOptions = []SortOption{
	SortNewest,
	SortPriceAsc,
	SortPriceDesc,
	SortRating,
	SortPopularity,
	SortRelevance,
}

// String implements fmt.Stringer.
func (s SortOption) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SortOption.
func (s SortOption) IsValid() bool {
	for _, candidate := range validSortOptions {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSortOption converts raw input into a SortOption.
func ParseSortOption(value string) (SortOption, error) {
	for _, candidate := range validSortOptions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort option %q", value)
}
