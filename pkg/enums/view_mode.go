package enums

import "fmt"

// ViewMode captures the product-list layout the user last picked.
type ViewMode string

const (
	ViewModeGrid    ViewMode = "grid"
	ViewModeList    ViewMode = "list"
	ViewModeCompact ViewMode = "compact"
)

var validViewModes = []ViewMode{
	ViewModeGrid,
	ViewModeList,
	ViewModeCompact,
}

// String implements fmt.Stringer.
func (v ViewMode) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ViewMode.
func (v ViewMode) IsValid() bool {
	for _, candidate := range validViewModes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseViewMode converts raw input into a ViewMode.
func ParseViewMode(value string) (ViewMode, error) {
	for _, candidate := range validViewModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid view mode %q", value)
}
