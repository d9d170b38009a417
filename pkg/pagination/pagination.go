package pagination

const (
	// DefaultLimit is the standard row cap when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
	// DefaultPageSize is the page size for offset-style search pagination.
	DefaultPageSize = 12
)

// Page holds offset-style pagination inputs used by the search surface.
type Page struct {
	Number int
	Size   int
}

// NormalizePage clamps page/size to sane values (page ≥ 1, size > 0).
func NormalizePage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxLimit {
		size = MaxLimit
	}
	return Page{Number: number, Size: size}
}

// Bounds returns the half-open [start, end) slice bounds for a collection of
// the given length.
func (p Page) Bounds(length int) (int, int) {
	start := (p.Number - 1) * p.Size
	if start > length {
		start = length
	}
	end := start + p.Size
	if end > length {
		end = length
	}
	return start, end
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
