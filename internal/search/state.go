package search

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/shopora-app/shopora-backend/internal/catalog"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	"github.com/shopora-app/shopora-backend/pkg/pagination"
)

// Default price window in minor units, 0 to 1000 whole units.
const (
	DefaultPriceMinCents = 0
	DefaultPriceMaxCents = 100_000
)

// FilterState is one user's current search view. All transitions are value
// semantics, the receiver is never mutated.
type FilterState struct {
	Query         string           `json:"query"`
	Category      *uuid.UUID       `json:"category,omitempty"`
	Shop          *uuid.UUID       `json:"shop,omitempty"`
	PriceMinCents int              `json:"priceMinCents"`
	PriceMaxCents int              `json:"priceMaxCents"`
	MinRating     *float64         `json:"minRating,omitempty"`
	Sort          enums.SortOption `json:"sort"`
	InStockOnly   bool             `json:"inStockOnly"`
	OnSaleOnly    bool             `json:"onSaleOnly"`
	Brands        map[string]bool  `json:"brands,omitempty"`
	ViewMode      enums.ViewMode   `json:"viewMode"`
	Page          int              `json:"page"`
	PageSize      int              `json:"pageSize"`
}

// NewFilterState returns the documented defaults.
func NewFilterState() FilterState {
	return FilterState{
		PriceMinCents: DefaultPriceMinCents,
		PriceMaxCents: DefaultPriceMaxCents,
		Sort:          enums.SortRelevance,
		ViewMode:      enums.ViewModeGrid,
		Page:          1,
		PageSize:      pagination.DefaultPageSize,
	}
}

// Changing any filter invalidates the current page.
func (s FilterState) resetPage() FilterState {
	s.Page = 1
	return s
}

func (s FilterState) SetQuery(query string) FilterState {
	s.Query = strings.TrimSpace(query)
	return s.resetPage()
}

func (s FilterState) SetCategory(categoryID *uuid.UUID) FilterState {
	s.Category = categoryID
	return s.resetPage()
}

func (s FilterState) SetShop(shopID *uuid.UUID) FilterState {
	s.Shop = shopID
	return s.resetPage()
}

// SetPriceRange keeps min at or below max by swapping an inverted pair.
func (s FilterState) SetPriceRange(minCents, maxCents int) FilterState {
	if minCents < 0 {
		minCents = 0
	}
	if maxCents < minCents {
		minCents, maxCents = maxCents, minCents
	}
	s.PriceMinCents = minCents
	s.PriceMaxCents = maxCents
	return s.resetPage()
}

func (s FilterState) SetMinRating(rating *float64) FilterState {
	if rating != nil {
		clamped := *rating
		if clamped < 1 {
			clamped = 1
		}
		if clamped > 5 {
			clamped = 5
		}
		rating = &clamped
	}
	s.MinRating = rating
	return s.resetPage()
}

func (s FilterState) SetSort(sortOption enums.SortOption) FilterState {
	if !sortOption.IsValid() {
		sortOption = enums.SortRelevance
	}
	s.Sort = sortOption
	return s.resetPage()
}

func (s FilterState) SetInStockOnly(on bool) FilterState {
	s.InStockOnly = on
	return s.resetPage()
}

func (s FilterState) SetOnSaleOnly(on bool) FilterState {
	s.OnSaleOnly = on
	return s.resetPage()
}

// SetBrand toggles one brand flag. The map is copied so prior states stay
// untouched.
func (s FilterState) SetBrand(brand string, on bool) FilterState {
	brand = strings.ToLower(strings.TrimSpace(brand))
	if brand == "" {
		return s
	}
	brands := make(map[string]bool, len(s.Brands)+1)
	for k, v := range s.Brands {
		brands[k] = v
	}
	if on {
		brands[brand] = true
	} else {
		delete(brands, brand)
	}
	if len(brands) == 0 {
		brands = nil
	}
	s.Brands = brands
	return s.resetPage()
}

func (s FilterState) SetViewMode(mode enums.ViewMode) FilterState {
	if !mode.IsValid() {
		mode = enums.ViewModeGrid
	}
	s.ViewMode = mode
	return s
}

func (s FilterState) SetPage(page int) FilterState {
	if page < 1 {
		page = 1
	}
	s.Page = page
	return s
}

func (s FilterState) SetPageSize(size int) FilterState {
	if size < 1 {
		size = pagination.DefaultPageSize
	}
	s.PageSize = size
	return s.resetPage()
}

// ClearFilters resets every filter field to its default in one step. The
// view mode survives, it is a display preference rather than a filter.
func (s FilterState) ClearFilters() FilterState {
	next := NewFilterState()
	next.ViewMode = s.ViewMode
	next.PageSize = s.PageSize
	return next
}

// Result is one derived page over a fetched product list.
type Result struct {
	Items      []catalog.ProductDTO `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}

// Apply derives the filtered, sorted page from a fetched slice. The input
// order is the relevance order and the tie-break for every sort.
func (s FilterState) Apply(products []catalog.ProductDTO) Result {
	filtered := make([]catalog.ProductDTO, 0, len(products))
	for _, p := range products {
		if s.matches(p) {
			filtered = append(filtered, p)
		}
	}
	s.sortProducts(filtered)

	page := pagination.NormalizePage(s.Page, s.PageSize)
	start, end := page.Bounds(len(filtered))
	totalPages := (len(filtered) + page.Size - 1) / page.Size

	return Result{
		Items:      filtered[start:end],
		Total:      len(filtered),
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: totalPages,
	}
}

func (s FilterState) matches(p catalog.ProductDTO) bool {
	if query := strings.ToLower(s.Query); query != "" {
		name := strings.ToLower(p.Name)
		category := strings.ToLower(p.Category.Name)
		brand := ""
		if p.Brand != nil {
			brand = strings.ToLower(*p.Brand)
		}
		if !strings.Contains(name, query) && !strings.Contains(category, query) && !strings.Contains(brand, query) {
			return false
		}
	}
	if s.Category != nil {
		if p.Category.ID == nil || *p.Category.ID != *s.Category {
			return false
		}
	}
	if s.Shop != nil && p.ShopID != *s.Shop {
		return false
	}
	price := effectivePriceCents(p)
	if price < s.PriceMinCents || price > s.PriceMaxCents {
		return false
	}
	if s.MinRating != nil && p.Rating < *s.MinRating {
		return false
	}
	if s.InStockOnly && !p.InStock {
		return false
	}
	if s.OnSaleOnly && p.SalePriceCents == nil {
		return false
	}
	if len(s.Brands) > 0 {
		if p.Brand == nil || !s.Brands[strings.ToLower(*p.Brand)] {
			return false
		}
	}
	return true
}

func (s FilterState) sortProducts(products []catalog.ProductDTO) {
	switch s.Sort {
	case enums.SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	case enums.SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return effectivePriceCents(products[i]) < effectivePriceCents(products[j])
		})
	case enums.SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return effectivePriceCents(products[i]) > effectivePriceCents(products[j])
		})
	case enums.SortRating:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating > products[j].Rating
		})
	case enums.SortPopularity:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Popularity > products[j].Popularity
		})
	default:
		// Relevance keeps the fetch order.
	}
}

func effectivePriceCents(p catalog.ProductDTO) int {
	if p.SalePriceCents != nil {
		return *p.SalePriceCents
	}
	return p.PriceCents
}
