package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopora-app/shopora-backend/pkg/db/models"
)

// CategoryRefKind discriminates the two shapes a product category can take.
type CategoryRefKind string

const (
	CategoryRefNameOnly CategoryRefKind = "name-only"
	CategoryRefFull     CategoryRefKind = "full"
)

// CategoryRef is a tagged union over the two category shapes stored in the
// catalog: a bare name, or a resolved row with id and image. It marshals as a
// plain string in the name-only case and as an object otherwise.
type CategoryRef struct {
	Name     string
	ID       *uuid.UUID
	ImageURL *string
}

// Kind reports which arm of the union this value holds.
func (c CategoryRef) Kind() CategoryRefKind {
	if c.ID == nil {
		return CategoryRefNameOnly
	}
	return CategoryRefFull
}

type categoryRefJSON struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	ImageURL *string   `json:"imageUrl,omitempty"`
}

func (c CategoryRef) MarshalJSON() ([]byte, error) {
	if c.Kind() == CategoryRefNameOnly {
		return json.Marshal(c.Name)
	}
	return json.Marshal(categoryRefJSON{ID: *c.ID, Name: c.Name, ImageURL: c.ImageURL})
}

func (c *CategoryRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*c = CategoryRef{Name: name}
		return nil
	}
	var full categoryRefJSON
	if err := json.Unmarshal(data, &full); err != nil {
		return fmt.Errorf("category must be a string or an object: %w", err)
	}
	id := full.ID
	*c = CategoryRef{Name: full.Name, ID: &id, ImageURL: full.ImageURL}
	return nil
}

// ProductDTO is the camelCase wire shape for a catalog listing. Prices are
// minor currency units.
type ProductDTO struct {
	ID              uuid.UUID   `json:"id"`
	ShopID          uuid.UUID   `json:"shopId"`
	Category        CategoryRef `json:"category"`
	Name            string      `json:"name"`
	Description     *string     `json:"description,omitempty"`
	ImageURL        *string     `json:"imageUrl,omitempty"`
	Brand           *string     `json:"brand,omitempty"`
	Tags            []string    `json:"tags"`
	Colors          []string    `json:"colors"`
	Sizes           []string    `json:"sizes"`
	PriceCents      int         `json:"priceCents"`
	SalePriceCents  *int        `json:"salePriceCents,omitempty"`
	DiscountPercent *int        `json:"discountPercent,omitempty"`
	Currency        string      `json:"currency"`
	Stock           int         `json:"stock"`
	InStock         bool        `json:"inStock"`
	Rating          float64     `json:"rating"`
	RatingsCount    int         `json:"ratingsCount"`
	Popularity      int         `json:"popularity"`
	IsNew           bool        `json:"isNew"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// CategoryDTO is a resolved category row.
type CategoryDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	ImageURL *string   `json:"imageUrl,omitempty"`
}

// ProductPageDTO is one page of listings plus offset pagination metadata.
type ProductPageDTO struct {
	Items      []ProductDTO `json:"items"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	Total      int64        `json:"total"`
	TotalPages int          `json:"totalPages"`
}

// discountPercent derives the rounded percentage off the base price, nil when
// the sale price is absent or not an actual reduction.
func discountPercent(priceCents int, salePriceCents *int) *int {
	if salePriceCents == nil || priceCents <= 0 || *salePriceCents >= priceCents {
		return nil
	}
	price := decimal.NewFromInt(int64(priceCents))
	sale := decimal.NewFromInt(int64(*salePriceCents))
	pct := decimal.NewFromInt(100).Sub(sale.Div(price).Mul(decimal.NewFromInt(100))).Round(0)
	v := int(pct.IntPart())
	return &v
}

func toProductDTO(p models.Product, category *models.Category) ProductDTO {
	ref := CategoryRef{Name: p.CategoryName}
	if category != nil {
		id := category.ID
		ref = CategoryRef{Name: category.Name, ID: &id, ImageURL: category.ImageURL}
	}
	return ProductDTO{
		ID:              p.ID,
		ShopID:          p.ShopID,
		Category:        ref,
		Name:            p.Name,
		Description:     p.Description,
		ImageURL:        p.ImageURL,
		Brand:           p.Brand,
		Tags:            []string(p.Tags),
		Colors:          []string(p.Colors),
		Sizes:           []string(p.Sizes),
		PriceCents:      p.PriceCents,
		SalePriceCents:  p.SalePriceCents,
		DiscountPercent: discountPercent(p.PriceCents, p.SalePriceCents),
		Currency:        p.Currency,
		Stock:           p.Stock,
		InStock:         p.Stock > 0,
		Rating:          p.Rating,
		RatingsCount:    p.RatingsCount,
		Popularity:      p.Popularity,
		IsNew:           p.IsNew,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toCategoryDTO(c models.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, ImageURL: c.ImageURL}
}
