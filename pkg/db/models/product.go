package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents the canonical catalog listing. Prices are integer minor
// units; SalePriceCents, when set, is the effective price.
type Product struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID         uuid.UUID      `gorm:"column:shop_id;type:uuid;not null;index:products_shop_id_idx"`
	CategoryID     *uuid.UUID     `gorm:"column:category_id;type:uuid"`
	CategoryName   string         `gorm:"column:category_name;not null"`
	Name           string         `gorm:"column:name;not null"`
	Description    *string        `gorm:"column:description"`
	ImageURL       *string        `gorm:"column:image_url"`
	Brand          *string        `gorm:"column:brand"`
	Tags           pq.StringArray `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	Colors         pq.StringArray `gorm:"column:colors;type:text[];not null;default:ARRAY[]::text[]"`
	Sizes          pq.StringArray `gorm:"column:sizes;type:text[];not null;default:ARRAY[]::text[]"`
	PriceCents     int            `gorm:"column:price_cents;not null"`
	SalePriceCents *int           `gorm:"column:sale_price_cents"`
	Currency       string         `gorm:"column:currency;not null;default:'USD'"`
	Stock          int            `gorm:"column:stock;not null;default:0"`
	Rating         float64        `gorm:"column:rating;not null;default:0"`
	RatingsCount   int            `gorm:"column:ratings_count;not null;default:0"`
	Popularity     int            `gorm:"column:popularity;not null;default:0"`
	IsNew          bool           `gorm:"column:is_new;not null;default:false"`
	IsActive       bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePriceCents prefers the sale price when present.
func (p Product) EffectivePriceCents() int {
	if p.SalePriceCents != nil {
		return *p.SalePriceCents
	}
	return p.PriceCents
}
