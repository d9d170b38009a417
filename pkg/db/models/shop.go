package models

import (
	"time"

	"github.com/google/uuid"
)

// Shop is a storefront vendor page.
type Shop struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID uuid.UUID `gorm:"column:owner_user_id;type:uuid;not null"`
	Name        string    `gorm:"column:name;not null"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex:shops_slug_key"`
	Description *string   `gorm:"column:description"`
	LogoURL     *string   `gorm:"column:logo_url"`
	Rating      float64   `gorm:"column:rating;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// ShopFollow links a user to a shop they follow.
type ShopFollow struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:shop_follows_user_id_idx;uniqueIndex:shop_follows_user_shop_key"`
	ShopID    uuid.UUID `gorm:"column:shop_id;type:uuid;not null;index:shop_follows_shop_id_idx;uniqueIndex:shop_follows_user_shop_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
