package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one line in a user's cart. Color and size default to the empty
// string so the (user, product, color, size) unique index treats "no variant"
// as a single combination.
type CartItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:cart_items_user_id_idx;uniqueIndex:cart_items_user_variant_key"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:cart_items_user_variant_key"`
	Color          string    `gorm:"column:color;not null;default:'';uniqueIndex:cart_items_user_variant_key"`
	Size           string    `gorm:"column:size;not null;default:'';uniqueIndex:cart_items_user_variant_key"`
	ProductName    string    `gorm:"column:product_name;not null"`
	ImageURL       *string   `gorm:"column:image_url"`
	Quantity       int       `gorm:"column:quantity;not null"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	LineTotalCents int       `gorm:"column:line_total_cents;not null"`
	Position       int       `gorm:"column:position;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
