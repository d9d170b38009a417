package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a catalog grouping. ImageURL is optional; categories referenced
// only by name on a product row may have no stored row at all.
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:categories_name_key"`
	ImageURL  *string   `gorm:"column:image_url"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
