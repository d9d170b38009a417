package shops

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopora-app/shopora-backend/pkg/db/models"
)

// ShopDTO is the camelCase wire shape for a shop page.
type ShopDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	LogoURL     *string   `json:"logoUrl,omitempty"`
	Rating      float64   `json:"rating"`
	Followers   int64     `json:"followers"`
	Following   bool      `json:"following"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toShopDTO(shop models.Shop, followers int64, following bool) ShopDTO {
	return ShopDTO{
		ID:          shop.ID,
		Name:        shop.Name,
		Slug:        shop.Slug,
		Description: shop.Description,
		LogoURL:     shop.LogoURL,
		Rating:      shop.Rating,
		Followers:   followers,
		Following:   following,
		CreatedAt:   shop.CreatedAt,
	}
}
