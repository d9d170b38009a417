package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopora-app/shopora-backend/pkg/db/models"
)

// CartItemDTO is one cart line as the client sees it.
type CartItemDTO struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"productId"`
	Name           string    `json:"name"`
	ImageURL       *string   `json:"imageUrl,omitempty"`
	Color          string    `json:"color,omitempty"`
	Size           string    `json:"size,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int       `json:"unitPriceCents"`
	LineTotalCents int       `json:"lineTotalCents"`
	AddedAt        time.Time `json:"addedAt"`
}

// CartDTO is the full cart with its derived totals.
type CartDTO struct {
	Items      []CartItemDTO `json:"items"`
	Count      int           `json:"count"`
	TotalCents int           `json:"totalCents"`
}

func toItemDTO(item models.CartItem) CartItemDTO {
	return CartItemDTO{
		ID:             item.ID,
		ProductID:      item.ProductID,
		Name:           item.ProductName,
		ImageURL:       item.ImageURL,
		Color:          item.Color,
		Size:           item.Size,
		Quantity:       item.Quantity,
		UnitPriceCents: item.UnitPriceCents,
		LineTotalCents: item.LineTotalCents,
		AddedAt:        item.CreatedAt,
	}
}

func toCartDTO(items []models.CartItem) CartDTO {
	dto := CartDTO{Items: make([]CartItemDTO, 0, len(items))}
	for _, item := range items {
		dto.Items = append(dto.Items, toItemDTO(item))
		dto.Count += item.Quantity
		dto.TotalCents += item.LineTotalCents
	}
	return dto
}
