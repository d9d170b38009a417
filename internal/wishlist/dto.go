package wishlist

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopora-app/shopora-backend/pkg/db/models"
)

// EntryDTO is one saved product reference.
type EntryDTO struct {
	ProductID uuid.UUID `json:"productId"`
	AddedAt   time.Time `json:"addedAt"`
}

// ListDTO is the user's full wishlist, loaded wholesale on session start.
type ListDTO struct {
	Items []EntryDTO `json:"items"`
	Count int        `json:"count"`
}

func toEntryDTO(item models.WishlistItem) EntryDTO {
	return EntryDTO{ProductID: item.ProductID, AddedAt: item.CreatedAt}
}

func toListDTO(items []models.WishlistItem) ListDTO {
	dto := ListDTO{Items: make([]EntryDTO, 0, len(items))}
	for _, item := range items {
		dto.Items = append(dto.Items, toEntryDTO(item))
	}
	dto.Count = len(dto.Items)
	return dto
}
