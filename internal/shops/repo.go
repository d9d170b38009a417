package shops

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopora-app/shopora-backend/pkg/db/models"
)

// Repository persists shops and their follow relationships.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByID(ctx context.Context, shopID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).Where("id = ?", shopID).First(&shop).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).First(&shop).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// List returns shops ordered by rating, best first.
func (r *Repository) List(ctx context.Context, limit int) ([]models.Shop, error) {
	if limit <= 0 {
		limit = 50
	}
	var shops []models.Shop
	err := r.db.WithContext(ctx).
		Order("rating DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&shops).Error
	if err != nil {
		return nil, err
	}
	return shops, nil
}

// Follow inserts the relationship. A duplicate collapses into the existing
// row through the conflict clause.
func (r *Repository) Follow(ctx context.Context, userID, shopID uuid.UUID) error {
	if userID == uuid.Nil || shopID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	follow := &models.ShopFollow{
		ID:     uuid.New(),
		UserID: userID,
		ShopID: shopID,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "shop_id"}},
			DoNothing: true,
		}).
		Create(follow).Error
}

// Unfollow removes the relationship. Missing rows are not an error.
func (r *Repository) Unfollow(ctx context.Context, userID, shopID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND shop_id = ?", userID, shopID).
		Delete(&models.ShopFollow{}).Error
}

func (r *Repository) IsFollowing(ctx context.Context, userID, shopID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ShopFollow{}).
		Where("user_id = ? AND shop_id = ?", userID, shopID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) FollowerCount(ctx context.Context, shopID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ShopFollow{}).
		Where("shop_id = ?", shopID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// FollowedShopIDs returns every shop the user follows.
func (r *Repository) FollowedShopIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ShopFollow{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("shop_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
