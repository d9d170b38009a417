package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopora-app/shopora-backend/pkg/db/models"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	"github.com/shopora-app/shopora-backend/pkg/pagination"
)

// effectivePriceExpr is the sort key for price ordering: sale price wins when present.
const effectivePriceExpr = "COALESCE(sale_price_cents, price_cents)"

// ListParams are the SQL-level filters for product listings.
type ListParams struct {
	Category  string
	ShopID    *uuid.UUID
	Query     string
	PriceMin  *int
	PriceMax  *int
	MinRating *float64
	OnSale    bool
	InStock   bool
	NewOnly   bool
	Brand     string
	Sort      enums.SortOption
	Page      pagination.Page
}

// Repository encapsulates catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads one active product.
func (r *Repository) FindByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", productID, true).
		First(&product).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindAnyByID loads a product regardless of active state (admin surface).
func (r *Repository) FindAnyByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", productID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns one page of active products plus the total row count for the filters.
func (r *Repository) List(ctx context.Context, params ListParams) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true)

	if trimmed := strings.TrimSpace(params.Category); trimmed != "" {
		query = query.Where("category_name = ?", trimmed)
	}
	if params.ShopID != nil {
		query = query.Where("shop_id = ?", *params.ShopID)
	}
	if trimmed := strings.TrimSpace(params.Query); trimmed != "" {
		pattern := "%" + strings.ToLower(trimmed) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(category_name) LIKE ? OR LOWER(COALESCE(brand, '')) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if params.PriceMin != nil {
		query = query.Where(effectivePriceExpr+" >= ?", *params.PriceMin)
	}
	if params.PriceMax != nil {
		query = query.Where(effectivePriceExpr+" <= ?", *params.PriceMax)
	}
	if params.MinRating != nil {
		query = query.Where("rating >= ?", *params.MinRating)
	}
	if params.OnSale {
		query = query.Where("sale_price_cents IS NOT NULL")
	}
	if params.InStock {
		query = query.Where("stock > 0")
	}
	if params.NewOnly {
		query = query.Where("is_new = ?", true)
	}
	if trimmed := strings.TrimSpace(params.Brand); trimmed != "" {
		query = query.Where("brand = ?", trimmed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := pagination.NormalizePage(params.Page.Number, params.Page.Size)
	offset := (page.Number - 1) * page.Size

	var rows []models.Product
	err := query.
		Order(orderClause(params.Sort)).
		Offset(offset).
		Limit(page.Size).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func orderClause(sort enums.SortOption) string {
	switch sort {
	case enums.SortNewest:
		return "created_at DESC, id DESC"
	case enums.SortPriceAsc:
		return effectivePriceExpr + " ASC, created_at DESC, id DESC"
	case enums.SortPriceDesc:
		return effectivePriceExpr + " DESC, created_at DESC, id DESC"
	case enums.SortRating:
		return "rating DESC, ratings_count DESC, id DESC"
	case enums.SortPopularity, enums.SortRelevance:
		return "popularity DESC, created_at DESC, id DESC"
	default:
		return "popularity DESC, created_at DESC, id DESC"
	}
}

// Categories returns every stored category ordered by name.
func (r *Repository) Categories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

// CategoriesByName resolves stored rows for the provided names. Names without
// a row are simply absent from the result.
func (r *Repository) CategoriesByName(ctx context.Context, names []string) (map[string]models.Category, error) {
	resolved := make(map[string]models.Category, len(names))
	if len(names) == 0 {
		return resolved, nil
	}
	var rows []models.Category
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		resolved[row.Name] = row
	}
	return resolved, nil
}

// ShopOwner returns the owning user for a shop.
func (r *Repository) ShopOwner(ctx context.Context, shopID uuid.UUID) (uuid.UUID, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).
		Select("id", "owner_user_id").
		Where("id = ?", shopID).
		First(&shop).
		Error
	if err != nil {
		return uuid.Nil, err
	}
	return shop.OwnerUserID, nil
}

// Create inserts a product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

// Update persists the provided column changes on a product.
func (r *Repository) Update(ctx context.Context, productID uuid.UUID, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(changes).
		Error
}

// Delete removes a product row outright.
func (r *Repository) Delete(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", productID).
		Delete(&models.Product{}).
		Error
}

// AdjustStock decrements stock after a completed checkout, clamped at zero.
func (r *Repository) AdjustStock(ctx context.Context, productID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("CASE WHEN stock + ? < 0 THEN 0 ELSE stock + ? END", delta, delta)).
		Error
}
