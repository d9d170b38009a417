package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/shopora-app/shopora-backend/pkg/config"
	"github.com/shopora-app/shopora-backend/pkg/db/models"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	pkgerrors "github.com/shopora-app/shopora-backend/pkg/errors"
	"github.com/shopora-app/shopora-backend/pkg/logger"
	"github.com/shopora-app/shopora-backend/pkg/pagination"
)

const defaultRetryBackoff = 150 * time.Millisecond

// ProductInput carries the writable fields for admin product upserts.
type ProductInput struct {
	ShopID         uuid.UUID
	CategoryName   string
	Name           string
	Description    *string
	ImageURL       *string
	Brand          *string
	Tags           []string
	Colors         []string
	Sizes          []string
	PriceCents     int
	SalePriceCents *int
	Currency       string
	Stock          int
	IsNew          bool
	IsActive       bool
}

// Actor identifies who is performing an admin operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo   *Repository
	Logger *logger.Logger
	Config config.CatalogConfig
}

// Service exposes catalog reads plus the thin admin CRUD surface.
type Service interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (ProductDTO, error)
	ListProducts(ctx context.Context, params ListParams) (ProductPageDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateProduct(ctx context.Context, actor Actor, input ProductInput) (ProductDTO, error)
	UpdateProduct(ctx context.Context, actor Actor, productID uuid.UUID, input ProductInput) (ProductDTO, error)
	DeleteProduct(ctx context.Context, actor Actor, productID uuid.UUID) error
}

type service struct {
	repo    *Repository
	logg    *logger.Logger
	retries uint64
	backoff retry.Backoff
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	retries := params.Config.QueryRetries
	if retries < 0 {
		retries = 0
	}
	backoff := params.Config.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	return &service{
		repo:    params.Repo,
		logg:    params.Logger,
		retries: uint64(retries),
		backoff: retry.NewConstant(backoff),
	}, nil
}

// GetProduct loads one listing with its category resolved.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (ProductDTO, error) {
	if productID == uuid.Nil {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var product *models.Product
	err := s.withRetry(ctx, "find product", func(ctx context.Context) error {
		found, err := s.repo.FindByID(ctx, productID)
		if err != nil {
			return err
		}
		product = found
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	categories, err := s.repo.CategoriesByName(ctx, []string{product.CategoryName})
	if err != nil {
		// Name-only category is a legal shape; keep serving.
		s.logg.Warn(ctx, "category resolution failed, serving name-only category")
		return toProductDTO(*product, nil), nil
	}
	return toProductDTO(*product, categoryPtr(categories, product.CategoryName)), nil
}

// ListProducts returns one filtered page of listings.
func (s *service) ListProducts(ctx context.Context, params ListParams) (ProductPageDTO, error) {
	if params.Sort != "" && !params.Sort.IsValid() {
		return ProductPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid sort option")
	}

	var (
		rows  []models.Product
		total int64
	)
	err := s.withRetry(ctx, "list products", func(ctx context.Context) error {
		listed, count, err := s.repo.List(ctx, params)
		if err != nil {
			return err
		}
		rows, total = listed, count
		return nil
	})
	if err != nil {
		return ProductPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.CategoryName)
	}
	categories, err := s.repo.CategoriesByName(ctx, names)
	if err != nil {
		s.logg.Warn(ctx, "category resolution failed, serving name-only categories")
		categories = nil
	}

	items := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toProductDTO(row, categoryPtr(categories, row.CategoryName)))
	}

	page := pagination.NormalizePage(params.Page.Number, params.Page.Size)
	return ProductPageDTO{
		Items:      items,
		Page:       page.Number,
		PageSize:   page.Size,
		Total:      total,
		TotalPages: totalPages(total, page.Size),
	}, nil
}

// ListCategories returns the stored category rows.
func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	var rows []models.Category
	err := s.withRetry(ctx, "list categories", func(ctx context.Context) error {
		listed, err := s.repo.Categories(ctx)
		if err != nil {
			return err
		}
		rows = listed
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}

	items := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toCategoryDTO(row))
	}
	return items, nil
}

// CreateProduct inserts a listing after authorization and input checks.
func (s *service) CreateProduct(ctx context.Context, actor Actor, input ProductInput) (ProductDTO, error) {
	if err := s.authorizeShopWrite(ctx, actor, input.ShopID); err != nil {
		return ProductDTO{}, err
	}
	if err := validateProductInput(input); err != nil {
		return ProductDTO{}, err
	}

	product := productFromInput(input)
	product.ID = uuid.New()
	if err := s.repo.Create(ctx, product); err != nil {
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return toProductDTO(*product, nil), nil
}

// UpdateProduct applies the full input to an existing listing.
func (s *service) UpdateProduct(ctx context.Context, actor Actor, productID uuid.UUID, input ProductInput) (ProductDTO, error) {
	if productID == uuid.Nil {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	existing, err := s.repo.FindAnyByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.authorizeShopWrite(ctx, actor, existing.ShopID); err != nil {
		return ProductDTO{}, err
	}
	if err := validateProductInput(input); err != nil {
		return ProductDTO{}, err
	}

	changes := map[string]any{
		"category_name":    strings.TrimSpace(input.CategoryName),
		"name":             strings.TrimSpace(input.Name),
		"description":      input.Description,
		"image_url":        input.ImageURL,
		"brand":            input.Brand,
		"tags":             pqArray(input.Tags),
		"colors":           pqArray(input.Colors),
		"sizes":            pqArray(input.Sizes),
		"price_cents":      input.PriceCents,
		"sale_price_cents": input.SalePriceCents,
		"currency":         normalizeCurrency(input.Currency),
		"stock":            input.Stock,
		"is_new":           input.IsNew,
		"is_active":        input.IsActive,
	}
	if err := s.repo.Update(ctx, productID, changes); err != nil {
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	updated, err := s.repo.FindAnyByID(ctx, productID)
	if err != nil {
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
	}
	return toProductDTO(*updated, nil), nil
}

// DeleteProduct removes a listing.
func (s *service) DeleteProduct(ctx context.Context, actor Actor, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	existing, err := s.repo.FindAnyByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.authorizeShopWrite(ctx, actor, existing.ShopID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// authorizeShopWrite gates writes to shop_admin owners of the shop, or admin.
func (s *service) authorizeShopWrite(ctx context.Context, actor Actor, shopID uuid.UUID) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !actor.Role.Satisfies(enums.RoleShopAdmin) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "shop admin role required")
	}
	if shopID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	if actor.Role == enums.RoleAdmin {
		return nil
	}

	owner, err := s.repo.ShopOwner(ctx, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "shop not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	if owner != actor.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not the owner of this shop")
	}
	return nil
}

// withRetry reruns read queries a fixed number of times before giving up.
// Not-found is terminal, never retried.
func (s *service) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempt := 0
	return retry.Do(ctx, retry.WithMaxRetries(s.retries, s.backoff), func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if attempt <= int(s.retries) {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"op": op, "attempt": attempt}), "catalog query failed, retrying")
		}
		return retry.RetryableError(err)
	})
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if strings.TrimSpace(input.CategoryName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if input.PriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.SalePriceCents != nil && *input.SalePriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale price must not be negative")
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	return nil
}

func productFromInput(input ProductInput) *models.Product {
	return &models.Product{
		ShopID:         input.ShopID,
		CategoryName:   strings.TrimSpace(input.CategoryName),
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		ImageURL:       input.ImageURL,
		Brand:          input.Brand,
		Tags:           pqArray(input.Tags),
		Colors:         pqArray(input.Colors),
		Sizes:          pqArray(input.Sizes),
		PriceCents:     input.PriceCents,
		SalePriceCents: input.SalePriceCents,
		Currency:       normalizeCurrency(input.Currency),
		Stock:          input.Stock,
		IsNew:          input.IsNew,
		IsActive:       input.IsActive,
	}
}

func pqArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}

func normalizeCurrency(code string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		return "USD"
	}
	return trimmed
}

func categoryPtr(categories map[string]models.Category, name string) *models.Category {
	if categories == nil {
		return nil
	}
	if row, ok := categories[name]; ok {
		return &row
	}
	return nil
}

func totalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	pages := int(total) / size
	if int(total)%size != 0 {
		pages++
	}
	return pages
}
