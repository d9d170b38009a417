package shops

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopora-app/shopora-backend/internal/catalog"
	"github.com/shopora-app/shopora-backend/pkg/db/models"
	pkgerrors "github.com/shopora-app/shopora-backend/pkg/errors"
	"github.com/shopora-app/shopora-backend/pkg/logger"
	"github.com/shopora-app/shopora-backend/pkg/pagination"
)

// ProductLister serves the product grid on a shop page.
type ProductLister interface {
	ListProducts(ctx context.Context, params catalog.ListParams) (catalog.ProductPageDTO, error)
}

// ServiceParams groups dependencies for the shops service.
type ServiceParams struct {
	Repo     *Repository
	Products ProductLister
	Logger   *logger.Logger
}

// Service exposes shop pages and follow relationships.
type Service interface {
	GetByID(ctx context.Context, shopID uuid.UUID, viewerID uuid.UUID) (ShopDTO, error)
	GetBySlug(ctx context.Context, slug string, viewerID uuid.UUID) (ShopDTO, error)
	List(ctx context.Context, limit int) ([]ShopDTO, error)
	Products(ctx context.Context, shopID uuid.UUID, page pagination.Page) (catalog.ProductPageDTO, error)
	Follow(ctx context.Context, userID, shopID uuid.UUID) error
	Unfollow(ctx context.Context, userID, shopID uuid.UUID) error
	Followed(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type service struct {
	repo     *Repository
	products ProductLister
	logg     *logger.Logger
}

// NewService builds a shops service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shops repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product lister is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{repo: params.Repo, products: params.Products, logg: params.Logger}, nil
}

func (s *service) GetByID(ctx context.Context, shopID uuid.UUID, viewerID uuid.UUID) (ShopDTO, error) {
	if shopID == uuid.Nil {
		return ShopDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	shop, err := s.repo.FindByID(ctx, shopID)
	if err != nil {
		return ShopDTO{}, wrapShopLookup(err)
	}
	return s.decorate(ctx, *shop, viewerID), nil
}

func (s *service) GetBySlug(ctx context.Context, slug string, viewerID uuid.UUID) (ShopDTO, error) {
	if strings.TrimSpace(slug) == "" {
		return ShopDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "shop slug is required")
	}
	shop, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return ShopDTO{}, wrapShopLookup(err)
	}
	return s.decorate(ctx, *shop, viewerID), nil
}

func (s *service) List(ctx context.Context, limit int) ([]ShopDTO, error) {
	shops, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	items := make([]ShopDTO, 0, len(shops))
	for _, shop := range shops {
		items = append(items, s.decorate(ctx, shop, uuid.Nil))
	}
	return items, nil
}

// Products lists the shop's catalog page. The shop must exist, an empty
// grid on a live shop and a dead link are different answers.
func (s *service) Products(ctx context.Context, shopID uuid.UUID, page pagination.Page) (catalog.ProductPageDTO, error) {
	if shopID == uuid.Nil {
		return catalog.ProductPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	if _, err := s.repo.FindByID(ctx, shopID); err != nil {
		return catalog.ProductPageDTO{}, wrapShopLookup(err)
	}
	return s.products.ListProducts(ctx, catalog.ListParams{ShopID: &shopID, Page: page})
}

// Follow is idempotent, re-following reports success.
func (s *service) Follow(ctx context.Context, userID, shopID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if shopID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	if _, err := s.repo.FindByID(ctx, shopID); err != nil {
		return wrapShopLookup(err)
	}
	if err := s.repo.Follow(ctx, userID, shopID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "follow shop")
	}
	return nil
}

// Unfollow is idempotent, unfollowing an unfollowed shop reports success.
func (s *service) Unfollow(ctx context.Context, userID, shopID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if shopID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	if err := s.repo.Unfollow(ctx, userID, shopID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unfollow shop")
	}
	return nil
}

func (s *service) Followed(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	ids, err := s.repo.FollowedShopIDs(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load followed shops")
	}
	return ids, nil
}

// decorate attaches follower metadata. Count or membership failures log and
// degrade to zero values rather than failing the page.
func (s *service) decorate(ctx context.Context, shop models.Shop, viewerID uuid.UUID) ShopDTO {
	followers, err := s.repo.FollowerCount(ctx, shop.ID)
	if err != nil {
		s.logg.Warn(s.logg.WithShopID(ctx, shop.ID.String()), "follower count failed, serving zero")
		followers = 0
	}
	following := false
	if viewerID != uuid.Nil {
		following, err = s.repo.IsFollowing(ctx, viewerID, shop.ID)
		if err != nil {
			s.logg.Warn(s.logg.WithShopID(ctx, shop.ID.String()), "follow membership lookup failed")
			following = false
		}
	}
	return toShopDTO(shop, followers, following)
}

func wrapShopLookup(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "shop not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
}
