package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopora-app/shopora-backend/internal/notifications"
	"github.com/shopora-app/shopora-backend/pkg/db/models"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	pkgerrors "github.com/shopora-app/shopora-backend/pkg/errors"
	"github.com/shopora-app/shopora-backend/pkg/logger"
)

// ProductFinder resolves active listings for stock and price checks.
type ProductFinder interface {
	FindByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
}

// AddInput describes one add-to-cart request.
type AddInput struct {
	ProductID uuid.UUID
	Quantity  int
	Color     string
	Size      string
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo     *Repository
	Products ProductFinder
	Notifier notifications.Publisher
	Logger   *logger.Logger
}

// Service owns one cart per user, merged by (product, color, size).
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (CartDTO, error)
	AddToCart(ctx context.Context, userID uuid.UUID, input AddInput) (CartDTO, error)
	RemoveFromCart(ctx context.Context, userID, itemID uuid.UUID) (CartDTO, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (CartDTO, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
	CartCount(ctx context.Context, userID uuid.UUID) (int, error)
	CartTotal(ctx context.Context, userID uuid.UUID) (int, error)
	IsInCart(ctx context.Context, userID, productID uuid.UUID, color, size *string) (bool, error)
}

type service struct {
	repo     *Repository
	products ProductFinder
	notifier notifications.Publisher
	logg     *logger.Logger
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product finder is required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notifier is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:     params.Repo,
		products: params.Products,
		notifier: params.Notifier,
		logg:     params.Logger,
	}, nil
}

// GetCart returns the user's cart. Read failures degrade to an empty cart
// so a flaky store never blocks the page.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (CartDTO, error) {
	if userID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	items, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, userID.String()), "cart read failed, serving empty cart")
		return CartDTO{Items: []CartItemDTO{}}, nil
	}
	return toCartDTO(items), nil
}

// AddToCart merges into an existing line when the variant matches, otherwise
// appends. Quantities never exceed the product's stock; a clamped request
// raises a stock-limit notification and keeps the stored quantity.
func (s *service) AddToCart(ctx context.Context, userID uuid.UUID, input AddInput) (CartDTO, error) {
	if userID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if input.ProductID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}
	color := strings.TrimSpace(input.Color)
	size := strings.TrimSpace(input.Size)

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.Stock <= 0 {
		s.notifyStockLimit(ctx, userID, product)
		return s.GetCart(ctx, userID)
	}
	unitPrice := effectiveUnitPrice(product)

	existing, err := s.repo.FindLine(ctx, userID, input.ProductID, color, size)
	switch {
	case err == nil:
		desired := existing.Quantity + input.Quantity
		clamped := clampToStock(desired, product.Stock)
		if clamped < desired {
			s.notifyStockLimit(ctx, userID, product)
		}
		if clamped != existing.Quantity {
			if err := s.repo.SetQuantity(ctx, existing.ID, clamped, unitPrice*clamped); err != nil {
				return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		quantity := clampToStock(input.Quantity, product.Stock)
		if quantity < input.Quantity {
			s.notifyStockLimit(ctx, userID, product)
		}
		position, err := s.repo.NextPosition(ctx, userID)
		if err != nil {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "position cart line")
		}
		line := &models.CartItem{
			UserID:         userID,
			ProductID:      product.ID,
			Color:          color,
			Size:           size,
			ProductName:    product.Name,
			ImageURL:       product.ImageURL,
			Quantity:       quantity,
			UnitPriceCents: unitPrice,
			LineTotalCents: unitPrice * quantity,
			Position:       position,
		}
		if err := s.repo.Insert(ctx, line); err != nil {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart line")
		}
	default:
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}

	return s.GetCart(ctx, userID)
}

// RemoveFromCart deletes one line. Removing an absent line succeeds.
func (s *service) RemoveFromCart(ctx context.Context, userID, itemID uuid.UUID) (CartDTO, error) {
	if userID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if itemID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if err := s.repo.Delete(ctx, userID, itemID); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	return s.GetCart(ctx, userID)
}

// UpdateQuantity sets a line's quantity exactly. Zero and below removes the
// line, amounts past stock clamp to stock with a stock-limit notification.
func (s *service) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (CartDTO, error) {
	if userID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if itemID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, userID, itemID)
	}

	line, err := s.repo.FindByID(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart line not found")
		}
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}

	unitPrice := line.UnitPriceCents
	stock := line.Quantity
	if product, err := s.products.FindByID(ctx, line.ProductID); err == nil {
		stock = product.Stock
		unitPrice = effectiveUnitPrice(product)
	} else {
		s.logg.Warn(ctx, "stock lookup failed, holding current quantity as the cap")
	}

	clamped := clampToStock(quantity, stock)
	if clamped < 1 {
		return s.RemoveFromCart(ctx, userID, itemID)
	}
	if clamped < quantity {
		s.notifier.Publish(ctx, userID, enums.NotificationStockLimit,
			fmt.Sprintf("only %d of %q in stock", stock, line.ProductName))
	}
	if err := s.repo.SetQuantity(ctx, line.ID, clamped, unitPrice*clamped); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}
	return s.GetCart(ctx, userID)
}

// ClearCart empties the cart unconditionally.
func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := s.repo.ClearForUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// CartCount sums quantities across all lines, for the badge.
func (s *service) CartCount(ctx context.Context, userID uuid.UUID) (int, error) {
	dto, err := s.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	return dto.Count, nil
}

// CartTotal sums line totals.
func (s *service) CartTotal(ctx context.Context, userID uuid.UUID) (int, error) {
	dto, err := s.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	return dto.TotalCents, nil
}

// IsInCart reports membership. With color and size it matches the exact
// variant, without them any line holding the product counts.
func (s *service) IsInCart(ctx context.Context, userID, productID uuid.UUID, color, size *string) (bool, error) {
	if userID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if productID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	if color != nil && size != nil {
		_, err := s.repo.FindLine(ctx, userID, productID, strings.TrimSpace(*color), strings.TrimSpace(*size))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
		}
		return true, nil
	}

	lines, err := s.repo.LinesForProduct(ctx, userID, productID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart lines")
	}
	return len(lines) > 0, nil
}

func (s *service) notifyStockLimit(ctx context.Context, userID uuid.UUID, product *models.Product) {
	s.notifier.Publish(ctx, userID, enums.NotificationStockLimit,
		fmt.Sprintf("only %d of %q in stock", product.Stock, product.Name))
}

func effectiveUnitPrice(product *models.Product) int {
	if product.SalePriceCents != nil {
		return *product.SalePriceCents
	}
	return product.PriceCents
}

func clampToStock(quantity, stock int) int {
	if quantity > stock {
		return stock
	}
	return quantity
}
