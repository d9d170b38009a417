package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopora-app/shopora-backend/pkg/db/models"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	pkgerrors "github.com/shopora-app/shopora-backend/pkg/errors"
	"github.com/shopora-app/shopora-backend/pkg/logger"
)

type fakeProducts struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
}

func (f *fakeProducts) FindByID(_ context.Context, productID uuid.UUID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	return &copied, nil
}

func (f *fakeProducts) add(product *models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.products == nil {
		f.products = map[uuid.UUID]*models.Product{}
	}
	f.products[product.ID] = product
}

type fakeNotifier struct {
	mu    sync.Mutex
	kinds []enums.NotificationKind
}

func (f *fakeNotifier) Publish(_ context.Context, _ uuid.UUID, kind enums.NotificationKind, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
}

func (f *fakeNotifier) count(kind enums.NotificationKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, k := range f.kinds {
		if k == kind {
			total++
		}
	}
	return total
}

func newCartService(t *testing.T) (Service, *fakeProducts, *fakeNotifier, *gorm.DB) {
	t.Helper()

	db := setupCartTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "cart-test"})

	products := &fakeProducts{}
	notifier := &fakeNotifier{}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Products: products,
		Notifier: notifier,
		Logger:   logg,
	})
	require.NoError(t, err)
	return svc, products, notifier, db
}

func stockedProduct(stock, priceCents int, salePriceCents *int) *models.Product {
	return &models.Product{
		ID:             uuid.New(),
		ShopID:         uuid.New(),
		CategoryName:   "shoes",
		Name:           "Trail Shoe",
		PriceCents:     priceCents,
		SalePriceCents: salePriceCents,
		Stock:          stock,
		IsActive:       true,
	}
}

func TestAddToCartMergesVariantLines(t *testing.T) {
	svc, products, notifier, _ := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := stockedProduct(10, 5000, nil)
	products.add(product)

	_, err := svc.AddToCart(ctx, userID, AddInput{ProductID: product.ID, Quantity: 1, Color: "red", Size: "42"})
	require.NoError(t, err)
	dto, err := svc.AddToCart(ctx, userID, AddInput{ProductID: product.ID, Quantity: 2, Color: "red", Size: "42"})
	require.NoError(t, err)

	require.Len(t, dto.Items, 1)
	assert.Equal(t, 3, dto.Items[0].Quantity)
	assert.Equal(t, 15000, dto.Items[0].LineTotalCents)

	// A different variant of the same product is its own line.
	dto, err = svc.AddToCart(ctx, userID, AddInput{ProductID: product.ID, Quantity: 1, Color: "blue", Size: "42"})
	require.NoError(t, err)
	assert.Len(t, dto.Items, 2)
	assert.Equal(t, 4, dto.Count)
	assert.Equal(t, 0, notifier.count(enums.NotificationStockLimit))
}

func TestAddToCartClampsToStock(t *testing.T) {
	svc, products, notifier, _ := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := stockedProduct(2, 5000, nil)
	products.add(product)

	_, err := svc.AddToCart(ctx, userID, AddInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	dto, err := svc.AddToCart(ctx, userID, AddInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 2, dto.Items[0].Quantity)

	// Stock is exhausted. The third add is rejected and the quantity holds.
	dto, err = svc.AddToCart(ctx, userID, AddInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 2, dto.Items[0].Quantity)
	assert.Equal(t, 1, notifier.count(enums.NotificationStockLimit))
}

func TestCartTotalPrefersSalePrice(t *testing.T) {
	svc, products, _, _ := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	sale := 3000
	discounted := stockedProduct(5, 5000, &sale)
	full := stockedProduct(5, 2000, nil)
	products.add(discounted)
	products.add(full)

	_, err := svc.AddToCart(ctx, userID, AddInput{ProductID: discounted.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, userID, AddInput{ProductID: full.ID, Quantity: 1})
	require.NoError(t, err)

	total, err := svc.CartTotal(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2*3000+2000, total)

	count, err := svc.CartCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRemoveFromCartThenMembership(t *testing.T) {
	svc, products, _, _ := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := stockedProduct(5, 5000, nil)
	products.add(product)

	dto, err := svc.AddToCart(ctx, userID, AddInput{ProductID: product.ID, Quantity: 1, Color: "red", Size: "42"})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)

	in, err := svc.IsInCart(ctx, userID, product.ID, nil, nil)
	require.NoError(t, err)
	assert.True(t, in)

	dto, err = svc.RemoveFromCart(ctx, userID, dto.Items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, dto.Items)

	color, size := "red", "42"
	in, err = svc.IsInCart(ctx, userID, product.ID, &color, &size)
	require.NoError(t, err)
	assert.False(t, in)

	// Idempotent: removing an absent line is still a success.
	_, err = svc.RemoveFromCart(ctx, userID, uuid.New())
	require.NoError(t, err)
}

func TestUpdateQuantitySemantics(t *testing.T) {
	svc, products, notifier, _ := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := stockedProduct(4, 5000, nil)
	products.add(product)

	dto, err := svc.AddToCart(ctx, userID, AddInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	itemID := dto.Items[0].ID

	dto, err = svc.UpdateQuantity(ctx, userID, itemID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, dto.Items[0].Quantity)

	dto, err = svc.UpdateQuantity(ctx, userID, itemID, 9)
	require.NoError(t, err)
	assert.Equal(t, 4, dto.Items[0].Quantity)
	assert.Equal(t, 1, notifier.count(enums.NotificationStockLimit))

	dto, err = svc.UpdateQuantity(ctx, userID, itemID, 0)
	require.NoError(t, err)
	assert.Empty(t, dto.Items)
}

func TestGetCartDegradesToEmptyOnReadFailure(t *testing.T) {
	svc, _, _, db := newCartService(t)
	require.NoError(t, db.Exec("DROP TABLE cart_items").Error)

	dto, err := svc.GetCart(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, dto.Items)
	assert.Zero(t, dto.TotalCents)
}

func TestAddToCartRejectsUnknownProduct(t *testing.T) {
	svc, _, _, _ := newCartService(t)

	_, err := svc.AddToCart(context.Background(), uuid.New(), AddInput{ProductID: uuid.New(), Quantity: 1})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}
