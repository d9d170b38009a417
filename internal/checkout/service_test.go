package checkout

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopora-app/shopora-backend/internal/cart"
	"github.com/shopora-app/shopora-backend/pkg/config"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	pkgerrors "github.com/shopora-app/shopora-backend/pkg/errors"
	"github.com/shopora-app/shopora-backend/pkg/logger"
	"github.com/shopora-app/shopora-backend/pkg/square"
	"github.com/shopora-app/shopora-backend/pkg/types"
)

type fakePayments struct {
	mu         sync.Mutex
	created    []square.PaymentLinkCreateParams
	deleted    []string
	fail       bool
	orderState sq.OrderState
	orderErr   error
}

func (f *fakePayments) CreatePaymentLink(_ context.Context, params square.PaymentLinkCreateParams) (*sq.PaymentLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "square unavailable")
	}
	f.created = append(f.created, params)
	id := fmt.Sprintf("link-%d", len(f.created))
	url := "https://square.link/" + id
	orderID := "order-" + id
	return &sq.PaymentLink{ID: &id, URL: &url, OrderID: &orderID}, nil
}

func (f *fakePayments) DeletePaymentLink(_ context.Context, linkID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, linkID)
	return nil
}

func (f *fakePayments) GetOrder(_ context.Context, orderID string) (*sq.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	state := f.orderState
	if state == "" {
		state = sq.OrderStateCompleted
	}
	id := orderID
	return &sq.Order{ID: &id, State: &state}, nil
}

type fakeCarts struct {
	mu      sync.Mutex
	carts   map[uuid.UUID]cart.CartDTO
	cleared []uuid.UUID
}

func (f *fakeCarts) GetCart(_ context.Context, userID uuid.UUID) (cart.CartDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.carts[userID], nil
}

func (f *fakeCarts) ClearCart(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, userID)
	f.carts[userID] = cart.CartDTO{}
	return nil
}

type fakeStock struct {
	mu     sync.Mutex
	deltas map[uuid.UUID]int
}

func (f *fakeStock) AdjustStock(_ context.Context, productID uuid.UUID, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deltas == nil {
		f.deltas = map[uuid.UUID]int{}
	}
	f.deltas[productID] += delta
	return nil
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

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS checkout_sessions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  payment_link_id TEXT NOT NULL,
  payment_link_url TEXT NOT NULL,
  square_order_id TEXT,
  payment_id TEXT,
  amount_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  contact TEXT,
  theme_color TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

type checkoutFixture struct {
	svc      Service
	payments *fakePayments
	carts    *fakeCarts
	stock    *fakeStock
	notifier *fakeNotifier
}

func newCheckoutService(t *testing.T) checkoutFixture {
	t.Helper()

	db := setupCheckoutTestDB(t)
	payments := &fakePayments{}
	carts := &fakeCarts{carts: map[uuid.UUID]cart.CartDTO{}}
	stock := &fakeStock{}
	notifier := &fakeNotifier{}

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Payments: payments,
		Carts:    carts,
		Stock:    stock,
		Notifier: notifier,
		Logger:   logger.New(logger.Options{ServiceName: "checkout-test"}),
		Config: config.SquareConfig{
			RedirectURL: "https://shopora.app/checkout/return",
			ThemeColor:  "#4f46e5",
		},
	})
	require.NoError(t, err)
	return checkoutFixture{svc: svc, payments: payments, carts: carts, stock: stock, notifier: notifier}
}

func seedCart(f checkoutFixture, userID uuid.UUID) cart.CartDTO {
	dto := cart.CartDTO{
		Items: []cart.CartItemDTO{
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Trail Shoe", Quantity: 2, UnitPriceCents: 5000, LineTotalCents: 10000},
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Wool Hat", Quantity: 1, UnitPriceCents: 2000, LineTotalCents: 2000},
		},
		Count:      3,
		TotalCents: 12000,
	}
	f.carts.carts[userID] = dto
	return dto
}

func TestStartOpensPaymentLinkFromCart(t *testing.T) {
	f := newCheckoutService(t)
	ctx := context.Background()
	userID := uuid.New()
	seedCart(f, userID)

	contact := &types.Contact{Email: "jo@example.com", GivenName: "Jo"}
	dto, err := f.svc.Start(ctx, userID, contact)
	require.NoError(t, err)

	assert.Equal(t, enums.CheckoutStatusPending, dto.Status)
	assert.Equal(t, 12000, dto.AmountCents)
	assert.Equal(t, "#4f46e5", dto.ThemeColor)
	assert.Contains(t, dto.PaymentLinkURL, "square.link")

	require.Len(t, f.payments.created, 1)
	created := f.payments.created[0]
	assert.EqualValues(t, 12000, created.AmountCents)
	assert.Equal(t, "USD", created.Currency)
	assert.Equal(t, dto.ID.String(), created.ReferenceID)
	assert.Equal(t, "https://shopora.app/checkout/return", created.RedirectURL)
	assert.Equal(t, "jo@example.com", created.BuyerEmail)
}

func TestStartRejectsEmptyCart(t *testing.T) {
	f := newCheckoutService(t)

	_, err := f.svc.Start(context.Background(), uuid.New(), nil)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCompleteSettlesOnce(t *testing.T) {
	f := newCheckoutService(t)
	ctx := context.Background()
	userID := uuid.New()
	seeded := seedCart(f, userID)

	started, err := f.svc.Start(ctx, userID, nil)
	require.NoError(t, err)

	completed, err := f.svc.Complete(ctx, userID, started.ID, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStatusCompleted, completed.Status)
	require.NotNil(t, completed.PaymentID)
	assert.Equal(t, "pay-1", *completed.PaymentID)

	// Sold lines drained stock and the cart is gone.
	assert.Equal(t, -2, f.stock.deltas[seeded.Items[0].ProductID])
	assert.Equal(t, -1, f.stock.deltas[seeded.Items[1].ProductID])
	assert.Contains(t, f.carts.cleared, userID)
	assert.Contains(t, f.notifier.kinds, enums.NotificationPaymentCompleted)

	// Re-confirming is idempotent and does not settle the cart twice.
	_, err = f.svc.Complete(ctx, userID, started.ID, "pay-1")
	require.NoError(t, err)
	assert.Len(t, f.carts.cleared, 1)
}

func TestCompleteRejectsUnpaidOrder(t *testing.T) {
	f := newCheckoutService(t)
	ctx := context.Background()
	userID := uuid.New()
	seedCart(f, userID)

	started, err := f.svc.Start(ctx, userID, nil)
	require.NoError(t, err)

	f.payments.orderState = sq.OrderStateOpen
	_, err = f.svc.Complete(ctx, userID, started.ID, "pay-1")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())

	// The session stays pending and nothing settled.
	current, err := f.svc.Get(ctx, userID, started.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStatusPending, current.Status)
	assert.Empty(t, f.carts.cleared)
	assert.Empty(t, f.stock.deltas)

	// Once the order lands, confirmation goes through.
	f.payments.orderState = sq.OrderStateCompleted
	completed, err := f.svc.Complete(ctx, userID, started.ID, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStatusCompleted, completed.Status)
}

func TestCompleteFailsClosedOnOrderLookup(t *testing.T) {
	f := newCheckoutService(t)
	ctx := context.Background()
	userID := uuid.New()
	seedCart(f, userID)

	started, err := f.svc.Start(ctx, userID, nil)
	require.NoError(t, err)

	f.payments.orderErr = pkgerrors.New(pkgerrors.CodeDependency, "square unavailable")
	_, err = f.svc.Complete(ctx, userID, started.ID, "pay-1")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())
	assert.Empty(t, f.carts.cleared)
}

func TestCancelKeepsTheCart(t *testing.T) {
	f := newCheckoutService(t)
	ctx := context.Background()
	userID := uuid.New()
	seedCart(f, userID)

	started, err := f.svc.Start(ctx, userID, nil)
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, userID, started.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStatusCancelled, cancelled.Status)

	assert.Empty(t, f.carts.cleared)
	assert.Empty(t, f.stock.deltas)
	assert.Contains(t, f.notifier.kinds, enums.NotificationPaymentCancelled)
	assert.NotEmpty(t, f.payments.deleted)

	// Dismissing twice is still not an error.
	_, err = f.svc.Cancel(ctx, userID, started.ID)
	require.NoError(t, err)
}

func TestCompleteAfterCancelConflicts(t *testing.T) {
	f := newCheckoutService(t)
	ctx := context.Background()
	userID := uuid.New()
	seedCart(f, userID)

	started, err := f.svc.Start(ctx, userID, nil)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, userID, started.ID)
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, userID, started.ID, "pay-1")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestSessionsAreScopedToTheirOwner(t *testing.T) {
	f := newCheckoutService(t)
	ctx := context.Background()
	userID := uuid.New()
	seedCart(f, userID)

	started, err := f.svc.Start(ctx, userID, nil)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, uuid.New(), started.ID)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())

	sessions, err := f.svc.List(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, started.ID, sessions[0].ID)
}
