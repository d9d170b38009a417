package wishlist

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopora-app/shopora-backend/pkg/enums"
	pkgerrors "github.com/shopora-app/shopora-backend/pkg/errors"
	"github.com/shopora-app/shopora-backend/pkg/logger"
)

type fakeNotifier struct {
	mu    sync.Mutex
	kinds []enums.NotificationKind
}

func (f *fakeNotifier) Publish(_ context.Context, _ uuid.UUID, kind enums.NotificationKind, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
}

func setupWishlistTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS wishlist_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (user_id, product_id)
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newWishlistService(t *testing.T) (Service, *fakeNotifier, *gorm.DB) {
	t.Helper()

	db := setupWishlistTestDB(t)
	notifier := &fakeNotifier{}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Notifier: notifier,
		Logger:   logger.New(logger.Options{ServiceName: "wishlist-test"}),
	})
	require.NoError(t, err)
	return svc, notifier, db
}

func TestAddIsIdempotent(t *testing.T) {
	svc, _, db := newWishlistService(t)
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	require.NoError(t, svc.Add(ctx, userID, productID))
	require.NoError(t, svc.Add(ctx, userID, productID))

	var count int64
	require.NoError(t, db.Table("wishlist_items").Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, productID, list.Items[0].ProductID)
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, _, _ := newWishlistService(t)
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	require.NoError(t, svc.Add(ctx, userID, productID))
	require.NoError(t, svc.Remove(ctx, userID, productID))
	require.NoError(t, svc.Remove(ctx, userID, productID))

	in, err := svc.Contains(ctx, userID, productID)
	require.NoError(t, err)
	assert.False(t, in)
}

func TestContainsDegradesOnLookupFailure(t *testing.T) {
	svc, notifier, db := newWishlistService(t)
	ctx := context.Background()
	require.NoError(t, db.Exec("DROP TABLE wishlist_items").Error)

	in, err := svc.Contains(ctx, uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.False(t, in)
	require.Len(t, notifier.kinds, 1)
	assert.Equal(t, enums.NotificationRemoteDegraded, notifier.kinds[0])
}

func TestMutationsRequireAuthentication(t *testing.T) {
	svc, _, _ := newWishlistService(t)
	ctx := context.Background()

	err := svc.Add(ctx, uuid.Nil, uuid.New())
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())

	err = svc.Remove(ctx, uuid.Nil, uuid.New())
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}
