package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopora-app/shopora-backend/pkg/db/models"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  color TEXT NOT NULL DEFAULT '',
  size TEXT NOT NULL DEFAULT '',
  product_name TEXT NOT NULL,
  image_url TEXT,
  quantity INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  line_total_cents INTEGER NOT NULL,
  position INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, product_id, color, size)
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func insertLine(t *testing.T, repo *Repository, userID, productID uuid.UUID, color, size string, quantity, unitPrice, position int) *models.CartItem {
	t.Helper()

	line := &models.CartItem{
		ID:             uuid.New(),
		UserID:         userID,
		ProductID:      productID,
		Color:          color,
		Size:           size,
		ProductName:    "Trail Shoe",
		Quantity:       quantity,
		UnitPriceCents: unitPrice,
		LineTotalCents: unitPrice * quantity,
		Position:       position,
	}
	require.NoError(t, repo.Insert(context.Background(), line))
	return line
}

func TestRepositoryLineLifecycle(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	pos, err := repo.NextPosition(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	first := insertLine(t, repo, userID, productID, "red", "42", 1, 5000, pos)
	insertLine(t, repo, userID, uuid.New(), "", "", 2, 2000, 2)

	pos, err = repo.NextPosition(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	found, err := repo.FindLine(ctx, userID, productID, "red", "42")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = repo.FindLine(ctx, userID, productID, "blue", "42")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.SetQuantity(ctx, first.ID, 3, 15000))
	found, err = repo.FindByID(ctx, userID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.Quantity)
	assert.Equal(t, 15000, found.LineTotalCents)

	items, err := repo.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)

	require.NoError(t, repo.Delete(ctx, userID, first.ID))
	require.NoError(t, repo.Delete(ctx, userID, first.ID))

	require.NoError(t, repo.ClearForUser(ctx, userID))
	items, err = repo.ListForUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRepositoryScopesLinesByUser(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	owner := uuid.New()
	other := uuid.New()
	productID := uuid.New()

	line := insertLine(t, repo, owner, productID, "", "", 1, 5000, 1)

	_, err := repo.FindByID(ctx, other, line.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(ctx, other, line.ID))
	_, err = repo.FindByID(ctx, owner, line.ID)
	require.NoError(t, err)
}
