package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopora-app/shopora-backend/pkg/db/models"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	"github.com/shopora-app/shopora-backend/pkg/pagination"
)

// Repository persists checkout sessions.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, session *models.CheckoutSession) error {
	if session.UserID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(session).Error
}

// FindByID loads one session scoped to its owner.
func (r *Repository) FindByID(ctx context.Context, userID, sessionID uuid.UUID) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SetStatus moves a session out of pending. The guard keeps a settled
// session from being overwritten by a late callback.
func (r *Repository) SetStatus(ctx context.Context, sessionID uuid.UUID, status enums.CheckoutStatus, paymentID *string) (bool, error) {
	changes := map[string]any{"status": status.String()}
	if paymentID != nil {
		changes["payment_id"] = *paymentID
	}
	result := r.db.WithContext(ctx).
		Model(&models.CheckoutSession{}).
		Where("id = ? AND status = ?", sessionID, enums.CheckoutStatusPending.String()).
		Updates(changes)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListForUser returns the user's sessions, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.CheckoutSession, error) {
	limit = pagination.NormalizeLimit(limit)
	var sessions []models.CheckoutSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
