package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopora-app/shopora-backend/pkg/enums"
	"github.com/shopora-app/shopora-backend/pkg/types"
)

// CheckoutSession is one hosted-payment attempt for a user's cart. PaymentID
// is set only when the session completes.
type CheckoutSession struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index:checkout_sessions_user_id_idx"`
	PaymentLinkID  string               `gorm:"column:payment_link_id;not null"`
	PaymentLinkURL string               `gorm:"column:payment_link_url;not null"`
	SquareOrderID  *string              `gorm:"column:square_order_id"`
	PaymentID      *string              `gorm:"column:payment_id"`
	AmountCents    int                  `gorm:"column:amount_cents;not null"`
	Currency       string               `gorm:"column:currency;not null;default:'USD'"`
	Contact        *types.Contact       `gorm:"column:contact;type:jsonb;serializer:json"`
	ThemeColor     string               `gorm:"column:theme_color;not null;default:''"`
	Status         enums.CheckoutStatus `gorm:"column:status;type:checkout_status;not null;default:'pending'"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
