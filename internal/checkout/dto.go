package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopora-app/shopora-backend/pkg/db/models"
	"github.com/shopora-app/shopora-backend/pkg/enums"
)

// SessionDTO is one hosted-payment attempt as the client sees it.
type SessionDTO struct {
	ID             uuid.UUID            `json:"id"`
	PaymentLinkURL string               `json:"paymentLinkUrl"`
	AmountCents    int                  `json:"amountCents"`
	Currency       string               `json:"currency"`
	ThemeColor     string               `json:"themeColor"`
	Status         enums.CheckoutStatus `json:"status"`
	PaymentID      *string              `json:"paymentId,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
}

func toSessionDTO(session models.CheckoutSession) SessionDTO {
	return SessionDTO{
		ID:             session.ID,
		PaymentLinkURL: session.PaymentLinkURL,
		AmountCents:    session.AmountCents,
		Currency:       session.Currency,
		ThemeColor:     session.ThemeColor,
		Status:         session.Status,
		PaymentID:      session.PaymentID,
		CreatedAt:      session.CreatedAt,
	}
}
