package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"
	"gorm.io/gorm"

	"github.com/shopora-app/shopora-backend/internal/cart"
	"github.com/shopora-app/shopora-backend/internal/notifications"
	"github.com/shopora-app/shopora-backend/pkg/config"
	"github.com/shopora-app/shopora-backend/pkg/db/models"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	pkgerrors "github.com/shopora-app/shopora-backend/pkg/errors"
	"github.com/shopora-app/shopora-backend/pkg/logger"
	"github.com/shopora-app/shopora-backend/pkg/square"
	"github.com/shopora-app/shopora-backend/pkg/types"
)

// PaymentLinker is the slice of the Square client checkout needs.
type PaymentLinker interface {
	CreatePaymentLink(ctx context.Context, params square.PaymentLinkCreateParams) (*sq.PaymentLink, error)
	DeletePaymentLink(ctx context.Context, linkID string) error
	GetOrder(ctx context.Context, orderID string) (*sq.Order, error)
}

// CartReader serves and clears the cart a checkout settles.
type CartReader interface {
	GetCart(ctx context.Context, userID uuid.UUID) (cart.CartDTO, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// StockAdjuster decrements listing stock once a payment lands.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int) error
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Repo     *Repository
	Payments PaymentLinker
	Carts    CartReader
	Stock    StockAdjuster
	Notifier notifications.Publisher
	Logger   *logger.Logger
	Config   config.SquareConfig
}

// Service drives the hosted-payment flow. A session settles exactly once,
// as completed or cancelled, and dismissal is a normal outcome rather than
// an error.
type Service interface {
	Start(ctx context.Context, userID uuid.UUID, contact *types.Contact) (SessionDTO, error)
	Complete(ctx context.Context, userID, sessionID uuid.UUID, paymentID string) (SessionDTO, error)
	Cancel(ctx context.Context, userID, sessionID uuid.UUID) (SessionDTO, error)
	Get(ctx context.Context, userID, sessionID uuid.UUID) (SessionDTO, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]SessionDTO, error)
}

type service struct {
	repo     *Repository
	payments PaymentLinker
	carts    CartReader
	stock    StockAdjuster
	notifier notifications.Publisher
	logg     *logger.Logger
	cfg      config.SquareConfig
}

// NewService builds a checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout repo is required")
	}
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment linker is required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart reader is required")
	}
	if params.Stock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock adjuster is required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notifier is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:     params.Repo,
		payments: params.Payments,
		carts:    params.Carts,
		stock:    params.Stock,
		notifier: params.Notifier,
		logg:     params.Logger,
		cfg:      params.Config,
	}, nil
}

// Start opens a hosted payment page over the current cart and records the
// pending session.
func (s *service) Start(ctx context.Context, userID uuid.UUID, contact *types.Contact) (SessionDTO, error) {
	if userID == uuid.Nil {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	current, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return SessionDTO{}, err
	}
	if current.Count == 0 {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	sessionID := uuid.New()
	params := square.PaymentLinkCreateParams{
		Name:        orderName(current),
		AmountCents: int64(current.TotalCents),
		Currency:    "USD",
		ReferenceID: sessionID.String(),
		RedirectURL: s.cfg.RedirectURL,
	}
	if contact != nil {
		params.BuyerEmail = contact.Email
		params.BuyerPhone = contact.Phone
		params.BuyerGiven = contact.GivenName
		params.BuyerFamily = contact.FamilyName
	}

	link, err := s.payments.CreatePaymentLink(ctx, params)
	if err != nil {
		return SessionDTO{}, err
	}

	session := &models.CheckoutSession{
		ID:             sessionID,
		UserID:         userID,
		PaymentLinkID:  stringValue(link.GetID()),
		PaymentLinkURL: stringValue(link.GetURL()),
		SquareOrderID:  link.OrderID,
		AmountCents:    current.TotalCents,
		Currency:       "USD",
		Contact:        contact,
		ThemeColor:     s.cfg.ThemeColor,
		Status:         enums.CheckoutStatusPending,
	}
	if err := s.repo.Insert(ctx, session); err != nil {
		// The link exists without a session row. Best effort teardown.
		if delErr := s.payments.DeletePaymentLink(ctx, stringValue(link.GetID())); delErr != nil {
			s.logg.Error(ctx, "orphan payment link teardown failed", delErr)
		}
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout session")
	}
	return toSessionDTO(*session), nil
}

// Complete settles a pending session as paid, drains stock for the sold
// lines and clears the cart. Re-confirming a completed session succeeds.
func (s *service) Complete(ctx context.Context, userID, sessionID uuid.UUID, paymentID string) (SessionDTO, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return SessionDTO{}, err
	}
	if session.Status == enums.CheckoutStatusPending {
		if err := s.verifyPayment(ctx, session); err != nil {
			return SessionDTO{}, err
		}
	}

	settled, err := s.repo.SetStatus(ctx, session.ID, enums.CheckoutStatusCompleted, &paymentID)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle checkout session")
	}
	if !settled {
		if session.Status == enums.CheckoutStatusCompleted {
			return toSessionDTO(*session), nil
		}
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "checkout session already cancelled")
	}

	s.settleCart(ctx, userID)
	s.notifier.Publish(ctx, userID, enums.NotificationPaymentCompleted, "payment received, thank you")

	session.Status = enums.CheckoutStatusCompleted
	session.PaymentID = &paymentID
	return toSessionDTO(*session), nil
}

// Cancel marks a dismissed session cancelled. The cart stays intact so the
// user can come back to it. Cancelling twice succeeds.
func (s *service) Cancel(ctx context.Context, userID, sessionID uuid.UUID) (SessionDTO, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return SessionDTO{}, err
	}

	settled, err := s.repo.SetStatus(ctx, session.ID, enums.CheckoutStatusCancelled, nil)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel checkout session")
	}
	if !settled {
		if session.Status == enums.CheckoutStatusCancelled {
			return toSessionDTO(*session), nil
		}
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "checkout session already completed")
	}

	if err := s.payments.DeletePaymentLink(ctx, session.PaymentLinkID); err != nil {
		s.logg.Warn(ctx, "payment link teardown failed after cancel")
	}
	s.notifier.Publish(ctx, userID, enums.NotificationPaymentCancelled, "checkout cancelled, your cart is unchanged")

	session.Status = enums.CheckoutStatusCancelled
	return toSessionDTO(*session), nil
}

func (s *service) Get(ctx context.Context, userID, sessionID uuid.UUID) (SessionDTO, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return SessionDTO{}, err
	}
	return toSessionDTO(*session), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, limit int) ([]SessionDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	sessions, err := s.repo.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list checkout sessions")
	}
	items := make([]SessionDTO, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, toSessionDTO(session))
	}
	return items, nil
}

func (s *service) load(ctx context.Context, userID, sessionID uuid.UUID) (*models.CheckoutSession, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	session, err := s.repo.FindByID(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "checkout session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}
	return session, nil
}

// verifyPayment checks the Square order behind the payment link before the
// session settles, so completion does not rest on the client's word alone.
// Sessions created before an order id was recorded pass through.
func (s *service) verifyPayment(ctx context.Context, session *models.CheckoutSession) error {
	if session.SquareOrderID == nil || strings.TrimSpace(*session.SquareOrderID) == "" {
		return nil
	}
	order, err := s.payments.GetOrder(ctx, *session.SquareOrderID)
	if err != nil {
		return err
	}
	state := order.GetState()
	if state == nil || *state != sq.OrderStateCompleted {
		return pkgerrors.New(pkgerrors.CodeConflict, "payment has not settled yet")
	}
	return nil
}

// settleCart drains stock for the sold lines and empties the cart. The
// payment already landed, so failures here log instead of unwinding it.
func (s *service) settleCart(ctx context.Context, userID uuid.UUID) {
	current, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		s.logg.Error(ctx, "cart read failed after payment", err)
		return
	}
	for _, line := range current.Items {
		if err := s.stock.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
			s.logg.Error(ctx, "stock adjustment failed after payment", err)
		}
	}
	if err := s.carts.ClearCart(ctx, userID); err != nil {
		s.logg.Error(ctx, "cart clear failed after payment", err)
	}
}

func orderName(current cart.CartDTO) string {
	if len(current.Items) == 1 && current.Items[0].Quantity == 1 {
		return current.Items[0].Name
	}
	return fmt.Sprintf("Shopora order (%d items)", current.Count)
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
