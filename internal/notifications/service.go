package notifications

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/shopora-app/shopora-backend/pkg/db/models"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	pkgerrors "github.com/shopora-app/shopora-backend/pkg/errors"
	"github.com/shopora-app/shopora-backend/pkg/logger"
)

// Publisher is the write-only surface other services use to raise a toast.
// Publish failures are logged, never propagated, so a broken feed cannot
// block the operation that triggered it.
type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, message string)
}

// Subscriber receives every published notification after it is persisted.
type Subscriber func(ctx context.Context, n NotificationDTO)

// ServiceParams groups dependencies for the notifications service.
type ServiceParams struct {
	Repo   *Repository
	Logger *logger.Logger
}

// Service exposes the notification feed.
type Service interface {
	Publisher
	Subscribe(fn Subscriber)
	Feed(ctx context.Context, userID uuid.UUID, limit int) (FeedDTO, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo *Repository
	logg *logger.Logger

	mu          sync.RWMutex
	subscribers []Subscriber
}

// NewService builds a notifications service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notifications repo is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{repo: params.Repo, logg: params.Logger}, nil
}

// Publish persists a notification row for the user. Invalid input and storage
// failures are swallowed after logging.
func (s *service) Publish(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, message string) {
	if userID == uuid.Nil || !kind.IsValid() || strings.TrimSpace(message) == "" {
		return
	}
	row := &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Kind:    kind,
		Message: message,
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"kind": string(kind), "user_id": userID.String()})
		s.logg.Warn(ctx, "dropping notification: insert failed")
		return
	}

	dto := toDTO(*row)
	s.mu.RLock()
	subs := make([]Subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(ctx, dto)
	}
}

// Subscribe registers a callback invoked for every persisted notification.
func (s *service) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// Feed returns the newest notifications plus the unread count.
func (s *service) Feed(ctx context.Context, userID uuid.UUID, limit int) (FeedDTO, error) {
	if userID == uuid.Nil {
		return FeedDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListForUser(ctx, userID, limit)
	if err != nil {
		return FeedDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	unread, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return FeedDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}

	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDTO(row))
	}
	return FeedDTO{Items: items, UnreadCount: unread}, nil
}

// MarkRead flags one notification as read.
func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil || notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and notification id are required")
	}
	if err := s.repo.MarkRead(ctx, userID, notificationID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	return nil
}

// MarkAllRead clears the unread badge for the user.
func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return nil
}
