package services

import (
	"context"
	"fmt"

	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/query"
	"github.com/yukikurage/workforce-api/internal/repository"
)

var ErrNotificationNotFound = apierrors.NewNotFoundError("Notification not found")

type NotificationService struct {
	store *repository.Store
}

func NewNotificationService(store *repository.Store) *NotificationService {
	return &NotificationService{store: store}
}

// NotificationPage is one page of a user's notifications, newest first.
type NotificationPage struct {
	Notifications []models.Notification
	Pagination    query.Meta
}

func (s *NotificationService) List(ctx context.Context, userID uint64, unreadOnly bool, page query.Page) (*NotificationPage, error) {
	items, total, err := s.store.Notifications.List(ctx, userID, unreadOnly, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return &NotificationPage{Notifications: items, Pagination: query.NewMeta(page, total)}, nil
}

// MarkRead only touches the caller's own notifications; anything else is
// reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint64) error {
	ok, err := s.store.Notifications.MarkRead(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	n, err := s.store.Notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}
