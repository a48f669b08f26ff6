package repositories

import (
	"context"
	"sort"

	"github.com/lost2found/backend/internal/models"
	"github.com/lost2found/backend/internal/store"
)

// NotificationRepository defines the interface for notification operations.
// Notifications created as part of a claim transaction are written by the
// workflow directly; this repository serves the read/mark-read surface.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetByUserID(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context, userID string) error
}

type documentNotificationRepository struct {
	store store.Store
}

// NewNotificationRepository creates a NotificationRepository backed by the
// given store.
func NewNotificationRepository(st store.Store) NotificationRepository {
	return &documentNotificationRepository{store: st}
}

func (r *documentNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	data, err := store.ToMap(n)
	if err != nil {
		return err
	}
	id, err := r.store.Create(ctx, store.Notifications, data)
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

func (r *documentNotificationRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	docs, err := r.store.Query(ctx, store.Notifications, store.Where("userId", "==", userID))
	if err != nil {
		return nil, err
	}
	notifications := make([]models.Notification, 0, len(docs))
	for _, doc := range docs {
		var n models.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, err
		}
		n.ID = doc.ID
		notifications = append(notifications, n)
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	if limit > 0 && len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (r *documentNotificationRepository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	docs, err := r.store.Query(ctx, store.Notifications,
		store.Where("userId", "==", userID),
		store.Where("read", "==", false),
	)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

func (r *documentNotificationRepository) MarkAsRead(ctx context.Context, id string) error {
	return r.store.Update(ctx, store.Notifications, id, map[string]any{"read": true})
}

func (r *documentNotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	docs, err := r.store.Query(ctx, store.Notifications,
		store.Where("userId", "==", userID),
		store.Where("read", "==", false),
	)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := r.store.Update(ctx, store.Notifications, doc.ID, map[string]any{"read": true}); err != nil {
			return err
		}
	}
	return nil
}
