package repository

import (
	"context"

	"skillup-go/internal/models"
)

type NotificationRepository struct {
	Repository[models.Notification]
}

// ForUser returns a user's notifications, newest first.
func (r *NotificationRepository) ForUser(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var out []models.Notification
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}
