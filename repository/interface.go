package repository

import (
	"context"
	"errors"

	"ekta-storefront/models"
)

var (
	// ErrPreferenceNotFound is returned when a preference row does not exist for the user
	ErrPreferenceNotFound = errors.New("notification preference not found")
	// ErrNotificationNotFound is returned when a notification does not exist for the user
	ErrNotificationNotFound = errors.New("notification not found")
)

// PreferenceRepositoryInterface defines the contract for the notification_preferences table
type PreferenceRepositoryInterface interface {
	FindByUser(ctx context.Context, userID string) ([]models.NotificationPreference, error)
	Insert(ctx context.Context, pref *models.NotificationPreference) (*models.NotificationPreference, error)
	Update(ctx context.Context, id string, userID string, update models.PreferenceUpdate) (*models.NotificationPreference, error)
}

// NotificationRepositoryInterface defines the contract for the user_notifications table
type NotificationRepositoryInterface interface {
	InsertMany(ctx context.Context, notifications []models.NotificationRequest) ([]models.Notification, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID string, id int64) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}
