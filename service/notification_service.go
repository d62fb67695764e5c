package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"strings"

	"ekta-storefront/models"
	"ekta-storefront/repository"
)

// MissingFieldsMessage is reported when a notification lacks a required field
const MissingFieldsMessage = "Missing required fields: user_id, type, title, message"

// NotificationService validates and stores user notifications
type NotificationService struct {
	repo repository.NotificationRepositoryInterface
}

// NewNotificationService creates a new NotificationService; repo may be nil when no database is configured
func NewNotificationService(repo repository.NotificationRepositoryInterface) *NotificationService {
	return &NotificationService{repo: repo}
}

// DecodeNotifications accepts a single notification object or an array of them
func DecodeNotifications(body []byte) ([]models.NotificationRequest, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, validationErrorf("request body is required")
	}

	if trimmed[0] == '[' {
		var list []models.NotificationRequest
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, validationErrorf("Invalid request body: %v", err)
		}
		return list, nil
	}

	var single models.NotificationRequest
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, validationErrorf("Invalid request body: %v", err)
	}
	return []models.NotificationRequest{single}, nil
}

// ValidateNotifications checks required fields and the notification type of every entry
func ValidateNotifications(notifications []models.NotificationRequest) error {
	if len(notifications) == 0 {
		return validationErrorf("at least one notification is required")
	}
	for _, n := range notifications {
		if strings.TrimSpace(n.UserID) == "" || n.Type == "" || strings.TrimSpace(n.Title) == "" || strings.TrimSpace(n.Message) == "" {
			return validationErrorf(MissingFieldsMessage)
		}
		if !slices.Contains(models.NotificationTypes, n.Type) {
			return validationErrorf("Invalid type. Must be one of: %s", strings.Join(models.NotificationTypes, ", "))
		}
		if len(n.Metadata) > 0 && !bytes.Equal(bytes.TrimSpace(n.Metadata), []byte("null")) {
			var obj map[string]any
			if err := json.Unmarshal(n.Metadata, &obj); err != nil {
				return validationErrorf("metadata must be a JSON object")
			}
		}
	}
	return nil
}

// Dispatch validates and inserts notifications, all or nothing
func (s *NotificationService) Dispatch(ctx context.Context, notifications []models.NotificationRequest) ([]models.Notification, error) {
	log.Printf("📨 Processing %d notification(s)", len(notifications))

	if err := ValidateNotifications(notifications); err != nil {
		log.Printf("❌ Dispatch: %v", err)
		return nil, err
	}
	if s.repo == nil {
		return nil, ErrStorageUnavailable
	}

	rows, err := s.repo.InsertMany(ctx, notifications)
	if err != nil {
		log.Printf("❌ Error inserting notifications: %v", err)
		return nil, err
	}

	log.Printf("✅ Successfully created %d notification(s)", len(rows))
	return rows, nil
}

// Notify sends a single notification to userID
func (s *NotificationService) Notify(ctx context.Context, userID, notificationType, title, message string, metadata map[string]any) (*models.Notification, error) {
	req := models.NotificationRequest{UserID: userID, Type: notificationType, Title: title, Message: message}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode metadata: %w", err)
		}
		req.Metadata = raw
	}
	rows, err := s.Dispatch(ctx, []models.NotificationRequest{req})
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// List returns the newest notifications of userID and the unread count
func (s *NotificationService) List(ctx context.Context, userID string, limit int) (*models.NotificationListResponse, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	if s.repo == nil {
		return nil, ErrStorageUnavailable
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	list, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}
	return &models.NotificationListResponse{Notifications: list, UnreadCount: unread}, nil
}

// MarkRead flags one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, userID string, id int64) error {
	if userID == "" {
		return ErrAuthRequired
	}
	if s.repo == nil {
		return ErrStorageUnavailable
	}
	return s.repo.MarkRead(ctx, userID, id)
}

// MarkAllRead flags every notification of userID as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrAuthRequired
	}
	if s.repo == nil {
		return 0, ErrStorageUnavailable
	}
	return s.repo.MarkAllRead(ctx, userID)
}
