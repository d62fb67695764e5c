package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"ekta-storefront/models"
)

const notificationColumns = "id, user_id, type, title, message, metadata, is_read, created_at"

// NotificationRepository handles database operations for user notifications
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Ensure NotificationRepository implements NotificationRepositoryInterface
var _ NotificationRepositoryInterface = (*NotificationRepository)(nil)

func scanNotification(row rowScanner) (*models.Notification, error) {
	var n models.Notification
	var metadata []byte
	if err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &metadata, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}
	n.Metadata = json.RawMessage(metadata)
	return &n, nil
}

// InsertMany inserts all notifications in one transaction and returns the stored rows.
// Either every row is inserted or none is.
func (r *NotificationRepository) InsertMany(ctx context.Context, notifications []models.NotificationRequest) ([]models.Notification, error) {
	log.Printf("💾 InsertNotifications: count=%d", len(notifications))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("❌ Error starting transaction: %v", err)
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO user_notifications (user_id, type, title, message, metadata, is_read)
		VALUES ($1, $2, $3, $4, $5, false)
		RETURNING ` + notificationColumns

	inserted := make([]models.Notification, 0, len(notifications))
	for _, n := range notifications {
		metadata := string(n.Metadata)
		if metadata == "" || metadata == "null" {
			metadata = "{}"
		}
		row := tx.QueryRowContext(ctx, query, n.UserID, n.Type, n.Title, n.Message, metadata)
		stored, err := scanNotification(row)
		if err != nil {
			log.Printf("❌ Error inserting notification for user_id=%s: %v", n.UserID, err)
			return nil, fmt.Errorf("failed to insert notification: %w", err)
		}
		inserted = append(inserted, *stored)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("❌ Error committing transaction: %v", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("✓ Inserted %d notifications", len(inserted))
	return inserted, nil
}

// ListByUser returns the newest notifications of a user
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	query := "SELECT " + notificationColumns + " FROM user_notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2"
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		log.Printf("❌ Error listing notifications: %v", err)
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	list := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		list = append(list, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return list, nil
}

// MarkRead flags one notification of the user as read
func (r *NotificationRepository) MarkRead(ctx context.Context, userID string, id int64) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE user_notifications SET is_read = true WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of the user as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE user_notifications SET is_read = true WHERE user_id = $1 AND is_read = false", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}
