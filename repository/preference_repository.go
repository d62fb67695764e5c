package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"ekta-storefront/models"
)

const preferenceColumns = "id, user_id, preference_key, email_enabled, push_enabled, frequency, created_at, updated_at"

// PreferenceRepository handles database operations for notification preferences
type PreferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new PreferenceRepository
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Ensure PreferenceRepository implements PreferenceRepositoryInterface
var _ PreferenceRepositoryInterface = (*PreferenceRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreference(row rowScanner) (*models.NotificationPreference, error) {
	var p models.NotificationPreference
	var key, frequency string
	if err := row.Scan(&p.ID, &p.UserID, &key, &p.EmailEnabled, &p.PushEnabled, &frequency, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.PreferenceKey = models.PreferenceKey(key)
	p.Frequency = models.Frequency(frequency)
	return &p, nil
}

// FindByUser returns every stored preference row of a user
func (r *PreferenceRepository) FindByUser(ctx context.Context, userID string) ([]models.NotificationPreference, error) {
	log.Printf("🔍 FindPreferences: user_id=%s", userID)

	query := "SELECT " + preferenceColumns + " FROM notification_preferences WHERE user_id = $1 ORDER BY created_at"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Printf("❌ Error querying preferences: %v", err)
		return nil, fmt.Errorf("failed to query notification preferences: %w", err)
	}
	defer rows.Close()

	prefs := []models.NotificationPreference{}
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			log.Printf("❌ Error scanning preference: %v", err)
			return nil, fmt.Errorf("failed to scan notification preference: %w", err)
		}
		prefs = append(prefs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notification preferences: %w", err)
	}

	log.Printf("✓ Found %d preferences for user_id=%s", len(prefs), userID)
	return prefs, nil
}

// Insert creates a preference row and returns it as stored.
// A row that already exists for the user and key is overwritten in place.
func (r *PreferenceRepository) Insert(ctx context.Context, pref *models.NotificationPreference) (*models.NotificationPreference, error) {
	if pref.ID == "" {
		pref.ID = uuid.NewString()
	}
	log.Printf("💾 InsertPreference: user_id=%s, key=%s", pref.UserID, pref.PreferenceKey)

	query := `
		INSERT INTO notification_preferences (id, user_id, preference_key, email_enabled, push_enabled, frequency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (user_id, preference_key) DO UPDATE SET
			email_enabled = EXCLUDED.email_enabled,
			push_enabled = EXCLUDED.push_enabled,
			frequency = EXCLUDED.frequency,
			updated_at = NOW()
		RETURNING ` + preferenceColumns

	row := r.db.QueryRowContext(ctx, query,
		pref.ID,
		pref.UserID,
		string(pref.PreferenceKey),
		pref.EmailEnabled,
		pref.PushEnabled,
		string(pref.Frequency),
	)
	stored, err := scanPreference(row)
	if err != nil {
		log.Printf("❌ Error inserting preference: %v", err)
		return nil, fmt.Errorf("failed to insert notification preference: %w", err)
	}
	return stored, nil
}

// Update patches only the supplied fields of a preference row owned by userID
func (r *PreferenceRepository) Update(ctx context.Context, id string, userID string, update models.PreferenceUpdate) (*models.NotificationPreference, error) {
	if update.IsEmpty() {
		return nil, fmt.Errorf("no fields to update")
	}

	var sets []string
	var args []any
	argIndex := 1

	if update.EmailEnabled != nil {
		sets = append(sets, fmt.Sprintf("email_enabled = $%d", argIndex))
		args = append(args, *update.EmailEnabled)
		argIndex++
	}
	if update.PushEnabled != nil {
		sets = append(sets, fmt.Sprintf("push_enabled = $%d", argIndex))
		args = append(args, *update.PushEnabled)
		argIndex++
	}
	if update.Frequency != nil {
		sets = append(sets, fmt.Sprintf("frequency = $%d", argIndex))
		args = append(args, string(*update.Frequency))
		argIndex++
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(
		"UPDATE notification_preferences SET %s WHERE id = $%d AND user_id = $%d RETURNING %s",
		strings.Join(sets, ", "), argIndex, argIndex+1, preferenceColumns,
	)
	args = append(args, id, userID)

	log.Printf("💾 UpdatePreference: id=%s, user_id=%s, fields=%d", id, userID, len(sets)-1)
	stored, err := scanPreference(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPreferenceNotFound
		}
		log.Printf("❌ Error updating preference: %v", err)
		return nil, fmt.Errorf("failed to update notification preference: %w", err)
	}
	return stored, nil
}
