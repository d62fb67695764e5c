package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ekta-storefront/models"
	"ekta-storefront/repository"
)

var errBoom = errors.New("boom")

// fakePreferenceRepo is an in-memory notification_preferences table
type fakePreferenceRepo struct {
	mu      sync.Mutex
	rows    map[string]models.NotificationPreference
	nextID  int
	findErr error
	// findFailures makes the next N FindByUser calls fail with errBoom
	findFailures int
	failKeys     map[models.PreferenceKey]bool
	findCalls    int
	// block, when set, is waited on inside FindByUser
	block chan struct{}
}

func newFakePreferenceRepo() *fakePreferenceRepo {
	return &fakePreferenceRepo{
		rows:     make(map[string]models.NotificationPreference),
		failKeys: make(map[models.PreferenceKey]bool),
	}
}

var _ repository.PreferenceRepositoryInterface = (*fakePreferenceRepo)(nil)

func (f *fakePreferenceRepo) seed(userID string, key models.PreferenceKey, email bool, frequency models.Frequency) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("pref-%d", f.nextID)
	f.rows[id] = models.NotificationPreference{
		ID: id, UserID: userID, PreferenceKey: key, EmailEnabled: email, Frequency: frequency,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
}

func (f *fakePreferenceRepo) FindByUser(ctx context.Context, userID string) ([]models.NotificationPreference, error) {
	f.mu.Lock()
	f.findCalls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.findFailures > 0 {
		f.findFailures--
		return nil, errBoom
	}
	out := []models.NotificationPreference{}
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakePreferenceRepo) Insert(ctx context.Context, pref *models.NotificationPreference) (*models.NotificationPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys[pref.PreferenceKey] {
		return nil, errBoom
	}
	f.nextID++
	row := *pref
	row.ID = fmt.Sprintf("pref-%d", f.nextID)
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	f.rows[row.ID] = row
	return &row, nil
}

func (f *fakePreferenceRepo) Update(ctx context.Context, id string, userID string, update models.PreferenceUpdate) (*models.NotificationPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.UserID != userID {
		return nil, repository.ErrPreferenceNotFound
	}
	if f.failKeys[row.PreferenceKey] {
		return nil, errBoom
	}
	if update.EmailEnabled != nil {
		row.EmailEnabled = *update.EmailEnabled
	}
	if update.PushEnabled != nil {
		row.PushEnabled = *update.PushEnabled
	}
	if update.Frequency != nil {
		row.Frequency = *update.Frequency
	}
	row.UpdatedAt = time.Now()
	f.rows[id] = row
	return &row, nil
}

func (f *fakePreferenceRepo) rowFor(userID string, key models.PreferenceKey) (models.NotificationPreference, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.UserID == userID && row.PreferenceKey == key {
			return row, true
		}
	}
	return models.NotificationPreference{}, false
}

func (f *fakePreferenceRepo) countRows(userID string, key models.PreferenceKey) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, row := range f.rows {
		if row.UserID == userID && row.PreferenceKey == key {
			n++
		}
	}
	return n
}

// fakeNotificationRepo is an in-memory user_notifications table
type fakeNotificationRepo struct {
	mu        sync.Mutex
	rows      []models.Notification
	insertErr error
}

var _ repository.NotificationRepositoryInterface = (*fakeNotificationRepo)(nil)

func (f *fakeNotificationRepo) InsertMany(ctx context.Context, notifications []models.NotificationRequest) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	out := make([]models.Notification, 0, len(notifications))
	for _, n := range notifications {
		row := models.Notification{
			ID:        int64(len(f.rows) + 1),
			UserID:    n.UserID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Metadata:  n.Metadata,
			CreatedAt: time.Now(),
		}
		f.rows = append(f.rows, row)
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Notification{}
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, userID string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].UserID == userID {
			f.rows[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.rows {
		if f.rows[i].UserID == userID && !f.rows[i].IsRead {
			f.rows[i].IsRead = true
			n++
		}
	}
	return n, nil
}
