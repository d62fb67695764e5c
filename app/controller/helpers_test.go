package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ekta-storefront/data"
	"ekta-storefront/models"
	"ekta-storefront/repository"
	"ekta-storefront/service"
	"ekta-storefront/session"
)

var guest = session.Session{ID: "guest:test"}

var shopper = session.Session{ID: "user:u1", UserID: "u1"}

func newRequest(t *testing.T, s session.Session, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	return req.WithContext(session.WithSession(req.Context(), s))
}

func serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func testCatalog(t *testing.T) *service.CatalogService {
	t.Helper()
	products, err := service.LoadCatalog(data.CatalogYAML)
	require.NoError(t, err)
	return service.NewCatalogService(products)
}

// memoryPreferenceRepo is an in-memory notification_preferences table
type memoryPreferenceRepo struct {
	mu   sync.Mutex
	rows map[string]models.NotificationPreference
	n    int
}

func newMemoryPreferenceRepo() *memoryPreferenceRepo {
	return &memoryPreferenceRepo{rows: map[string]models.NotificationPreference{}}
}

func (m *memoryPreferenceRepo) FindByUser(_ context.Context, userID string) ([]models.NotificationPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.NotificationPreference{}
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memoryPreferenceRepo) Insert(_ context.Context, pref *models.NotificationPreference) (*models.NotificationPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	row := *pref
	row.ID = string(rune('a' + m.n))
	row.CreatedAt = time.Now()
	m.rows[row.ID] = row
	return &row, nil
}

func (m *memoryPreferenceRepo) Update(_ context.Context, id, userID string, update models.PreferenceUpdate) (*models.NotificationPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.UserID != userID {
		return nil, repository.ErrPreferenceNotFound
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
	m.rows[id] = row
	return &row, nil
}

// memoryNotificationRepo is an in-memory user_notifications table
type memoryNotificationRepo struct {
	mu   sync.Mutex
	rows []models.Notification
	err  error
}

func (m *memoryNotificationRepo) InsertMany(_ context.Context, reqs []models.NotificationRequest) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Notification{}
	for _, r := range reqs {
		row := models.Notification{ID: int64(len(m.rows) + 1), UserID: r.UserID, Type: r.Type, Title: r.Title, Message: r.Message, Metadata: json.RawMessage(`{}`)}
		m.rows = append(m.rows, row)
		out = append(out, row)
	}
	return out, nil
}

func (m *memoryNotificationRepo) ListByUser(_ context.Context, userID string, limit int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Notification{}
	for i := len(m.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if m.rows[i].UserID == userID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memoryNotificationRepo) MarkRead(_ context.Context, userID string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].UserID == userID {
			m.rows[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

func (m *memoryNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.rows {
		if m.rows[i].UserID == userID && !m.rows[i].IsRead {
			m.rows[i].IsRead = true
			n++
		}
	}
	return n, nil
}
