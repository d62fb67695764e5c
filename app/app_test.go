package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ekta-storefront/config"
	"ekta-storefront/models"
	"ekta-storefront/session"
	"ekta-storefront/storage"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env:                 "test",
		Port:                "0",
		JWTSecret:           "test-secret",
		AssetsDir:           t.TempDir(),
		ImageCacheDir:       t.TempDir(),
		NotifyRatePerSecond: 100,
		NotifyBurst:         100,
		SessionIdleTTL:      time.Hour,
	}
}

func newStorefront(t *testing.T, deps Dependencies) *Storefront {
	t.Helper()
	sf, err := New(testConfig(t), deps)
	require.NoError(t, err)
	t.Cleanup(func() { sf.Close() })
	return sf
}

func do(t *testing.T, h http.Handler, method, target, body string, cookies []*http.Cookie, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGuestShoppingFlow(t *testing.T) {
	sf := newStorefront(t, Dependencies{Store: storage.NewMemoryStore()})

	rec := do(t, sf.Handler, http.MethodGet, "/ping", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	rec = do(t, sf.Handler, http.MethodPost, "/cart/items", `{"productId":"6","size":"0-3m","color":"sage"}`, cookies, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, sf.Handler, http.MethodPost, "/wishlist/items", `{"productId":"1"}`, cookies, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, sf.Handler, http.MethodGet, "/cart", "", cookies, nil)
	var cart models.CartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Equal(t, 1, cart.TotalItems)
	assert.Equal(t, "0-3M", cart.Items[0].Size)

	// a new visitor gets an empty cart
	rec = do(t, sf.Handler, http.MethodGet, "/cart", "", nil, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Equal(t, 0, cart.TotalItems)

	rec = do(t, sf.Handler, http.MethodGet, "/products/6", "", cookies, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, sf.Handler, http.MethodGet, "/products/4/related", "", cookies, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var related []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &related))
	require.Len(t, related, 1)
	assert.Equal(t, "8", related[0].ID)

	rec = do(t, sf.Handler, http.MethodPatch, "/account/notification-preferences/promotions", `{"emailEnabled":true}`, cookies, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String())

	rec = do(t, sf.Handler, http.MethodPost, "/checkout", `{"fullName":"A","phone":"1","address":"x","city":"Dhaka"}`, cookies, nil)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestSignedInPreferencesUseDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sf := newStorefront(t, Dependencies{DB: db, Store: storage.NewMemoryStore()})
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	auth := http.Header{"Authorization": []string{"Bearer " + token}}

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM notification_preferences WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "preference_key", "email_enabled", "push_enabled", "frequency", "created_at", "updated_at"}).
			AddRow("p1", "u1", "order_updates", false, true, "daily", now, now))

	rec := do(t, sf.Handler, http.MethodGet, "/account/notification-preferences", "", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.PreferencesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Guest)
	assert.False(t, resp.Preferences[0].EmailEnabled)
	assert.Equal(t, models.FrequencyDaily, resp.Preferences[0].Frequency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatchBypassesSessions(t *testing.T) {
	sf := newStorefront(t, Dependencies{Store: storage.NewMemoryStore()})

	rec := do(t, sf.Handler, http.MethodOptions, "/functions/send-notification", "", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())

	rec = do(t, sf.Handler, http.MethodPost, "/functions/send-notification", `{"user_id":"u1","type":"bogus","title":"t","message":"m"}`, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "order, promo, security, wishlist")
}

func TestInvalidTokenIsRejected(t *testing.T) {
	sf := newStorefront(t, Dependencies{})

	rec := do(t, sf.Handler, http.MethodGet, "/cart", "", nil, http.Header{"Authorization": []string{"Bearer nope"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
