package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ekta-storefront/models"
	"ekta-storefront/service"
)

func TestGuestPreferences(t *testing.T) {
	c := NewPreferenceController(service.NewPreferenceRegistry(newMemoryPreferenceRepo()))

	rec := serve(c.Preferences, newRequest(t, guest, http.MethodGet, preferencesPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[PreferencesWithNotice](t, rec)
	assert.True(t, resp.Guest)
	assert.Equal(t, "ready", resp.State)
	for _, p := range resp.Preferences {
		assert.Equal(t, p.Key != models.PreferencePromotions, p.EmailEnabled, p.Key)
	}

	rec = serve(c.Preference, newRequest(t, guest, http.MethodPatch, preferencesPath+"/order_updates", `{"emailEnabled":false}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication required", decodeBody[ErrorResponse](t, rec).Error)

	rec = serve(c.Preference, newRequest(t, guest, http.MethodPost, preferencesPath+"/email/enable", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdatePreferenceEndpoint(t *testing.T) {
	c := NewPreferenceController(service.NewPreferenceRegistry(newMemoryPreferenceRepo()))

	rec := serve(c.Preference, newRequest(t, shopper, http.MethodPatch, preferencesPath+"/price_drops", `{"emailEnabled":false,"frequency":"daily"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[models.PreferencesResponse](t, rec)
	for _, p := range resp.Preferences {
		if p.Key == models.PreferencePriceDrops {
			assert.False(t, p.EmailEnabled)
			assert.Equal(t, models.FrequencyDaily, p.Frequency)
		}
	}

	rec = serve(c.Preference, newRequest(t, shopper, http.MethodPatch, preferencesPath+"/sms", `{"emailEnabled":false}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(c.Preference, newRequest(t, shopper, http.MethodPatch, preferencesPath+"/price_drops", `{"frequency":"hourly"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(c.Preference, newRequest(t, shopper, http.MethodPatch, preferencesPath+"/price_drops", `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkPreferenceEndpoints(t *testing.T) {
	c := NewPreferenceController(service.NewPreferenceRegistry(newMemoryPreferenceRepo()))

	rec := serve(c.Preference, newRequest(t, shopper, http.MethodPost, preferencesPath+"/email/enable", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[BulkResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "All email notifications enabled", resp.Message)
	for _, p := range resp.Preferences.Preferences {
		assert.True(t, p.EmailEnabled, p.Key)
	}

	body := `{"preferences":[{"key":"promotions","emailEnabled":false,"pushEnabled":true,"frequency":"never"}]}`
	rec = serve(c.Preferences, newRequest(t, shopper, http.MethodPut, preferencesPath, body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Notification preferences saved!", decodeBody[BulkResponse](t, rec).Message)

	rec = serve(c.Preferences, newRequest(t, shopper, http.MethodPut, preferencesPath, `{"preferences":[{"key":"promotions","frequency":"sometimes"}]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(c.Preference, newRequest(t, shopper, http.MethodPost, preferencesPath+"/email/toggle", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreferencesWithoutDatabase(t *testing.T) {
	c := NewPreferenceController(service.NewPreferenceRegistry(nil))

	rec := serve(c.Preferences, newRequest(t, shopper, http.MethodGet, preferencesPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody[PreferencesWithNotice](t, rec).Notice)

	rec = serve(c.Preference, newRequest(t, shopper, http.MethodPatch, preferencesPath+"/order_updates", `{"emailEnabled":false}`))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
