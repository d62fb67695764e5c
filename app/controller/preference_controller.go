package controller

import (
	"log"
	"net/http"
	"strings"

	"ekta-storefront/models"
	"ekta-storefront/service"
)

const preferencesPath = "/account/notification-preferences"

// PreferenceController handles HTTP requests for notification preferences
type PreferenceController struct {
	registry *service.PreferenceRegistry
}

// NewPreferenceController creates a new PreferenceController
func NewPreferenceController(registry *service.PreferenceRegistry) *PreferenceController {
	return &PreferenceController{registry: registry}
}

// PreferencesWithNotice adds a notice when the stored values could not be read
type PreferencesWithNotice struct {
	models.PreferencesResponse
	Notice string `json:"notice,omitempty"`
}

// BulkResponse is returned by bulk preference writes
type BulkResponse struct {
	models.BulkOutcome
	Preferences models.PreferencesResponse `json:"preferences"`
}

func (c *PreferenceController) store(w http.ResponseWriter, r *http.Request) (*service.PreferenceStore, string, bool) {
	s, ok := currentSession(w, r)
	if !ok {
		return nil, "", false
	}
	store, err := c.registry.For(r.Context(), s.UserID)
	notice := ""
	if err != nil {
		log.Printf("⚠️  Preferences: load failed for user_id=%s, showing defaults: %v", s.UserID, err)
		notice = "Could not load saved preferences; showing defaults"
	}
	return store, notice, true
}

// Preferences handles GET and PUT /account/notification-preferences
func (c *PreferenceController) Preferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		c.GetPreferences(w, r)
	case http.MethodPut:
		c.SavePreferences(w, r)
	default:
		methodNotAllowed(w, "Preferences", r)
	}
}

// GetPreferences handles GET /account/notification-preferences
// ?refresh=true reloads the stored values
func (c *PreferenceController) GetPreferences(w http.ResponseWriter, r *http.Request) {
	store, notice, ok := c.store(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("refresh") == "true" && !store.IsGuest() {
		if err := store.Load(r.Context()); err != nil {
			log.Printf("⚠️  Preferences: refresh failed: %v", err)
			notice = "Could not load saved preferences; showing defaults"
		}
	}
	writeJSON(w, http.StatusOK, PreferencesWithNotice{PreferencesResponse: store.Snapshot(), Notice: notice})
}

// SavePreferences handles PUT /account/notification-preferences
func (c *PreferenceController) SavePreferences(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 SavePreferences: Received %s request to %s", r.Method, r.URL.Path)

	var req models.SavePreferencesRequest
	if !decodeJSON(w, r, "SavePreferences", &req) {
		return
	}

	values := make([]models.PreferenceValue, 0, len(req.Preferences))
	for _, p := range req.Preferences {
		key, err := models.ParsePreferenceKey(p.Key)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		frequency, err := models.ParseFrequency(p.Frequency)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		values = append(values, models.PreferenceValue{
			Key:          key,
			EmailEnabled: p.EmailEnabled,
			PushEnabled:  p.PushEnabled,
			Frequency:    frequency,
		})
	}

	store, _, ok := c.store(w, r)
	if !ok {
		return
	}
	outcome, err := store.SaveAll(r.Context(), values)
	c.writeBulk(w, store, outcome, err)
}

// Preference handles PATCH /account/notification-preferences/{key}
// and POST /account/notification-preferences/email/{enable|disable}
func (c *PreferenceController) Preference(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, preferencesPath+"/"), "/")

	if action, found := strings.CutPrefix(rest, "email/"); found {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "EmailToggle", r)
			return
		}
		c.ToggleEmail(w, r, action)
		return
	}

	if r.Method != http.MethodPatch {
		methodNotAllowed(w, "UpdatePreference", r)
		return
	}
	c.UpdatePreference(w, r, rest)
}

// UpdatePreference patches a single preference key
func (c *PreferenceController) UpdatePreference(w http.ResponseWriter, r *http.Request, rawKey string) {
	log.Printf("📥 UpdatePreference: key=%s", rawKey)

	key, err := models.ParsePreferenceKey(rawKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.UpdatePreferenceRequest
	if !decodeJSON(w, r, "UpdatePreference", &req) {
		return
	}
	update := models.PreferenceUpdate{EmailEnabled: req.EmailEnabled, PushEnabled: req.PushEnabled}
	if req.Frequency != nil {
		frequency, err := models.ParseFrequency(*req.Frequency)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		update.Frequency = &frequency
	}

	store, _, ok := c.store(w, r)
	if !ok {
		return
	}
	if _, err := store.UpdatePreference(r.Context(), key, update); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, store.Snapshot())
}

// ToggleEmail turns email on or off for every preference key
func (c *PreferenceController) ToggleEmail(w http.ResponseWriter, r *http.Request, action string) {
	store, _, ok := c.store(w, r)
	if !ok {
		return
	}

	var outcome models.BulkOutcome
	var err error
	switch action {
	case "enable":
		outcome, err = store.EnableAllEmail(r.Context())
	case "disable":
		outcome, err = store.DisableAllEmail(r.Context())
	default:
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	c.writeBulk(w, store, outcome, err)
}

func (c *PreferenceController) writeBulk(w http.ResponseWriter, store *service.PreferenceStore, outcome models.BulkOutcome, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	if !outcome.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, BulkResponse{BulkOutcome: outcome, Preferences: store.Snapshot()})
}
