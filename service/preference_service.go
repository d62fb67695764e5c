package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"ekta-storefront/models"
	"ekta-storefront/repository"
)

// PreferenceState is the load state of a PreferenceStore
type PreferenceState string

const (
	PreferenceStateLoading PreferenceState = "loading"
	PreferenceStateReady   PreferenceState = "ready"
)

// PreferenceStore holds one user's notification preferences.
//
// Rows are fetched from the remote table; keys without a row resolve to
// models.DefaultPreferences. Writes go one key at a time and only once the
// rows are known, so an existing row is patched rather than inserted twice. Every Load takes a
// request token, and a result is applied only while its token is current, its
// context is alive and the store has not been closed.
type PreferenceStore struct {
	mu     sync.Mutex
	repo   repository.PreferenceRepositoryInterface
	userID string

	state  PreferenceState
	loaded bool // rows were read successfully
	saving bool
	prefs  map[models.PreferenceKey]models.NotificationPreference
	token  uint64
	closed bool
}

// NewPreferenceStore creates a store for userID; an empty userID is a guest
func NewPreferenceStore(repo repository.PreferenceRepositoryInterface, userID string) *PreferenceStore {
	return &PreferenceStore{
		repo:   repo,
		userID: userID,
		state:  PreferenceStateLoading,
		prefs:  make(map[models.PreferenceKey]models.NotificationPreference),
	}
}

// IsGuest reports whether the store has no user session
func (s *PreferenceStore) IsGuest() bool {
	return s.userID == ""
}

// State returns the current load state
func (s *PreferenceStore) State() PreferenceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Loaded reports whether the stored rows were read successfully.
// A failed load leaves the store ready with defaults but not loaded.
func (s *PreferenceStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Saving reports whether a write is in flight
func (s *PreferenceStore) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// Load fetches the user's rows. On failure the store still becomes ready and
// keeps whatever it had, so reads fall back to defaults.
func (s *PreferenceStore) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	s.token++
	token := s.token
	s.mu.Unlock()

	if s.IsGuest() {
		s.apply(token, nil, true)
		return nil
	}
	if s.repo == nil {
		s.apply(token, nil, false)
		return ErrStorageUnavailable
	}

	rows, err := s.repo.FindByUser(ctx, s.userID)
	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Printf("⏭️  Preferences: discarding fetch for user_id=%s: %v", s.userID, ctxErr)
		return ctxErr
	}
	if err != nil {
		log.Printf("❌ Preferences: fetch failed for user_id=%s, using defaults: %v", s.userID, err)
		s.apply(token, nil, false)
		return fmt.Errorf("failed to load notification preferences: %w", err)
	}

	s.apply(token, rows, true)
	return nil
}

// apply installs a fetch result if token is still current.
// loaded=false marks a failed fetch: the previous rows are kept.
func (s *PreferenceStore) apply(token uint64, rows []models.NotificationPreference, loaded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || token != s.token {
		log.Printf("⏭️  Preferences: stale result for user_id=%s dropped", s.userID)
		return
	}
	if loaded {
		prefs := make(map[models.PreferenceKey]models.NotificationPreference, len(rows))
		for _, row := range rows {
			prefs[row.PreferenceKey] = row
		}
		s.prefs = prefs
		s.loaded = true
	}
	s.state = PreferenceStateReady
}

// ensureLoaded reloads the rows when the last load failed
func (s *PreferenceStore) ensureLoaded(ctx context.Context) error {
	if s.Loaded() {
		return nil
	}
	log.Printf("🔄 Preferences: rows unknown for user_id=%s, reloading before write", s.userID)
	if err := s.Load(ctx); err != nil {
		if errors.Is(err, ErrStoreClosed) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

// GetPreferenceValue returns the stored value for key, or its default
func (s *PreferenceStore) GetPreferenceValue(key models.PreferenceKey) models.PreferenceValue {
	s.mu.Lock()
	pref, ok := s.prefs[key]
	s.mu.Unlock()

	if ok {
		return models.PreferenceValue{
			Key:          key,
			EmailEnabled: pref.EmailEnabled,
			PushEnabled:  pref.PushEnabled,
			Frequency:    pref.Frequency,
		}
	}

	value := models.PreferenceValue{Key: key, EmailEnabled: true, Frequency: models.FrequencyInstant}
	if d, ok := models.DefaultFor(key); ok {
		value.EmailEnabled = d.DefaultEmailEnabled
		value.Frequency = d.DefaultFrequency
	}
	return value
}

// UpdatePreference patches the row for key, or inserts one seeded from the
// defaults merged with update. Local state changes only after the remote
// write succeeded.
func (s *PreferenceStore) UpdatePreference(ctx context.Context, key models.PreferenceKey, update models.PreferenceUpdate) (*models.NotificationPreference, error) {
	if s.IsGuest() {
		return nil, ErrAuthRequired
	}
	d, ok := models.DefaultFor(key)
	if !ok {
		return nil, validationErrorf("invalid preference key %q", key)
	}
	if update.IsEmpty() {
		return nil, validationErrorf("no preference fields to update")
	}
	if update.Frequency != nil {
		if _, err := models.ParseFrequency(string(*update.Frequency)); err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
	}
	if s.repo == nil {
		return nil, ErrStorageUnavailable
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStoreClosed
	}
	existing, exists := s.prefs[key]
	s.mu.Unlock()

	var stored *models.NotificationPreference
	var err error
	if exists {
		stored, err = s.repo.Update(ctx, existing.ID, s.userID, update)
		if errors.Is(err, repository.ErrPreferenceNotFound) {
			log.Printf("⚠️  Preferences: row %s vanished, inserting %s again", existing.ID, key)
			exists = false
		}
	}
	if !exists {
		row := &models.NotificationPreference{
			UserID:        s.userID,
			PreferenceKey: key,
			EmailEnabled:  d.DefaultEmailEnabled,
			PushEnabled:   false,
			Frequency:     d.DefaultFrequency,
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
		stored, err = s.repo.Insert(ctx, row)
	}
	if err != nil {
		log.Printf("❌ Preferences: update %s failed for user_id=%s: %v", key, s.userID, err)
		return nil, fmt.Errorf("failed to update preference %s: %w", key, err)
	}

	s.mu.Lock()
	if !s.closed {
		s.prefs[key] = *stored
	}
	s.mu.Unlock()

	log.Printf("✅ Preferences: %s saved for user_id=%s", key, s.userID)
	return stored, nil
}

type keyedUpdate struct {
	key    models.PreferenceKey
	update models.PreferenceUpdate
}

// runBulk writes every update in order; one key failing does not stop the rest
func (s *PreferenceStore) runBulk(ctx context.Context, updates []keyedUpdate, successMsg, failureMsg string) (models.BulkOutcome, error) {
	if s.IsGuest() {
		return models.BulkOutcome{Success: false, Message: ErrAuthRequired.Error()}, ErrAuthRequired
	}
	if s.repo == nil {
		return models.BulkOutcome{Success: false, Message: failureMsg}, ErrStorageUnavailable
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return models.BulkOutcome{Success: false, Message: failureMsg}, err
	}

	s.mu.Lock()
	s.saving = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	var failed []models.PreferenceKey
	for _, u := range updates {
		if _, err := s.UpdatePreference(ctx, u.key, u.update); err != nil {
			failed = append(failed, u.key)
		}
	}

	if len(failed) > 0 {
		log.Printf("❌ Preferences: %d of %d keys failed for user_id=%s", len(failed), len(updates), s.userID)
		return models.BulkOutcome{Success: false, Message: failureMsg, FailedKeys: failed}, nil
	}
	return models.BulkOutcome{Success: true, Message: successMsg}, nil
}

func (s *PreferenceStore) setAllEmail(ctx context.Context, enabled bool, successMsg, failureMsg string) (models.BulkOutcome, error) {
	updates := make([]keyedUpdate, 0, len(models.DefaultPreferences))
	for _, d := range models.DefaultPreferences {
		v := enabled
		updates = append(updates, keyedUpdate{key: d.Key, update: models.PreferenceUpdate{EmailEnabled: &v}})
	}
	return s.runBulk(ctx, updates, successMsg, failureMsg)
}

// EnableAllEmail turns email on for every preference key
func (s *PreferenceStore) EnableAllEmail(ctx context.Context) (models.BulkOutcome, error) {
	return s.setAllEmail(ctx, true, "All email notifications enabled", "Failed to enable notifications")
}

// DisableAllEmail turns email off for every preference key
func (s *PreferenceStore) DisableAllEmail(ctx context.Context) (models.BulkOutcome, error) {
	return s.setAllEmail(ctx, false, "All email notifications disabled", "Failed to disable notifications")
}

// SaveAll writes a full value for each listed key. Every entry is validated
// before the first write.
func (s *PreferenceStore) SaveAll(ctx context.Context, values []models.PreferenceValue) (models.BulkOutcome, error) {
	if s.IsGuest() {
		return models.BulkOutcome{Success: false, Message: ErrAuthRequired.Error()}, ErrAuthRequired
	}

	updates := make([]keyedUpdate, 0, len(values))
	for _, v := range values {
		if _, ok := models.DefaultFor(v.Key); !ok {
			return models.BulkOutcome{}, validationErrorf("invalid preference key %q", v.Key)
		}
		if _, err := models.ParseFrequency(string(v.Frequency)); err != nil {
			return models.BulkOutcome{}, &ValidationError{Message: err.Error()}
		}
		email, push, freq := v.EmailEnabled, v.PushEnabled, v.Frequency
		updates = append(updates, keyedUpdate{
			key:    v.Key,
			update: models.PreferenceUpdate{EmailEnabled: &email, PushEnabled: &push, Frequency: &freq},
		})
	}
	return s.runBulk(ctx, updates, "Notification preferences saved!", "Failed to save preferences")
}

// Snapshot returns every preference key with its effective value
func (s *PreferenceStore) Snapshot() models.PreferencesResponse {
	views := make([]models.PreferenceView, 0, len(models.DefaultPreferences))
	for _, d := range models.DefaultPreferences {
		v := s.GetPreferenceValue(d.Key)
		views = append(views, models.PreferenceView{
			Key:          d.Key,
			Category:     d.Category,
			Title:        d.Title,
			Description:  d.Description,
			EmailEnabled: v.EmailEnabled,
			PushEnabled:  v.PushEnabled,
			Frequency:    v.Frequency,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return models.PreferencesResponse{
		State:       string(s.state),
		Saving:      s.saving,
		Guest:       s.userID == "",
		Preferences: views,
	}
}

// Close tears the store down; in-flight results are dropped afterwards
func (s *PreferenceStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// PreferenceRegistry hands out one PreferenceStore per signed-in user
type PreferenceRegistry struct {
	mu     sync.Mutex
	repo   repository.PreferenceRepositoryInterface
	stores map[string]*PreferenceStore
}

// NewPreferenceRegistry creates a PreferenceRegistry; repo may be nil when no database is configured
func NewPreferenceRegistry(repo repository.PreferenceRepositoryInterface) *PreferenceRegistry {
	return &PreferenceRegistry{repo: repo, stores: make(map[string]*PreferenceStore)}
}

// For returns the store of userID. Guests get a fresh store that always
// reads defaults. Stores are loaded on first use and reloaded while the
// last load failed.
func (r *PreferenceRegistry) For(ctx context.Context, userID string) (*PreferenceStore, error) {
	if userID == "" {
		store := NewPreferenceStore(r.repo, "")
		return store, store.Load(ctx)
	}

	r.mu.Lock()
	store, ok := r.stores[userID]
	if !ok {
		store = NewPreferenceStore(r.repo, userID)
		r.stores[userID] = store
	}
	r.mu.Unlock()

	if !store.Loaded() {
		return store, store.Load(ctx)
	}
	return store, nil
}

// Close tears down every store
func (r *PreferenceRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, store := range r.stores {
		store.Close()
		delete(r.stores, id)
	}
}
