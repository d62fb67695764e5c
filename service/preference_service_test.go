package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ekta-storefront/models"
)

func boolPtr(b bool) *bool { return &b }

func frequencyPtr(f models.Frequency) *models.Frequency { return &f }

func TestGuestPreferencesUseDefaults(t *testing.T) {
	repo := newFakePreferenceRepo()
	store := NewPreferenceStore(repo, "")

	require.NoError(t, store.Load(context.Background()))
	assert.Equal(t, PreferenceStateReady, store.State())
	assert.Equal(t, 0, repo.findCalls)

	for _, d := range models.DefaultPreferences {
		v := store.GetPreferenceValue(d.Key)
		if d.Key == models.PreferencePromotions {
			assert.False(t, v.EmailEnabled)
			assert.Equal(t, models.FrequencyWeekly, v.Frequency)
		} else {
			assert.True(t, v.EmailEnabled, d.Key)
			assert.Equal(t, models.FrequencyInstant, v.Frequency, d.Key)
		}
	}

	snapshot := store.Snapshot()
	assert.True(t, snapshot.Guest)
	assert.Len(t, snapshot.Preferences, len(models.DefaultPreferences))
}

func TestGuestCannotWrite(t *testing.T) {
	ctx := context.Background()
	store := NewPreferenceStore(newFakePreferenceRepo(), "")

	_, err := store.UpdatePreference(ctx, models.PreferenceOrderUpdates, models.PreferenceUpdate{EmailEnabled: boolPtr(false)})
	assert.ErrorIs(t, err, ErrAuthRequired)

	outcome, err := store.EnableAllEmail(ctx)
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.False(t, outcome.Success)

	_, err = store.SaveAll(ctx, nil)
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestLoadUsesStoredRows(t *testing.T) {
	repo := newFakePreferenceRepo()
	repo.seed("u1", models.PreferenceOrderUpdates, false, models.FrequencyDaily)
	repo.seed("u2", models.PreferencePriceDrops, false, models.FrequencyNever)

	store := NewPreferenceStore(repo, "u1")
	require.NoError(t, store.Load(context.Background()))

	v := store.GetPreferenceValue(models.PreferenceOrderUpdates)
	assert.False(t, v.EmailEnabled)
	assert.Equal(t, models.FrequencyDaily, v.Frequency)

	other := store.GetPreferenceValue(models.PreferencePriceDrops)
	assert.True(t, other.EmailEnabled)
}

func TestLoadFailureFallsBackToDefaults(t *testing.T) {
	repo := newFakePreferenceRepo()
	repo.findErr = errBoom

	store := NewPreferenceStore(repo, "u1")
	err := store.Load(context.Background())
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, PreferenceStateReady, store.State())
	assert.False(t, store.Loaded())
	assert.True(t, store.GetPreferenceValue(models.PreferenceOrderUpdates).EmailEnabled)
}

func TestWriteAfterFailedLoadPatchesExistingRow(t *testing.T) {
	ctx := context.Background()
	repo := newFakePreferenceRepo()
	repo.seed("u1", models.PreferenceOrderUpdates, true, models.FrequencyInstant)
	repo.findFailures = 1
	registry := NewPreferenceRegistry(repo)

	store, err := registry.For(ctx, "u1")
	require.ErrorIs(t, err, errBoom)
	require.False(t, store.Loaded())
	seeded, _ := repo.rowFor("u1", models.PreferenceOrderUpdates)

	stored, err := store.UpdatePreference(ctx, models.PreferenceOrderUpdates, models.PreferenceUpdate{EmailEnabled: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, stored.ID)
	assert.Equal(t, 1, repo.countRows("u1", models.PreferenceOrderUpdates))
	assert.Equal(t, 2, repo.findCalls)
	assert.True(t, store.Loaded())
}

func TestRegistryRetriesFailedLoad(t *testing.T) {
	ctx := context.Background()
	repo := newFakePreferenceRepo()
	repo.seed("u1", models.PreferenceOrderUpdates, false, models.FrequencyDaily)
	repo.findFailures = 1
	registry := NewPreferenceRegistry(repo)

	first, err := registry.For(ctx, "u1")
	require.Error(t, err)
	assert.True(t, first.GetPreferenceValue(models.PreferenceOrderUpdates).EmailEnabled)

	second, err := registry.For(ctx, "u1")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.False(t, second.GetPreferenceValue(models.PreferenceOrderUpdates).EmailEnabled)

	_, err = registry.For(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.findCalls)
}

func TestWriteWhileRowsUnknownIsRefused(t *testing.T) {
	ctx := context.Background()
	repo := newFakePreferenceRepo()
	repo.seed("u1", models.PreferenceOrderUpdates, true, models.FrequencyInstant)
	repo.findErr = errBoom
	store := NewPreferenceStore(repo, "u1")
	require.Error(t, store.Load(ctx))

	_, err := store.UpdatePreference(ctx, models.PreferenceOrderUpdates, models.PreferenceUpdate{EmailEnabled: boolPtr(false)})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, errBoom)

	outcome, err := store.DisableAllEmail(ctx)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.False(t, outcome.Success)

	assert.Equal(t, 1, repo.countRows("u1", models.PreferenceOrderUpdates))
	row, _ := repo.rowFor("u1", models.PreferenceOrderUpdates)
	assert.True(t, row.EmailEnabled)
}

func TestUpdatePreferencePatchesExistingRow(t *testing.T) {
	ctx := context.Background()
	repo := newFakePreferenceRepo()
	repo.seed("u1", models.PreferenceOrderUpdates, true, models.FrequencyDaily)
	store := NewPreferenceStore(repo, "u1")
	require.NoError(t, store.Load(ctx))
	before, _ := repo.rowFor("u1", models.PreferenceOrderUpdates)

	stored, err := store.UpdatePreference(ctx, models.PreferenceOrderUpdates, models.PreferenceUpdate{EmailEnabled: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, before.ID, stored.ID)
	assert.False(t, stored.EmailEnabled)
	assert.Equal(t, models.FrequencyDaily, stored.Frequency)
	assert.False(t, store.GetPreferenceValue(models.PreferenceOrderUpdates).EmailEnabled)
}

func TestUpdatePreferenceInsertsFromDefaults(t *testing.T) {
	ctx := context.Background()
	repo := newFakePreferenceRepo()
	store := NewPreferenceStore(repo, "u1")
	require.NoError(t, store.Load(ctx))

	_, err := store.UpdatePreference(ctx, models.PreferencePromotions, models.PreferenceUpdate{PushEnabled: boolPtr(true)})
	require.NoError(t, err)

	row, ok := repo.rowFor("u1", models.PreferencePromotions)
	require.True(t, ok)
	assert.False(t, row.EmailEnabled)
	assert.True(t, row.PushEnabled)
	assert.Equal(t, models.FrequencyWeekly, row.Frequency)
}

func TestUpdatePreferenceReinsertsVanishedRow(t *testing.T) {
	ctx := context.Background()
	repo := newFakePreferenceRepo()
	repo.seed("u1", models.PreferenceOrderUpdates, true, models.FrequencyInstant)
	store := NewPreferenceStore(repo, "u1")
	require.NoError(t, store.Load(ctx))

	old, _ := repo.rowFor("u1", models.PreferenceOrderUpdates)
	repo.mu.Lock()
	delete(repo.rows, old.ID)
	repo.mu.Unlock()

	stored, err := store.UpdatePreference(ctx, models.PreferenceOrderUpdates, models.PreferenceUpdate{Frequency: frequencyPtr(models.FrequencyDaily)})
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, stored.ID)
	assert.Equal(t, models.FrequencyDaily, stored.Frequency)
}

func TestUpdatePreferenceFailureKeepsLocalState(t *testing.T) {
	ctx := context.Background()
	repo := newFakePreferenceRepo()
	repo.seed("u1", models.PreferenceOrderUpdates, true, models.FrequencyInstant)
	repo.failKeys[models.PreferenceOrderUpdates] = true
	store := NewPreferenceStore(repo, "u1")
	require.NoError(t, store.Load(ctx))

	_, err := store.UpdatePreference(ctx, models.PreferenceOrderUpdates, models.PreferenceUpdate{EmailEnabled: boolPtr(false)})
	assert.ErrorIs(t, err, errBoom)
	assert.True(t, store.GetPreferenceValue(models.PreferenceOrderUpdates).EmailEnabled)
}

func TestUpdatePreferenceValidation(t *testing.T) {
	ctx := context.Background()
	store := NewPreferenceStore(newFakePreferenceRepo(), "u1")

	_, err := store.UpdatePreference(ctx, models.PreferenceKey("sms"), models.PreferenceUpdate{EmailEnabled: boolPtr(true)})
	assert.True(t, IsValidationError(err))

	_, err = store.UpdatePreference(ctx, models.PreferenceOrderUpdates, models.PreferenceUpdate{})
	assert.True(t, IsValidationError(err))

	_, err = store.UpdatePreference(ctx, models.PreferenceOrderUpdates, models.PreferenceUpdate{Frequency: frequencyPtr("hourly")})
	assert.True(t, IsValidationError(err))
}

func TestBulkEmailToggle(t *testing.T) {
	ctx := context.Background()
	repo := newFakePreferenceRepo()
	store := NewPreferenceStore(repo, "u1")
	require.NoError(t, store.Load(ctx))

	outcome, err := store.EnableAllEmail(ctx)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "All email notifications enabled", outcome.Message)
	for _, d := range models.DefaultPreferences {
		assert.True(t, store.GetPreferenceValue(d.Key).EmailEnabled, d.Key)
	}

	outcome, err = store.DisableAllEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, "All email notifications disabled", outcome.Message)
	for _, d := range models.DefaultPreferences {
		assert.False(t, store.GetPreferenceValue(d.Key).EmailEnabled, d.Key)
	}
	assert.False(t, store.Saving())
}

func TestBulkContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	repo := newFakePreferenceRepo()
	repo.failKeys[models.PreferencePriceDrops] = true
	store := NewPreferenceStore(repo, "u1")
	require.NoError(t, store.Load(ctx))

	outcome, err := store.DisableAllEmail(ctx)
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, "Failed to disable notifications", outcome.Message)
	assert.Equal(t, []models.PreferenceKey{models.PreferencePriceDrops}, outcome.FailedKeys)

	assert.True(t, store.GetPreferenceValue(models.PreferencePriceDrops).EmailEnabled)
	assert.False(t, store.GetPreferenceValue(models.PreferenceSecurityAlerts).EmailEnabled)
}

func TestSaveAll(t *testing.T) {
	ctx := context.Background()
	repo := newFakePreferenceRepo()
	store := NewPreferenceStore(repo, "u1")
	require.NoError(t, store.Load(ctx))

	outcome, err := store.SaveAll(ctx, []models.PreferenceValue{
		{Key: models.PreferenceOrderUpdates, EmailEnabled: false, PushEnabled: true, Frequency: models.FrequencyDaily},
		{Key: models.PreferencePromotions, EmailEnabled: true, PushEnabled: false, Frequency: models.FrequencyNever},
	})
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "Notification preferences saved!", outcome.Message)

	v := store.GetPreferenceValue(models.PreferenceOrderUpdates)
	assert.Equal(t, models.PreferenceValue{Key: models.PreferenceOrderUpdates, PushEnabled: true, Frequency: models.FrequencyDaily}, v)

	_, err = store.SaveAll(ctx, []models.PreferenceValue{{Key: models.PreferenceOrderUpdates, Frequency: "hourly"}})
	assert.True(t, IsValidationError(err))
}

func TestStaleLoadResultIsDropped(t *testing.T) {
	ctx := context.Background()
	repo := newFakePreferenceRepo()
	repo.seed("u1", models.PreferenceOrderUpdates, true, models.FrequencyInstant)
	store := NewPreferenceStore(repo, "u1")

	require.NoError(t, store.Load(ctx))
	staleToken := store.token
	require.NoError(t, store.Load(ctx))

	store.apply(staleToken, []models.NotificationPreference{
		{ID: "x", UserID: "u1", PreferenceKey: models.PreferenceOrderUpdates, EmailEnabled: false, Frequency: models.FrequencyNever},
	}, true)
	assert.True(t, store.GetPreferenceValue(models.PreferenceOrderUpdates).EmailEnabled)
}

func TestCancelledLoadIsDiscarded(t *testing.T) {
	repo := newFakePreferenceRepo()
	repo.block = make(chan struct{})
	store := NewPreferenceStore(repo, "u1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := store.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, PreferenceStateLoading, store.State())
}

func TestLoadAfterCloseIsDropped(t *testing.T) {
	repo := newFakePreferenceRepo()
	repo.block = make(chan struct{})
	store := NewPreferenceStore(repo, "u1")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.Load(context.Background())
	}()

	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return repo.findCalls == 1
	}, time.Second, time.Millisecond)

	store.Close()
	close(repo.block)
	wg.Wait()

	assert.Equal(t, PreferenceStateLoading, store.State())
	assert.ErrorIs(t, store.Load(context.Background()), ErrStoreClosed)
	_, err := store.UpdatePreference(context.Background(), models.PreferenceOrderUpdates, models.PreferenceUpdate{EmailEnabled: boolPtr(true)})
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestPreferencesWithoutDatabase(t *testing.T) {
	ctx := context.Background()
	store := NewPreferenceStore(nil, "u1")

	assert.ErrorIs(t, store.Load(ctx), ErrStorageUnavailable)
	assert.Equal(t, PreferenceStateReady, store.State())

	_, err := store.UpdatePreference(ctx, models.PreferenceOrderUpdates, models.PreferenceUpdate{EmailEnabled: boolPtr(true)})
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = store.EnableAllEmail(ctx)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestPreferenceRegistry(t *testing.T) {
	ctx := context.Background()
	repo := newFakePreferenceRepo()
	registry := NewPreferenceRegistry(repo)

	a, err := registry.For(ctx, "u1")
	require.NoError(t, err)
	b, err := registry.For(ctx, "u1")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, repo.findCalls)

	guest, err := registry.For(ctx, "")
	require.NoError(t, err)
	assert.True(t, guest.IsGuest())
	assert.Equal(t, 1, repo.findCalls)

	registry.Close()
	_, err = a.UpdatePreference(ctx, models.PreferenceOrderUpdates, models.PreferenceUpdate{EmailEnabled: boolPtr(true)})
	assert.ErrorIs(t, err, ErrStoreClosed)

	fresh, err := registry.For(ctx, "u1")
	require.NoError(t, err)
	assert.NotSame(t, a, fresh)
}
