package service

import (
	"context"
	"fmt"
	"log"

	"ekta-storefront/models"
	"ekta-storefront/storage"
)

// PushSubscribedKey is the storage key caching the subscribed flag
const PushSubscribedKey = "push_subscribed"

// PermissionPrompter exposes the notification permission of one client
type PermissionPrompter interface {
	// Permission is the current permission without prompting
	Permission() models.PushPermission
	// Request prompts once and returns the settled permission
	Request(ctx context.Context) (models.PushPermission, error)
}

// ReportedPermission is a PermissionPrompter whose answer was already settled
// by the browser and reported to the server
type ReportedPermission models.PushPermission

func (p ReportedPermission) Permission() models.PushPermission {
	return models.PushPermission(p)
}

func (p ReportedPermission) Request(ctx context.Context) (models.PushPermission, error) {
	if err := ctx.Err(); err != nil {
		return models.PushPermissionDefault, err
	}
	return models.PushPermission(p), nil
}

// PushService derives push subscription state from the client permission and
// the cached subscribed flag. The flag is a convenience cache, not a capability.
type PushService struct{}

// NewPushService creates a new PushService
func NewPushService() *PushService {
	return &PushService{}
}

// Status returns the subscription state for a client reporting permission
func (s *PushService) Status(ctx context.Context, store storage.KeyValueStore, permission models.PushPermission) models.PushSubscriptionState {
	state := models.PushSubscriptionState{
		Permission: permission,
		Supported:  permission != models.PushPermissionUnsupported,
	}
	if !state.Supported {
		return state
	}

	v, found, err := store.Get(ctx, PushSubscribedKey)
	if err != nil {
		log.Printf("⚠️  Push: could not read subscribed flag: %v", err)
		return state
	}
	state.Subscribed = found && v == "true" && permission == models.PushPermissionGranted
	return state
}

// RequestPermission prompts through prompter. Only a granted result marks the
// client subscribed.
func (s *PushService) RequestPermission(ctx context.Context, store storage.KeyValueStore, prompter PermissionPrompter) (bool, models.PushSubscriptionState, error) {
	if prompter.Permission() == models.PushPermissionUnsupported {
		return false, s.Status(ctx, store, models.PushPermissionUnsupported), nil
	}

	result, err := prompter.Request(ctx)
	if err != nil {
		log.Printf("❌ Push: permission request failed: %v", err)
		return false, s.Status(ctx, store, prompter.Permission()), fmt.Errorf("failed to request notification permission: %w", err)
	}

	if result != models.PushPermissionGranted {
		log.Printf("🔕 Push: permission settled to %s", result)
		return false, s.Status(ctx, store, result), nil
	}

	if err := store.Set(ctx, PushSubscribedKey, "true"); err != nil {
		return false, s.Status(ctx, store, result), fmt.Errorf("failed to cache push subscription: %w", err)
	}
	log.Printf("🔔 Push: subscribed")
	return true, s.Status(ctx, store, result), nil
}

// Unsubscribe clears the cached subscribed flag
func (s *PushService) Unsubscribe(ctx context.Context, store storage.KeyValueStore, permission models.PushPermission) (models.PushSubscriptionState, error) {
	if err := store.Delete(ctx, PushSubscribedKey); err != nil {
		return s.Status(ctx, store, permission), fmt.Errorf("failed to clear push subscription: %w", err)
	}
	return s.Status(ctx, store, permission), nil
}
