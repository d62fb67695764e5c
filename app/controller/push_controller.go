package controller

import (
	"log"
	"net/http"

	"ekta-storefront/models"
	"ekta-storefront/service"
	"ekta-storefront/storage"
)

// PushController handles HTTP requests for the push subscription state
type PushController struct {
	push  *service.PushService
	store storage.KeyValueStore
}

// NewPushController creates a new PushController; store is shared and scoped per session
func NewPushController(push *service.PushService, store storage.KeyValueStore) *PushController {
	return &PushController{push: push, store: store}
}

func (c *PushController) sessionStore(w http.ResponseWriter, r *http.Request) (storage.KeyValueStore, bool) {
	s, ok := currentSession(w, r)
	if !ok {
		return nil, false
	}
	return storage.Scoped(c.store, s.ID), true
}

// Push handles GET and DELETE /account/push?permission=
func (c *PushController) Push(w http.ResponseWriter, r *http.Request) {
	store, ok := c.sessionStore(w, r)
	if !ok {
		return
	}
	permission := models.ParsePushPermission(r.URL.Query().Get("permission"))

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, c.push.Status(r.Context(), store, permission))
	case http.MethodDelete:
		state, err := c.push.Unsubscribe(r.Context(), store, permission)
		if err != nil {
			log.Printf("❌ Unsubscribe: %v", err)
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	default:
		methodNotAllowed(w, "Push", r)
	}
}

// RequestPermission handles POST /account/push/permission
// Body carries the permission the browser prompt settled to
func (c *PushController) RequestPermission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "RequestPermission", r)
		return
	}

	var req models.PushPermissionRequest
	if !decodeJSON(w, r, "RequestPermission", &req) {
		return
	}
	store, ok := c.sessionStore(w, r)
	if !ok {
		return
	}

	prompter := service.ReportedPermission(models.ParsePushPermission(req.Permission))
	granted, state, err := c.push.RequestPermission(r.Context(), store, prompter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.PushPermissionResponse{Granted: granted, State: state})
}
