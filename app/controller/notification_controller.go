package controller

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"ekta-storefront/models"
	"ekta-storefront/service"
)

// maxDispatchBody bounds the dispatch request body
const maxDispatchBody = 1 << 20

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin": "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type, x-supabase-client-platform, " +
		"x-supabase-client-platform-version, x-supabase-client-runtime, x-supabase-client-runtime-version",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
}

// NotificationController handles notification dispatch and the account notification list
type NotificationController struct {
	notifications *service.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notifications *service.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// WithCORS sets the CORS headers on every response and answers preflight requests with "ok"
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range corsHeaders {
			w.Header().Set(k, v)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Dispatch handles POST /functions/send-notification
// Body is a single notification or an array of them; all are inserted or none
func (c *NotificationController) Dispatch(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Dispatch: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		methodNotAllowed(w, "Dispatch", r)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxDispatchBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) > maxDispatchBody {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	requests, err := service.DecodeNotifications(body)
	if err != nil {
		log.Printf("❌ Dispatch: %v", err)
		writeServiceError(w, err)
		return
	}

	rows, err := c.notifications.Dispatch(r.Context(), requests)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.DispatchResponse{Success: true, Notifications: rows})
}

// List handles GET /account/notifications?limit=
func (c *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "ListNotifications", r)
		return
	}
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}

	resp, err := c.notifications.List(r.Context(), s.UserID, limit)
	if err != nil {
		log.Printf("❌ ListNotifications: %v", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Action handles POST /account/notifications/{id}/read and POST /account/notifications/read-all
func (c *NotificationController) Action(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "NotificationAction", r)
		return
	}
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/account/notifications/"), "/")
	if rest == "read-all" {
		updated, err := c.notifications.MarkAllRead(r.Context(), s.UserID)
		if err != nil {
			log.Printf("❌ MarkAllRead: %v", err)
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"updated": updated})
		return
	}

	rawID, action, _ := strings.Cut(rest, "/")
	if action != "read" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "notification id must be a positive number")
		return
	}

	if err := c.notifications.MarkRead(r.Context(), s.UserID, id); err != nil {
		log.Printf("❌ MarkRead: %v", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
