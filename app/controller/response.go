package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"ekta-storefront/repository"
	"ekta-storefront/service"
	"ekta-storefront/session"
)

// ErrorResponse is the body of every error answer
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps service and repository errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case service.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrImageNotFound),
		errors.Is(err, repository.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func methodNotAllowed(w http.ResponseWriter, handler string, r *http.Request) {
	log.Printf("❌ %s: Method not allowed: %s", handler, r.Method)
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// currentSession returns the session attached by the session middleware
func currentSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		log.Printf("❌ No session on request to %s", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "session missing")
	}
	return s, ok
}

func decodeJSON(w http.ResponseWriter, r *http.Request, handler string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Printf("❌ %s: Failed to decode request body: %v", handler, err)
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// pathParam returns the path segment following prefix, up to the next slash
func pathParam(path, prefix string) string {
	rest := strings.TrimPrefix(path, prefix)
	id, _, _ := strings.Cut(rest, "/")
	return id
}
