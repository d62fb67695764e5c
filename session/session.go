package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying the guest session id
const CookieName = "ekta_session"

const guestCookieMaxAge = 30 * 24 * time.Hour

// Session identifies the shopper behind a request.
// UserID is empty for guests.
type Session struct {
	ID     string
	UserID string
}

// IsGuest reports whether the session has no signed-in user
func (s Session) IsGuest() bool {
	return s.UserID == ""
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by the middleware
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}

// Claims are the JWT claims of a signed-in shopper; Subject is the user id
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Manager validates bearer tokens and hands out guest sessions
type Manager struct {
	secret       []byte
	secureCookie bool
}

// NewManager creates a Manager. An empty secret rejects every bearer token.
func NewManager(secret string, secureCookie bool) *Manager {
	return &Manager{secret: []byte(secret), secureCookie: secureCookie}
}

// Validate parses a token and returns its claims
func (m *Manager) Validate(tokenStr string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, errors.New("jwt secret is not configured")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token subject is required")
	}
	return claims, nil
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Middleware attaches a Session to every request. A bearer token signs the
// shopper in; without one a guest cookie is used, issued on first visit.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeUnauthorized(w, "Invalid Authorization header format (expected 'Bearer <token>')")
				return
			}
			claims, err := m.Validate(parts[1])
			if err != nil {
				log.Printf("❌ Rejected bearer token: %v", err)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}
			s := Session{ID: "user:" + claims.Subject, UserID: claims.Subject}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
			return
		}

		guestID := ""
		if c, err := r.Cookie(CookieName); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				guestID = c.Value
			}
		}
		if guestID == "" {
			guestID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    guestID,
				Path:     "/",
				MaxAge:   int(guestCookieMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   m.secureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}
		s := Session{ID: "guest:" + guestID}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}
