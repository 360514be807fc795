package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

type contextKey string

const (
	UserKey contextKey = "user"
)

// Credential picks the request's credential: an Authorization bearer header
// wins, otherwise the session cookie is used.
func Credential(r *http.Request, store sessions.Store) service.Credential {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return service.Credential{Transport: service.TransportBearer, Token: strings.TrimSpace(parts[1])}
		}
	}

	return service.Credential{Transport: service.TransportSession, Token: SessionToken(store, r)}
}

func Auth(resolver *service.SessionResolver, store sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred := Credential(r, store)

			user, err := resolver.Resolve(r.Context(), cred)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrUnauthenticated):
					log.Printf("ERROR [middleware.Auth] %s credential rejected: %v", cred.Transport, err)
					if cred.Token == "" {
						writeError(w, http.StatusUnauthorized, "Authentication required")
						return
					}
					writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				case errors.Is(err, service.ErrUserNotFound):
					log.Printf("ERROR [middleware.Auth] token subject has no user: %v", err)
					writeError(w, http.StatusNotFound, "User not found")
				default:
					log.Printf("ERROR [middleware.Auth] failed to resolve session: %v", err)
					writeError(w, http.StatusInternalServerError, "Internal server error")
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated users whose role is not in roles.
// It must run after Auth.
func RequireRole(roles ...domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				writeError(w, http.StatusForbidden, "Unauthorized access")
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			log.Printf("ERROR [middleware.RequireRole] user %s has role %q", user.ID, user.Role)
			writeError(w, http.StatusForbidden, "Unauthorized access")
		})
	}
}

func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	user, ok := GetUser(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
