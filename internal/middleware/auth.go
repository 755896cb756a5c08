// internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bertomartin/ashoka-survey-web/internal/auth"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/session"
)

// OrganizationLoader returns the organization list for a session that did
// not carry one in its token.
type OrganizationLoader func(ctx context.Context, sessionID, accessToken string) ([]model.Organization, error)

// SessionAuth validates the session token from the cookie or the
// Authorization header and puts the user into the request context.
func SessionAuth(tokenManager *auth.TokenManager, cookieName string, loadOrgs OrganizationLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := sessionToken(r, cookieName)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "No session")
				return
			}

			claims, err := tokenManager.Validate(token)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			user := claims.UserInfo
			if len(user.Organizations) == 0 && loadOrgs != nil && user.AccessToken != "" {
				orgs, err := loadOrgs(r.Context(), claims.ID, user.AccessToken)
				if err != nil {
					slog.WarnContext(r.Context(), "failed to load session organizations", "userID", user.UserID, "error", err)
				} else {
					user.Organizations = orgs
				}
			}

			next.ServeHTTP(w, r.WithContext(session.WithUser(r.Context(), user)))
		})
	}
}

// RequirePermission answers 403 unless the session user holds p.
func RequirePermission(p auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := session.UserFromContext(r.Context())
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "No session")
				return
			}
			if !auth.Can(user, p) {
				respondWithError(w, http.StatusForbidden, "Not authorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionToken(r *http.Request, cookieName string) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// respondWithError sends a JSON error response
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
