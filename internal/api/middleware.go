/**
 * @description
 * Authentication and authorization middleware. Every protected route passes
 * through Authenticate, which validates the bearer token and loads the live
 * user record so deactivation takes effect immediately. Role checks layer on
 * top: super admins pass every role gate, and county admins face an extra
 * approval gate before privileged county operations.
 */

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/app"
	"github.com/ardhi/registry-service/internal/auth"
	"github.com/ardhi/registry-service/internal/domain"
	"github.com/ardhi/registry-service/internal/store"
)

type contextKey string

const userContextKey contextKey = "authenticated-user"

// UserFromContext returns the authenticated user injected by Authenticate.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok
}

// Authenticate validates the Authorization bearer token, loads the user
// record behind it and rejects inactive accounts.
func Authenticate(repo store.Repository, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				respondJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Missing or malformed authorization header"})
				return
			}
			claims, err := auth.ParseToken(jwtSecret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				respondJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Invalid or expired token"})
				return
			}
			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				respondJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Invalid or expired token"})
				return
			}
			user, err := repo.FindUserByID(r.Context(), userID)
			if err != nil {
				respondJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Account no longer exists"})
				return
			}
			if !user.IsActive {
				respondError(w, app.ErrAccountDisabled)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
		})
	}
}

// RequireRoles allows only the listed roles through. Super admins always
// pass.
func RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				respondJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Authentication required"})
				return
			}
			if user.Role != domain.RoleSuperAdmin && !allowed[user.Role] {
				respondJSON(w, http.StatusForbidden, envelope{Success: false, Message: "You do not have permission to perform this action"})
				return
			}
			// County admins must clear the approval gate before any
			// privileged operation.
			if user.Role == domain.RoleCountyAdmin && !user.IsApproved {
				respondJSON(w, http.StatusForbidden, envelope{Success: false, Message: "Your county admin account is awaiting approval"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
