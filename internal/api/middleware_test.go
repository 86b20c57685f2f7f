package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/auth"
	"github.com/ardhi/registry-service/internal/domain"
	"github.com/ardhi/registry-service/internal/store"
)

const testSecret = "middleware-test-secret"

// userRepoStub serves FindUserByID from a fixed map; everything else panics
// via the embedded nil interface.
type userRepoStub struct {
	store.Repository
	users map[uuid.UUID]*domain.User
}

func (s *userRepoStub) FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func stubUser(role domain.Role, approved, active bool) (*userRepoStub, *domain.User) {
	user := &domain.User{
		ID:         uuid.New(),
		FullName:   "Test User",
		Role:       role,
		IsApproved: approved,
		IsActive:   active,
	}
	return &userRepoStub{users: map[uuid.UUID]*domain.User{user.ID: user}}, user
}

func bearerFor(t *testing.T, user *domain.User) string {
	t.Helper()
	token, err := auth.NewAccessToken(testSecret, "registry-service", time.Minute, auth.Claims{
		UserID: user.ID.String(),
		Role:   string(user.Role),
		County: user.County,
	})
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	return "Bearer " + token
}

func TestAuthenticateInjectsUser(t *testing.T) {
	repo, user := stubUser(domain.RoleUser, true, true)

	var seen *domain.User
	handler := Authenticate(repo, testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", bearerFor(t, user))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.ID != user.ID {
		t.Fatal("expected the authenticated user in the request context")
	}
}

func TestAuthenticateRejections(t *testing.T) {
	repo, user := stubUser(domain.RoleUser, true, true)
	inactiveRepo, inactiveUser := stubUser(domain.RoleUser, true, false)

	tests := []struct {
		name   string
		repo   store.Repository
		header string
		want   int
	}{
		{name: "missing header", repo: repo, header: "", want: http.StatusUnauthorized},
		{name: "malformed header", repo: repo, header: "Token abc", want: http.StatusUnauthorized},
		{name: "garbage token", repo: repo, header: "Bearer not-a-jwt", want: http.StatusUnauthorized},
		{name: "unknown user", repo: &userRepoStub{users: map[uuid.UUID]*domain.User{}}, header: bearerFor(t, user), want: http.StatusUnauthorized},
		{name: "deactivated account", repo: inactiveRepo, header: bearerFor(t, inactiveUser), want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Authenticate(tt.repo, testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	repo, user := stubUser(domain.RoleUser, true, true)
	token, err := auth.NewAccessToken(testSecret, "registry-service", -time.Minute, auth.Claims{
		UserID: user.ID.String(),
		Role:   string(user.Role),
	})
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	handler := Authenticate(repo, testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name     string
		role     domain.Role
		approved bool
		allowed  []domain.Role
		want     int
	}{
		{name: "role in allow-list passes", role: domain.RoleNLCAdmin, approved: true, allowed: []domain.Role{domain.RoleNLCAdmin}, want: http.StatusOK},
		{name: "super admin always passes", role: domain.RoleSuperAdmin, approved: true, allowed: []domain.Role{domain.RoleCountyAdmin}, want: http.StatusOK},
		{name: "role outside allow-list blocked", role: domain.RoleUser, approved: true, allowed: []domain.Role{domain.RoleNLCAdmin}, want: http.StatusForbidden},
		{name: "approved county admin passes", role: domain.RoleCountyAdmin, approved: true, allowed: []domain.Role{domain.RoleCountyAdmin}, want: http.StatusOK},
		{name: "unapproved county admin blocked", role: domain.RoleCountyAdmin, approved: false, allowed: []domain.Role{domain.RoleCountyAdmin}, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &domain.User{ID: uuid.New(), Role: tt.role, IsApproved: tt.approved, IsActive: true}
			handler := RequireRoles(tt.allowed...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(context.WithValue(req.Context(), userContextKey, user))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
