/**
 * @description
 * Authentication flows: citizen registration, credential login, refresh-token
 * rotation and logout. Access tokens are short-lived HS256 JWTs; refresh
 * tokens are opaque, stored server-side by SHA-256 hash and rotated on every
 * use so a replayed token is rejected by comparison.
 */

package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/auth"
	"github.com/ardhi/registry-service/internal/crypto"
	"github.com/ardhi/registry-service/internal/domain"
	"github.com/ardhi/registry-service/internal/store"
)

// Register creates a citizen account with the base user role.
func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		NationalID:   strings.TrimSpace(req.NationalID),
		KraPin:       strings.ToUpper(strings.TrimSpace(req.KraPin)),
		Role:         domain.RoleUser,
		IsApproved:   true, // citizens need no approval gate
		IsActive:     true,
	}
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" {
		user.PhoneNumber = &phone
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("level=info component=auth msg=\"user registered\" user_id=%s", user.ID)
	return user, nil
}

// Login verifies credentials and issues a token pair. Unknown email and wrong
// password produce the same error.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, *domain.AuthTokens, error) {
	user, err := s.repo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	now := time.Now().UTC()
	if err := s.repo.RecordLogin(ctx, user.ID, now); err != nil {
		log.Printf("level=warn component=auth msg=\"failed to record login time\" user_id=%s err=%v", user.ID, err)
	}
	user.LastLoginAt = &now

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Refresh rotates a refresh token: the presented token's session is consumed
// and a fresh pair is issued. A token whose hash has no live session fails.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.AuthTokens, error) {
	tokenHash := crypto.HashToken(strings.TrimSpace(refreshToken))
	session, err := s.sessions.FindRefreshSession(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		_ = s.sessions.DeleteRefreshSession(ctx, tokenHash)
		return nil, ErrSessionExpired
	}

	user, err := s.repo.FindUserByID(ctx, session.UserID)
	if err != nil {
		return nil, ErrSessionExpired
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	// Rotation: the old session dies before the new pair is issued.
	if err := s.sessions.DeleteRefreshSession(ctx, tokenHash); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

// Logout revokes every refresh session the user holds.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.sessions.DeleteUserSessions(ctx, userID)
}

// CurrentUser loads the caller's own profile.
func (s *Service) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.repo.FindUserByID(ctx, userID)
}

func (s *Service) issueTokens(ctx context.Context, user *domain.User) (*domain.AuthTokens, error) {
	accessToken, err := auth.NewAccessToken(s.jwtSecret, s.jwtIssuer, s.accessTTL, auth.Claims{
		UserID: user.ID.String(),
		Role:   string(user.Role),
		County: user.County,
	})
	if err != nil {
		return nil, err
	}

	refreshToken, err := crypto.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	session := domain.RefreshSession{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: crypto.HashToken(refreshToken),
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.sessions.SaveRefreshSession(ctx, session, s.refreshTTL); err != nil {
		return nil, err
	}

	return &domain.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

func validateRegistration(req domain.RegisterRequest) error {
	if strings.TrimSpace(req.FullName) == "" {
		return Validationf("full name is required")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return Validationf("a valid email is required")
	}
	if len(req.Password) < 8 {
		return Validationf("password must be at least 8 characters")
	}
	if strings.TrimSpace(req.NationalID) == "" {
		return Validationf("national ID is required")
	}
	if strings.TrimSpace(req.KraPin) == "" {
		return Validationf("KRA PIN is required")
	}
	return nil
}
