/**
 * @description
 * One-shot super admin provisioning, run explicitly via the `bootstrap`
 * command rather than at server startup. Idempotent: an existing account
 * under the configured email is left untouched.
 */

package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/ardhi/registry-service/internal/crypto"
	"github.com/ardhi/registry-service/internal/domain"
	"github.com/ardhi/registry-service/internal/store"
)

// SuperAdminSeed carries the configured identity of the root account.
type SuperAdminSeed struct {
	FullName   string
	Email      string
	Password   string
	NationalID string
	KraPin     string
}

// EnsureSuperAdmin creates the root super admin account if no account exists
// under the seed email. Running it again is a no-op.
func (s *Service) EnsureSuperAdmin(ctx context.Context, seed SuperAdminSeed) (*domain.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if email == "" || seed.Password == "" {
		return nil, false, Validationf("super admin email and password must be configured")
	}

	existing, err := s.repo.FindUserByEmail(ctx, email)
	if err == nil {
		log.Printf("level=info component=bootstrap msg=\"super admin already provisioned\" user_id=%s", existing.ID)
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, false, err
	}

	hash, err := crypto.HashPassword(seed.Password)
	if err != nil {
		return nil, false, err
	}
	user := &domain.User{
		FullName:     strings.TrimSpace(seed.FullName),
		Email:        email,
		PasswordHash: hash,
		NationalID:   strings.TrimSpace(seed.NationalID),
		KraPin:       strings.ToUpper(strings.TrimSpace(seed.KraPin)),
		Role:         domain.RoleSuperAdmin,
		IsApproved:   true,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, false, err
	}
	log.Printf("level=info component=bootstrap msg=\"super admin provisioned\" user_id=%s", user.ID)
	return user, true, nil
}
