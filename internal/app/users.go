/**
 * @description
 * Admin-driven account management: creating staff accounts, profile updates,
 * the county-admin approval gate, deactivation and the NLC-admin delete.
 * County admin accounts are created unapproved and stay locked out of
 * privileged routes until a national-level admin approves them.
 */

package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/crypto"
	"github.com/ardhi/registry-service/internal/domain"
)

// CreateUser provisions an account with an explicit role. County is mandatory
// for county admins and dropped for everyone else. County admin accounts
// start unapproved.
func (s *Service) CreateUser(ctx context.Context, actor *domain.User, req domain.CreateUserRequest) (*domain.User, error) {
	if !req.Role.Valid() {
		return nil, Validationf("unknown role %q", req.Role)
	}
	if req.Role == domain.RoleSuperAdmin && actor.Role != domain.RoleSuperAdmin {
		return nil, Forbiddenf("only a super admin may create super admin accounts")
	}
	if err := validateRegistration(domain.RegisterRequest{
		FullName:   req.FullName,
		Email:      req.Email,
		Password:   req.Password,
		NationalID: req.NationalID,
		KraPin:     req.KraPin,
	}); err != nil {
		return nil, err
	}

	county := strings.TrimSpace(req.County)
	if req.Role == domain.RoleCountyAdmin && county == "" {
		return nil, Validationf("a county assignment is required for county admins")
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
		Role:         req.Role,
		IsApproved:   req.Role != domain.RoleCountyAdmin, // county admins await approval
		IsActive:     true,
	}
	if req.Role == domain.RoleCountyAdmin {
		user.County = &county
	}
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" {
		user.PhoneNumber = &phone
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers lists accounts, optionally filtered by role.
func (s *Service) ListUsers(ctx context.Context, role *domain.Role, limit, offset int) ([]domain.User, error) {
	if role != nil && !role.Valid() {
		return nil, Validationf("unknown role %q", *role)
	}
	return s.repo.ListUsers(ctx, role, limit, offset)
}

// GetUser loads one account by ID.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.FindUserByID(ctx, id)
}

// UpdateUser applies the mutable profile fields.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req domain.UpdateUserRequest) (*domain.User, error) {
	user, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, Validationf("full name cannot be blank")
		}
		user.FullName = name
	}
	if req.PhoneNumber != nil {
		if phone := strings.TrimSpace(*req.PhoneNumber); phone != "" {
			user.PhoneNumber = &phone
		} else {
			user.PhoneNumber = nil
		}
	}
	if req.County != nil {
		if user.Role != domain.RoleCountyAdmin {
			return nil, Validationf("only county admins carry a county assignment")
		}
		county := strings.TrimSpace(*req.County)
		if county == "" {
			return nil, Validationf("county assignment cannot be blank")
		}
		user.County = &county
	}
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ApproveCountyAdmin lifts the approval gate on a county admin account and
// tells them.
func (s *Service) ApproveCountyAdmin(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.User, error) {
	user, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleCountyAdmin {
		return nil, Validationf("only county admin accounts require approval")
	}
	if user.IsApproved {
		return user, nil
	}

	now := time.Now().UTC()
	user.IsApproved = true
	user.ApprovedBy = &actor.ID
	user.ApprovedAt = &now
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.notify(ctx, domain.Notification{
		RecipientID: user.ID,
		Type:        domain.NotifyAccountApproved,
		Title:       "Account approved",
		Message:     "Your county admin account has been approved. You now have full access to county operations.",
		RelatedTo:   &domain.RelatedRef{Model: domain.RelatedUser, ID: user.ID},
	})
	return user, nil
}

// DeactivateUser disables an account; existing refresh sessions are revoked
// so the lockout takes effect at the next token refresh.
func (s *Service) DeactivateUser(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.User, error) {
	if actor.ID == id {
		return nil, Validationf("you cannot deactivate your own account")
	}
	user, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleSuperAdmin {
		return nil, Forbiddenf("super admin accounts cannot be deactivated")
	}
	if !user.IsActive {
		return user, nil
	}
	user.IsActive = false
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	if err := s.sessions.DeleteUserSessions(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an NLC admin record. Other roles are never hard-deleted.
func (s *Service) DeleteUser(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	if actor.ID == id {
		return Validationf("you cannot delete your own account")
	}
	user, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role != domain.RoleNLCAdmin {
		return Validationf("only NLC admin records support deletion; deactivate instead")
	}
	if err := s.repo.DeleteUser(ctx, user.ID); err != nil {
		return err
	}
	return s.sessions.DeleteUserSessions(ctx, user.ID)
}
