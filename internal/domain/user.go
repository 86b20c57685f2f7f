/**
 * @description
 * This file defines the user model and role hierarchy for the registry-service.
 * Every authenticated request resolves to one of these roles; county admins
 * additionally carry a county assignment and an approval gate that blocks
 * privileged actions until a national-level admin has approved the account.
 *
 * @notes
 * - Nullable columns use pointers so the store can distinguish NULL from the
 *   zero value (same convention as the rest of the domain package).
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies a user's position in the administrative hierarchy.
type Role string

const (
	RoleUser        Role = "user"
	RoleCountyAdmin Role = "county_admin"
	RoleNLCAdmin    Role = "nlc_admin"
	RoleSuperAdmin  Role = "super_admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleCountyAdmin, RoleNLCAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether the role carries any administrative privilege.
func (r Role) IsAdmin() bool {
	return r == RoleCountyAdmin || r == RoleNLCAdmin || r == RoleSuperAdmin
}

// User represents a citizen or administrator account.
type User struct {
	ID           uuid.UUID  `json:"id"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	NationalID   string     `json:"national_id"`
	KraPin       string     `json:"kra_pin"`
	PhoneNumber  *string    `json:"phone_number,omitempty"`
	Role         Role       `json:"role"`
	County       *string    `json:"county,omitempty"` // required for county_admin only
	IsApproved   bool       `json:"is_approved"`
	IsActive     bool       `json:"is_active"`
	ApprovedBy   *uuid.UUID `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CanActOnCounty reports whether the user may mutate records belonging to the
// given county. National-level admins are county-unscoped.
func (u *User) CanActOnCounty(county string) bool {
	switch u.Role {
	case RoleNLCAdmin, RoleSuperAdmin:
		return true
	case RoleCountyAdmin:
		return u.County != nil && *u.County == county
	}
	return false
}

// RegisterRequest is the DTO for citizen self-registration.
type RegisterRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	NationalID  string `json:"national_id"`
	KraPin      string `json:"kra_pin"`
	PhoneNumber string `json:"phone_number"`
}

// LoginRequest is the DTO for credential login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthTokens carries a freshly issued credential pair.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds until the access token expires
}

// CreateUserRequest is the DTO for admin-driven account creation. County is
// mandatory when the role is county_admin and ignored otherwise.
type CreateUserRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	NationalID  string `json:"national_id"`
	KraPin      string `json:"kra_pin"`
	PhoneNumber string `json:"phone_number"`
	Role        Role   `json:"role"`
	County      string `json:"county"`
}

// UpdateUserRequest carries the mutable profile fields for admin updates.
type UpdateUserRequest struct {
	FullName    *string `json:"full_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	County      *string `json:"county,omitempty"`
}

// RefreshSession is the server-side record backing a refresh token. Only the
// SHA-256 hash of the token is stored; presenting a token whose hash has no
// live session invalidates the refresh attempt.
type RefreshSession struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
