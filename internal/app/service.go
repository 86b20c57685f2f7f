/**
 * @description
 * This file contains the core `Service` type for the registry-service and the
 * error kinds business logic reports. The service orchestrates parcel,
 * transfer, user, notification and document operations, coordinating between
 * the database repository, the session store and the message broker.
 *
 * @dependencies
 * - github.com/google/uuid: For UUID generation.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/rabbitmq: For best-effort live event publishing.
 */

package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardhi/registry-service/internal/store"
	"github.com/ardhi/registry-service/pkg/rabbitmq"
)

// Sentinel errors for failures that map to distinct HTTP statuses.
var (
	// ErrInvalidCredentials deliberately covers both unknown email and wrong
	// password so a caller cannot probe which emails exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("this account has been deactivated")
	ErrSessionExpired     = errors.New("refresh session is expired or revoked")
)

// ValidationError marks bad input; handlers render it as 400.
type ValidationError struct{ msg string }

func (e ValidationError) Error() string { return e.msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...interface{}) error {
	return ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ForbiddenError marks an authorization failure; handlers render it as 403.
type ForbiddenError struct{ msg string }

func (e ForbiddenError) Error() string { return e.msg }

// Forbiddenf builds a ForbiddenError from a format string.
func Forbiddenf(format string, args ...interface{}) error {
	return ForbiddenError{msg: fmt.Sprintf(format, args...)}
}

// Service provides the core business logic for the registry.
type Service struct {
	repo     store.Repository
	sessions store.SessionStore
	producer rabbitmq.Publisher

	jwtSecret  string
	jwtIssuer  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates a new registry service instance. The producer may be nil
// when the broker is unavailable; notification persistence still works and
// only the live push is skipped.
func NewService(repo store.Repository, sessions store.SessionStore, producer rabbitmq.Publisher,
	jwtSecret, jwtIssuer string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		sessions:   sessions,
		producer:   producer,
		jwtSecret:  jwtSecret,
		jwtIssuer:  jwtIssuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}
