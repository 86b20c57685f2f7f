/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface for user records, plus the shared plumbing (constructor, unique
 * violation translation) used by the parcel, transfer, notification and
 * document query files in this package.
 *
 * @dependencies
 * - context, errors, time: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ardhi/registry-service/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// translateUniqueViolation maps a 23505 unique-constraint error onto the
// friendly sentinel for the violated column so handlers can surface a
// readable conflict message instead of driver noise.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	constraint := strings.ToLower(pgErr.ConstraintName)
	switch {
	case strings.Contains(constraint, "email"):
		return ErrDuplicateEmail
	case strings.Contains(constraint, "national_id"):
		return ErrDuplicateNationalID
	case strings.Contains(constraint, "kra_pin"):
		return ErrDuplicateKraPin
	case strings.Contains(constraint, "title_number"):
		return ErrDuplicateTitleNumber
	case strings.Contains(constraint, "parcel_live"):
		return ErrTransferInFlight
	}
	return err
}

const userColumns = `id, full_name, email, password_hash, national_id, kra_pin, phone_number,
	role, county, is_approved, is_active, approved_by, approved_at, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.NationalID,
		&user.KraPin,
		&user.PhoneNumber,
		&user.Role,
		&user.County,
		&user.IsApproved,
		&user.IsActive,
		&user.ApprovedBy,
		&user.ApprovedAt,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user record and fills in the generated ID and
// timestamps. Unique violations on email, national ID or KRA PIN come back
// as the matching duplicate sentinel.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (full_name, email, password_hash, national_id, kra_pin, phone_number,
			role, county, is_approved, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.NationalID,
		user.KraPin,
		user.PhoneNumber,
		user.Role,
		user.County,
		user.IsApproved,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

// FindUserByID retrieves a user by their ID.
func (r *PostgresRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// FindUserByEmail retrieves a user by email, case-insensitively.
func (r *PostgresRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower(btrim($1))`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// FindUserByIdentity retrieves a user by the exact (national ID, KRA PIN) pair.
func (r *PostgresRepository) FindUserByIdentity(ctx context.Context, nationalID, kraPin string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE national_id = btrim($1) AND upper(kra_pin) = upper(btrim($2))`
	return scanUser(r.db.QueryRow(ctx, query, nationalID, kraPin))
}

// ListUsers returns users ordered by creation time, optionally filtered by role.
func (r *PostgresRepository) ListUsers(ctx context.Context, role *domain.Role, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT ` + userColumns + ` FROM users`
	args := []interface{}{}
	if role != nil {
		query += ` WHERE role = $1`
		args = append(args, *role)
	}
	query += ` ORDER BY created_at DESC LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// ListAdminsByCounty returns the approved, active county admins for a county.
func (r *PostgresRepository) ListAdminsByCounty(ctx context.Context, county string) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE role = $1 AND county = $2 AND is_approved AND is_active
		ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, domain.RoleCountyAdmin, county)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// ListAdminsByRole returns all active admins holding the given role.
func (r *PostgresRepository) ListAdminsByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 AND is_active ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// UpdateUser rewrites the mutable columns of a user row.
func (r *PostgresRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users SET
			full_name = $2, phone_number = $3, role = $4, county = $5,
			is_approved = $6, is_active = $7, approved_by = $8, approved_at = $9,
			password_hash = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.FullName,
		user.PhoneNumber,
		user.Role,
		user.County,
		user.IsApproved,
		user.IsActive,
		user.ApprovedBy,
		user.ApprovedAt,
		user.PasswordHash,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return translateUniqueViolation(err)
	}
	return nil
}

// RecordLogin stamps the last successful login time.
func (r *PostgresRepository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $2, updated_at = NOW() WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser removes a user row. Only NLC admin records support deletion;
// the service layer enforces that rule.
func (r *PostgresRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func collectUsers(rows pgx.Rows) ([]domain.User, error) {
	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// placeholder renders the $n positional argument marker for dynamically
// assembled queries.
func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
