/**
 * @description
 * PostgreSQL queries for land parcel records. The nested approval records and
 * the append-only ownership history are stored as JSONB columns and marshalled
 * explicitly at this boundary so the domain structs stay database-agnostic.
 */

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ardhi/registry-service/internal/domain"
)

const parcelColumns = `id, title_number, owner_id, owner_name, owner_national_id,
	county, sub_county, constituency, ward, size_value, size_unit, zoning, market_value,
	status, approval_status, is_verified, county_approval, nlc_approval,
	is_fraudulent, fraud_reason, fraud_flagged_at, fraud_flagged_by,
	ownership_history, created_by, created_at, updated_at`

func scanParcel(row pgx.Row) (*domain.Parcel, error) {
	var (
		parcel         domain.Parcel
		countyApproval []byte
		nlcApproval    []byte
		history        []byte
	)
	err := row.Scan(
		&parcel.ID,
		&parcel.TitleNumber,
		&parcel.OwnerID,
		&parcel.OwnerName,
		&parcel.OwnerNationalID,
		&parcel.County,
		&parcel.SubCounty,
		&parcel.Constituency,
		&parcel.Ward,
		&parcel.SizeValue,
		&parcel.SizeUnit,
		&parcel.Zoning,
		&parcel.MarketValue,
		&parcel.Status,
		&parcel.ApprovalStatus,
		&parcel.IsVerified,
		&countyApproval,
		&nlcApproval,
		&parcel.IsFraudulent,
		&parcel.FraudReason,
		&parcel.FraudFlagged,
		&parcel.FraudBy,
		&history,
		&parcel.CreatedBy,
		&parcel.CreatedAt,
		&parcel.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrParcelNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(countyApproval, &parcel.CountyApproval); err != nil {
		return nil, fmt.Errorf("decode county approval: %w", err)
	}
	if err := json.Unmarshal(nlcApproval, &parcel.NLCApproval); err != nil {
		return nil, fmt.Errorf("decode nlc approval: %w", err)
	}
	if err := json.Unmarshal(history, &parcel.OwnershipHistory); err != nil {
		return nil, fmt.Errorf("decode ownership history: %w", err)
	}
	return &parcel, nil
}

func parcelJSONColumns(parcel *domain.Parcel) (countyApproval, nlcApproval, history []byte, err error) {
	if countyApproval, err = json.Marshal(parcel.CountyApproval); err != nil {
		return nil, nil, nil, err
	}
	if nlcApproval, err = json.Marshal(parcel.NLCApproval); err != nil {
		return nil, nil, nil, err
	}
	if parcel.OwnershipHistory == nil {
		parcel.OwnershipHistory = []domain.OwnershipEntry{}
	}
	if history, err = json.Marshal(parcel.OwnershipHistory); err != nil {
		return nil, nil, nil, err
	}
	return countyApproval, nlcApproval, history, nil
}

// CreateParcel inserts a new parcel record. A duplicate title number comes
// back as ErrDuplicateTitleNumber.
func (r *PostgresRepository) CreateParcel(ctx context.Context, parcel *domain.Parcel) error {
	countyApproval, nlcApproval, history, err := parcelJSONColumns(parcel)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO parcels (title_number, owner_id, owner_name, owner_national_id,
			county, sub_county, constituency, ward, size_value, size_unit, zoning, market_value,
			status, approval_status, is_verified, county_approval, nlc_approval,
			ownership_history, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRow(ctx, query,
		parcel.TitleNumber,
		parcel.OwnerID,
		parcel.OwnerName,
		parcel.OwnerNationalID,
		parcel.County,
		parcel.SubCounty,
		parcel.Constituency,
		parcel.Ward,
		parcel.SizeValue,
		parcel.SizeUnit,
		parcel.Zoning,
		parcel.MarketValue,
		parcel.Status,
		parcel.ApprovalStatus,
		parcel.IsVerified,
		countyApproval,
		nlcApproval,
		history,
		parcel.CreatedBy,
	).Scan(&parcel.ID, &parcel.CreatedAt, &parcel.UpdatedAt)
	if err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

// FindParcelByID retrieves a parcel by its ID.
func (r *PostgresRepository) FindParcelByID(ctx context.Context, id uuid.UUID) (*domain.Parcel, error) {
	query := `SELECT ` + parcelColumns + ` FROM parcels WHERE id = $1`
	return scanParcel(r.db.QueryRow(ctx, query, id))
}

// FindParcelByTitleNumber retrieves a parcel by its unique title number.
func (r *PostgresRepository) FindParcelByTitleNumber(ctx context.Context, titleNumber string) (*domain.Parcel, error) {
	query := `SELECT ` + parcelColumns + ` FROM parcels WHERE upper(title_number) = upper(btrim($1))`
	return scanParcel(r.db.QueryRow(ctx, query, titleNumber))
}

// SearchParcels lists parcels matching the given filters, newest first.
// Soft-deleted parcels are excluded unless explicitly requested by status.
func (r *PostgresRepository) SearchParcels(ctx context.Context, opts domain.ParcelSearchOptions) ([]domain.Parcel, error) {
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 50
	}
	query := `SELECT ` + parcelColumns + ` FROM parcels WHERE 1=1`
	args := []interface{}{}
	if opts.TitleNumber != "" {
		args = append(args, "%"+opts.TitleNumber+"%")
		query += ` AND title_number ILIKE ` + placeholder(len(args))
	}
	if opts.County != "" {
		args = append(args, opts.County)
		query += ` AND county = ` + placeholder(len(args))
	}
	if opts.Status != "" {
		args = append(args, opts.Status)
		query += ` AND status = ` + placeholder(len(args))
	} else {
		args = append(args, domain.ParcelDeleted)
		query += ` AND status <> ` + placeholder(len(args))
	}
	if opts.OwnerID != nil {
		args = append(args, *opts.OwnerID)
		query += ` AND owner_id = ` + placeholder(len(args))
	}
	args = append(args, opts.Limit)
	query += ` ORDER BY created_at DESC LIMIT ` + placeholder(len(args))
	args = append(args, opts.Offset)
	query += ` OFFSET ` + placeholder(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parcels := []domain.Parcel{}
	for rows.Next() {
		parcel, err := scanParcel(rows)
		if err != nil {
			return nil, err
		}
		parcels = append(parcels, *parcel)
	}
	return parcels, rows.Err()
}

// UpdateParcel rewrites the mutable columns of a parcel row, including the
// JSONB approval records and ownership history.
func (r *PostgresRepository) UpdateParcel(ctx context.Context, parcel *domain.Parcel) error {
	countyApproval, nlcApproval, history, err := parcelJSONColumns(parcel)
	if err != nil {
		return err
	}
	query := `
		UPDATE parcels SET
			owner_id = $2, owner_name = $3, owner_national_id = $4,
			sub_county = $5, constituency = $6, ward = $7,
			size_value = $8, size_unit = $9, zoning = $10, market_value = $11,
			status = $12, approval_status = $13, is_verified = $14,
			county_approval = $15, nlc_approval = $16,
			is_fraudulent = $17, fraud_reason = $18, fraud_flagged_at = $19, fraud_flagged_by = $20,
			ownership_history = $21, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err = r.db.QueryRow(ctx, query,
		parcel.ID,
		parcel.OwnerID,
		parcel.OwnerName,
		parcel.OwnerNationalID,
		parcel.SubCounty,
		parcel.Constituency,
		parcel.Ward,
		parcel.SizeValue,
		parcel.SizeUnit,
		parcel.Zoning,
		parcel.MarketValue,
		parcel.Status,
		parcel.ApprovalStatus,
		parcel.IsVerified,
		countyApproval,
		nlcApproval,
		parcel.IsFraudulent,
		parcel.FraudReason,
		parcel.FraudFlagged,
		parcel.FraudBy,
		history,
	).Scan(&parcel.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrParcelNotFound
		}
		return err
	}
	return nil
}

// CountyDashboard aggregates the headline counts for one county.
func (r *PostgresRepository) CountyDashboard(ctx context.Context, county string) (*CountyDashboard, error) {
	dashboard := &CountyDashboard{County: county}
	query := `
		SELECT
			count(*) FILTER (WHERE status <> 'deleted'),
			count(*) FILTER (WHERE approval_status = 'pending_county_admin'),
			count(*) FILTER (WHERE status = 'pending_transfer'),
			count(*) FILTER (WHERE is_fraudulent)
		FROM parcels
		WHERE county = $1
	`
	err := r.db.QueryRow(ctx, query, county).Scan(
		&dashboard.TotalParcels,
		&dashboard.PendingApprovals,
		&dashboard.ActiveTransfers,
		&dashboard.FlaggedParcels,
	)
	if err != nil {
		return nil, err
	}
	return dashboard, nil
}
