package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/metrics"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

type LocationRepo struct {
	db      *pgxpool.Pool
	service string
}

func NewLocationRepo(db *pgxpool.Pool, service string) *LocationRepo {
	return &LocationRepo{db: db, service: service}
}

// Upsert stores a location fix. On conflict only the position and
// timestamp change: availability survives every fix, it is owned by
// SetActive.
func (r *LocationRepo) Upsert(ctx context.Context, location *models.CaregiverLocation) error {
	q := TxorDB(ctx, r.db)

	query := `INSERT INTO caregiver_locations (owner_id, role, is_active, last_updated_at, latitude, longitude)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (owner_id) DO UPDATE
	          SET latitude = EXCLUDED.latitude,
	              longitude = EXCLUDED.longitude,
	              last_updated_at = EXCLUDED.last_updated_at;`

	start := time.Now()
	_, err := q.Exec(ctx, query,
		location.OwnerID, location.Role, location.IsActive, location.LastUpdatedAt,
		location.Position.Latitude, location.Position.Longitude,
	)
	metrics.RecordDatabaseQuery(r.service, "location_upsert", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("location repo: Upsert: %w", err)
	}
	return nil
}

func (r *LocationRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.CaregiverLocation, error) {
	q := TxorDB(ctx, r.db)

	query := locationSelect + ` WHERE owner_id = $1;`

	location, err := scanLocation(q.QueryRow(ctx, query, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("location repo: FindByOwner: %w", err)
	}
	return location, nil
}

// SetActive flips availability and reports whether anything changed.
// A caregiver may activate before their first location fix, so a missing
// row is created with the unknown-position sentinel rather than ignored.
func (r *LocationRepo) SetActive(ctx context.Context, ownerID uuid.UUID, active bool) (bool, error) {
	q := TxorDB(ctx, r.db)

	query := `INSERT INTO caregiver_locations (owner_id, role, is_active, last_updated_at, latitude, longitude)
	          VALUES ($1, $2, $3, NOW(), 0, 0)
	          ON CONFLICT (owner_id) DO UPDATE
	          SET is_active = EXCLUDED.is_active, last_updated_at = EXCLUDED.last_updated_at
	          WHERE caregiver_locations.is_active <> EXCLUDED.is_active;`

	tag, err := q.Exec(ctx, query, ownerID, types.RoleCaregiver, active)
	if err != nil {
		return false, fmt.Errorf("location repo: SetActive: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *LocationRepo) SnapshotCaregivers(ctx context.Context) ([]models.CaregiverLocation, error) {
	query := locationSelect + ` WHERE role = $1;`
	return r.queryLocations(ctx, "SnapshotCaregivers", query, types.RoleCaregiver)
}

func (r *LocationRepo) ListUnlocatedCaregivers(ctx context.Context) ([]models.CaregiverLocation, error) {
	query := locationSelect + ` WHERE role = $1 AND is_active AND latitude = 0 AND longitude = 0;`
	return r.queryLocations(ctx, "ListUnlocatedCaregivers", query, types.RoleCaregiver)
}

func (r *LocationRepo) FindByOwners(ctx context.Context, ownerIDs []uuid.UUID) ([]models.CaregiverLocation, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(ownerIDs))
	for _, id := range ownerIDs {
		ids = append(ids, id.String())
	}
	query := locationSelect + ` WHERE owner_id = ANY($1);`
	return r.queryLocations(ctx, "FindByOwners", query, ids)
}

const locationSelect = `SELECT owner_id, role, is_active, last_updated_at, latitude, longitude
	FROM caregiver_locations`

func (r *LocationRepo) queryLocations(ctx context.Context, op, query string, args ...any) ([]models.CaregiverLocation, error) {
	q := TxorDB(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("location repo: %s: %w", op, err)
	}
	defer rows.Close()

	var locations []models.CaregiverLocation
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("location repo: %s: %w", op, err)
		}
		locations = append(locations, *location)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("location repo: %s: %w", op, err)
	}
	return locations, nil
}

func scanLocation(row pgx.Row) (*models.CaregiverLocation, error) {
	var l models.CaregiverLocation
	err := row.Scan(
		&l.OwnerID, &l.Role, &l.IsActive, &l.LastUpdatedAt,
		&l.Position.Latitude, &l.Position.Longitude,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
