package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

type ProfileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepo(db *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.CaregiverProfile, error) {
	q := TxorDB(ctx, r.db)

	query := `SELECT owner_id, name, tier, hourly_rate, is_approved, address, bio
	          FROM caregiver_profiles WHERE owner_id = $1;`

	var p models.CaregiverProfile
	err := q.QueryRow(ctx, query, ownerID).Scan(
		&p.OwnerID, &p.Name, &p.Tier, &p.HourlyRate, &p.IsApproved, &p.Address, &p.Bio,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrProfileNotFound
		}
		return nil, fmt.Errorf("profile repo: FindByOwner: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepo) FindByOwners(ctx context.Context, ownerIDs []uuid.UUID) (map[uuid.UUID]models.CaregiverProfile, error) {
	out := make(map[uuid.UUID]models.CaregiverProfile, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}

	q := TxorDB(ctx, r.db)

	query := `SELECT owner_id, name, tier, hourly_rate, is_approved, address, bio
	          FROM caregiver_profiles WHERE owner_id = ANY($1);`

	ids := make([]string, 0, len(ownerIDs))
	for _, id := range ownerIDs {
		ids = append(ids, id.String())
	}

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("profile repo: FindByOwners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.CaregiverProfile
		if err := rows.Scan(&p.OwnerID, &p.Name, &p.Tier, &p.HourlyRate, &p.IsApproved, &p.Address, &p.Bio); err != nil {
			return nil, fmt.Errorf("profile repo: FindByOwners: %w", err)
		}
		out[p.OwnerID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profile repo: FindByOwners: %w", err)
	}
	return out, nil
}
