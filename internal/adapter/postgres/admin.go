package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
)

type AdminRepo struct {
	db *pgxpool.Pool
}

func NewAdminRepo(db *pgxpool.Pool) *AdminRepo {
	return &AdminRepo{db: db}
}

func (r *AdminRepo) GetOverview(ctx context.Context) (*models.AdminOverview, error) {
	q := TxorDB(ctx, r.db)

	overview := &models.AdminOverview{
		BookingsByStatus: make(map[types.BookingStatus]int),
		BookingsByTier:   make(map[types.CaregiverTier]int),
	}

	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM caregiver_locations WHERE role = $1 AND is_active;`,
		types.RoleCaregiver,
	).Scan(&overview.ActiveCaregivers)
	if err != nil {
		return nil, fmt.Errorf("admin repo: GetOverview (active caregivers): %w", err)
	}

	rows, err := q.Query(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status;`)
	if err != nil {
		return nil, fmt.Errorf("admin repo: GetOverview (by status): %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status types.BookingStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("admin repo: GetOverview (by status): %w", err)
		}
		overview.BookingsByStatus[status] = count
		overview.TotalBookings += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("admin repo: GetOverview (by status): %w", err)
	}

	tierRows, err := q.Query(ctx, `SELECT caregiver_tier, COUNT(*) FROM bookings GROUP BY caregiver_tier;`)
	if err != nil {
		return nil, fmt.Errorf("admin repo: GetOverview (by tier): %w", err)
	}
	defer tierRows.Close()
	for tierRows.Next() {
		var (
			tier  types.CaregiverTier
			count int
		)
		if err := tierRows.Scan(&tier, &count); err != nil {
			return nil, fmt.Errorf("admin repo: GetOverview (by tier): %w", err)
		}
		overview.BookingsByTier[tier] = count
	}
	if err := tierRows.Err(); err != nil {
		return nil, fmt.Errorf("admin repo: GetOverview (by tier): %w", err)
	}

	return overview, nil
}
