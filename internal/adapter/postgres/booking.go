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

type BookingRepo struct {
	db      *pgxpool.Pool
	service string
}

func NewBookingRepo(db *pgxpool.Pool, service string) *BookingRepo {
	return &BookingRepo{db: db, service: service}
}

const bookingColumns = `
	id, careseeker_id, caregiver_id, caregiver_tier,
	time_from, time_to, address, notes,
	hourly_rate, total_hours, total_amount, payment_method,
	status, completion_notes, created_at, completed_at`

func (r *BookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	q := TxorDB(ctx, r.db)

	query := `INSERT INTO bookings (` + bookingColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`

	start := time.Now()
	_, err := q.Exec(ctx, query,
		booking.ID, booking.CareseekerID, booking.CaregiverID, booking.CaregiverTier,
		booking.TimeFrom, booking.TimeTo, booking.Address, booking.Notes,
		booking.HourlyRate, booking.TotalHours, booking.TotalAmount, booking.PaymentMethod,
		booking.Status, booking.CompletionNotes, booking.CreatedAt, booking.CompletedAt,
	)
	metrics.RecordDatabaseQuery(r.service, "booking_create", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("booking repo: Create: %w", err)
	}
	return nil
}

func (r *BookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	q := TxorDB(ctx, r.db)

	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = $1;`

	booking, err := scanBooking(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrBookingNotFound
		}
		return nil, fmt.Errorf("booking repo: FindByID: %w", err)
	}
	return booking, nil
}

func (r *BookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	q := TxorDB(ctx, r.db)

	query := `UPDATE bookings
	          SET status = $2, completion_notes = $3, completed_at = $4
	          WHERE id = $1;`

	start := time.Now()
	tag, err := q.Exec(ctx, query, booking.ID, booking.Status, booking.CompletionNotes, booking.CompletedAt)
	metrics.RecordDatabaseQuery(r.service, "booking_update", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("booking repo: Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepo) ListByCareseeker(ctx context.Context, careseekerID uuid.UUID) ([]models.Booking, error) {
	return r.list(ctx, "careseeker_id", careseekerID)
}

func (r *BookingRepo) ListByCaregiver(ctx context.Context, caregiverID uuid.UUID) ([]models.Booking, error) {
	return r.list(ctx, "caregiver_id", caregiverID)
}

func (r *BookingRepo) list(ctx context.Context, column string, id uuid.UUID) ([]models.Booking, error) {
	q := TxorDB(ctx, r.db)

	query := `SELECT` + bookingColumns + ` FROM bookings
	          WHERE ` + column + ` = $1 ORDER BY created_at DESC;`

	rows, err := q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("booking repo: list by %s: %w", column, err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("booking repo: list by %s: %w", column, err)
		}
		bookings = append(bookings, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking repo: list by %s: %w", column, err)
	}
	return bookings, nil
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.CareseekerID, &b.CaregiverID, &b.CaregiverTier,
		&b.TimeFrom, &b.TimeTo, &b.Address, &b.Notes,
		&b.HourlyRate, &b.TotalHours, &b.TotalAmount, &b.PaymentMethod,
		&b.Status, &b.CompletionNotes, &b.CreatedAt, &b.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
