package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/postgres"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

type NotificationRepo struct {
	db *pgxpool.Pool
}

func NewNotificationRepo(db *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	q := TxorDB(ctx, r.db)

	query := `INSERT INTO notifications (id, recipient_id, title, message, seen, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6);`

	_, err := q.Exec(ctx, query,
		notification.ID, notification.RecipientID, notification.Title,
		notification.Message, notification.Seen, notification.CreatedAt,
	)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return types.ErrUserNotFound
		}
		return fmt.Errorf("notification repo: Create: %w", err)
	}
	return nil
}

func (r *NotificationRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]models.Notification, error) {
	q := TxorDB(ctx, r.db)

	query := `SELECT id, recipient_id, title, message, seen, created_at
	          FROM notifications WHERE recipient_id = $1
	          ORDER BY created_at DESC;`

	rows, err := q.Query(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("notification repo: ListByRecipient: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Message, &n.Seen, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("notification repo: ListByRecipient: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notification repo: ListByRecipient: %w", err)
	}
	return notifications, nil
}

// MarkSeen is scoped to the recipient so nobody can flag another
// user's notifications.
func (r *NotificationRepo) MarkSeen(ctx context.Context, id, recipientID uuid.UUID) error {
	q := TxorDB(ctx, r.db)

	query := `UPDATE notifications SET seen = TRUE
	          WHERE id = $1 AND recipient_id = $2;`

	tag, err := q.Exec(ctx, query, id, recipientID)
	if err != nil {
		return fmt.Errorf("notification repo: MarkSeen: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotificationNotFound
	}
	return nil
}
