package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/leasehub/leasehub/internal/domain/notification"
)

// NotificationRepository implements notification.Repository.
type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, title, content, category, related_entity_id, read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, n.ID, n.UserID, n.Title, n.Content, n.Category, n.RelatedEntityID, n.Read, n.CreatedAt)
	return err
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*notification.Notification, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, title, content, category, related_entity_id, read, created_at
		FROM notifications WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Category, &n.RelatedEntityID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE notifications SET read=TRUE WHERE id=$1`, id)
	return err
}
